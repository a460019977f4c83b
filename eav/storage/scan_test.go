package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/eavto/eav"
	"github.com/teranos/eavto/eav/storage/testutil"
	"github.com/teranos/eavto/eav/types"
	"github.com/teranos/eavto/ontology/vocab"
)

func seedAnimals(t *testing.T, store *Store) {
	t.Helper()
	_, err := store.Append(context.Background(), "file:animals.nt", testutil.AnimalOntology())
	require.NoError(t, err)
}

func subjectsOf(facts []types.Fact) []string {
	var out []string
	for _, f := range facts {
		out = append(out, f.Subject)
	}
	return out
}

func TestScan_AccessPatterns(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedAnimals(t, store)

	t.Run("subject-first", func(t *testing.T) {
		facts, err := Collect(store.Scan(ctx, eav.Pattern{Subject: ex + "Dog"}))
		require.NoError(t, err)
		assert.Len(t, facts, 4)
		for _, f := range facts {
			assert.Equal(t, ex+"Dog", f.Subject)
		}
	})

	t.Run("predicate-first", func(t *testing.T) {
		facts, err := Collect(store.Scan(ctx, eav.Pattern{Predicate: vocab.RDFSSubClassOf}))
		require.NoError(t, err)
		assert.Equal(t, []string{ex + "Mammal", ex + "Dog"}, subjectsOf(facts))
	})

	t.Run("predicate and object", func(t *testing.T) {
		obj := types.IRI(ex + "Mammal")
		facts, err := Collect(store.Scan(ctx, eav.Pattern{Predicate: vocab.RDFSDomain, Object: &obj}))
		require.NoError(t, err)
		assert.Equal(t, []string{ex + "hasName"}, subjectsOf(facts))
	})

	t.Run("object-first references", func(t *testing.T) {
		obj := types.IRI(ex + "rex")
		facts, err := Collect(store.Scan(ctx, eav.Pattern{Object: &obj}))
		require.NoError(t, err)
		assert.Equal(t, []string{ex + "alice", ex + "alice"}, subjectsOf(facts))
	})

	t.Run("literal object does not match references", func(t *testing.T) {
		obj := types.String(ex + "rex")
		facts, err := Collect(store.Scan(ctx, eav.Pattern{Object: &obj}))
		require.NoError(t, err)
		assert.Empty(t, facts)
	})

	t.Run("references only", func(t *testing.T) {
		facts, err := Collect(store.Scan(ctx, eav.Pattern{Subject: ex + "rex", ReferencesOnly: true}))
		require.NoError(t, err)
		require.Len(t, facts, 1)
		assert.Equal(t, vocab.RDFType, facts[0].Predicate)
	})

	t.Run("limit and early break", func(t *testing.T) {
		facts, err := Collect(store.Scan(ctx, eav.Pattern{Predicate: vocab.RDFType, Limit: 2}))
		require.NoError(t, err)
		assert.Len(t, facts, 2)

		seen := 0
		for _, err := range store.Scan(ctx, eav.Pattern{Predicate: vocab.RDFType}) {
			require.NoError(t, err)
			seen++
			if seen == 3 {
				break
			}
		}
		assert.Equal(t, 3, seen)

		// cursor was released: the store still accepts writes
		_, err = store.Append(ctx, "user:alice", []types.Fact{
			types.NewFact(ex+"bo", vocab.RDFType, types.IRI(ex+"Dog")),
		})
		require.NoError(t, err)
	})

	t.Run("results in sequence order", func(t *testing.T) {
		facts, err := Collect(store.Scan(ctx, eav.Pattern{Origin: "file:animals.nt"}))
		require.NoError(t, err)
		for i := 1; i < len(facts); i++ {
			assert.Less(t, facts[i-1].Seq, facts[i].Seq)
		}
	})
}

func TestIndexFor(t *testing.T) {
	ref := types.IRI(ex + "rex")
	lit := types.String("Rex")
	assert.Equal(t, IndexSubject, IndexFor(eav.Pattern{Subject: ex + "rex", Predicate: vocab.RDFType}))
	assert.Equal(t, IndexPredicateObject, IndexFor(eav.Pattern{Predicate: vocab.RDFSLabel, Object: &lit}))
	assert.Equal(t, IndexReference, IndexFor(eav.Pattern{Object: &ref}))
	assert.Equal(t, IndexPredicate, IndexFor(eav.Pattern{Predicate: vocab.RDFType}))
	assert.Equal(t, IndexOrigin, IndexFor(eav.Pattern{Origin: "core"}))
	assert.Equal(t, "", IndexFor(eav.Pattern{}))
}

func TestExplain_UsesIndices(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedAnimals(t, store)

	plan, err := store.Explain(ctx, eav.Pattern{Subject: ex + "rex"})
	require.NoError(t, err)
	assert.Contains(t, plan, IndexSubject)

	ref := types.IRI(ex + "rex")
	plan, err = store.Explain(ctx, eav.Pattern{Object: &ref})
	require.NoError(t, err)
	assert.Contains(t, plan, IndexReference)
}

func TestScanRange(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Append(ctx, "user:alice", []types.Fact{
		types.NewFact(ex+"a", ex+"age", types.Typed("3", vocab.XSDInteger)),
		types.NewFact(ex+"b", ex+"age", types.Typed("12", vocab.XSDInteger)),
		types.NewFact(ex+"c", ex+"age", types.Typed("7", vocab.XSDInteger)),
		types.NewFact(ex+"a", ex+"weight", types.Typed("2.5", vocab.XSDDecimal)),
		types.NewFact(ex+"b", ex+"weight", types.Typed("40.0", vocab.XSDDouble)),
		types.NewFact(ex+"a", ex+"born", types.Typed("2020-01-01", vocab.XSDDate)),
		types.NewFact(ex+"b", ex+"born", types.Typed("2013-06-15T12:00:00Z", vocab.XSDDateTime)),
	})
	require.NoError(t, err)

	lo, hi := 5.0, 20.0
	facts, err := store.ScanRange(ctx, eav.RangeQuery{Predicate: ex + "age", Family: types.FamilyInteger, Min: &lo, Max: &hi})
	require.NoError(t, err)
	assert.Equal(t, []string{ex + "c", ex + "b"}, subjectsOf(facts), "ordered by value")

	facts, err = store.ScanRange(ctx, eav.RangeQuery{Predicate: ex + "weight", Family: types.FamilyNumeric, Max: &lo})
	require.NoError(t, err)
	assert.Equal(t, []string{ex + "a"}, subjectsOf(facts))

	since := eav.TimeBound(time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC))
	facts, err = store.ScanRange(ctx, eav.RangeQuery{Predicate: ex + "born", Family: types.FamilyTemporal, Min: since})
	require.NoError(t, err)
	require.Equal(t, []string{ex + "a"}, subjectsOf(facts))
	require.NotNil(t, facts[0].Time)
	assert.Equal(t, 2020, facts[0].Time.Year())

	_, err = store.ScanRange(ctx, eav.RangeQuery{Predicate: ex + "age", Family: types.FamilyNone})
	assert.Error(t, err)

	// retracted rows leave the range index
	_, err = store.Retract(ctx, eav.RetractFilter{Origin: "user:alice", Subject: ex + "c"})
	require.NoError(t, err)
	facts, err = store.ScanRange(ctx, eav.RangeQuery{Predicate: ex + "age", Family: types.FamilyInteger, Min: &lo})
	require.NoError(t, err)
	assert.Equal(t, []string{ex + "b"}, subjectsOf(facts))
}

func TestScanRange_IntegersWiderThanInt64(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	res, err := store.Append(ctx, "user:alice", []types.Fact{
		types.NewFact(ex+"big", ex+"count", types.Typed("18446744073709551615", vocab.XSDUnsignedLong)),
		types.NewFact(ex+"small", ex+"count", types.Typed("42", vocab.XSDUnsignedLong)),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)

	big, err := store.Latest(ctx, ex+"big", ex+"count")
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", big.Object.Value, "lexical form is kept")
	assert.Nil(t, big.Int)
	require.NotNil(t, big.Num)

	lo := 1e19
	facts, err := store.ScanRange(ctx, eav.RangeQuery{Predicate: ex + "count", Family: types.FamilyNumeric, Min: &lo})
	require.NoError(t, err)
	assert.Equal(t, []string{ex + "big"}, subjectsOf(facts))

	zero := 0.0
	facts, err = store.ScanRange(ctx, eav.RangeQuery{Predicate: ex + "count", Family: types.FamilyInteger, Min: &zero})
	require.NoError(t, err)
	assert.Equal(t, []string{ex + "small"}, subjectsOf(facts))
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Append(ctx, "user:alice", []types.Fact{
		types.NewFact(ex+"dog", vocab.RDFSLabel, types.String("Dog")),
		types.NewFact(ex+"doghouse", vocab.RDFSLabel, types.String("Doghouse")),
		types.NewFact(ex+"hotdog", vocab.RDFSLabel, types.String("Hot dog stand")),
		types.NewFact(ex+"cat", vocab.RDFSLabel, types.String("Cat")),
		types.NewFact(ex+"cat", vocab.RDFSComment, types.String("Not a dog")),
		types.NewFact(ex+"pct", vocab.RDFSLabel, types.String("100% dog_ish")),
	})
	require.NoError(t, err)

	matches, err := store.Search(ctx, SearchQuery{Text: "DOG"})
	require.NoError(t, err)
	require.Len(t, matches, 5)

	assert.Equal(t, ex+"dog", matches[0].Subject)
	assert.Equal(t, ScoreExact, matches[0].Score)
	assert.Equal(t, ex+"doghouse", matches[1].Subject)
	assert.Equal(t, ScorePrefix, matches[1].Score)

	// contains ties sort by id
	assert.Equal(t, ex+"hotdog", matches[2].Subject)
	assert.Equal(t, ScoreContains, matches[2].Score)
	assert.Equal(t, ex+"pct", matches[3].Subject)

	assert.Equal(t, ex+"cat", matches[4].Subject)
	assert.Equal(t, ScoreContains/2, matches[4].Score, "comment matches score half")
	assert.Equal(t, "Cat", matches[4].Label)

	matches, err = store.Search(ctx, SearchQuery{Text: "100%", Limit: 10})
	require.NoError(t, err)
	require.Len(t, matches, 1, "wildcard characters in the query are literal")
	assert.Equal(t, ex+"pct", matches[0].Subject)

	matches, err = store.Search(ctx, SearchQuery{Text: "dog", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	_, err = store.Search(ctx, SearchQuery{Text: "  "})
	assert.Error(t, err)
}

func TestSearch_FoldsNonASCIICase(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Append(ctx, "user:alice", []types.Fact{
		types.NewFact(ex+"eclair", vocab.RDFSLabel, types.String("Éclair")),
		types.NewFact(ex+"strasse", vocab.RDFSLabel, types.String("GROẞE Straße")),
		types.NewFact(ex+"pastry", vocab.RDFSComment, types.String("Filled like an ÉCLAIR")),
	})
	require.NoError(t, err)

	for _, text := range []string{"Éclair", "éclair", "ÉCLAIR"} {
		t.Run(text, func(t *testing.T) {
			matches, err := store.Search(ctx, SearchQuery{Text: text})
			require.NoError(t, err)
			require.Len(t, matches, 2)
			assert.Equal(t, ex+"eclair", matches[0].Subject)
			assert.Equal(t, ScoreExact, matches[0].Score)
			assert.Equal(t, "Éclair", matches[0].Label)
			assert.Equal(t, ex+"pastry", matches[1].Subject)
			assert.Equal(t, ScoreContains/2, matches[1].Score)
		})
	}

	matches, err := store.Search(ctx, SearchQuery{Text: "straße"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, ex+"strasse", matches[0].Subject)
	assert.Equal(t, ScoreContains, matches[0].Score)
}
