package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/eavto/eav/storage"
	"github.com/teranos/eavto/eav/storage/testutil"
	"github.com/teranos/eavto/errors"
)

const ex = testutil.Ex

const animalsNT = `<urn:example:Animal> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .
<urn:example:Animal> <http://www.w3.org/2000/01/rdf-schema#label> "Animal" .
<urn:example:Animal> <urn:eavto:core#icon> "paw" .
<urn:example:Mammal> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .
<urn:example:Mammal> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <urn:example:Animal> .
<urn:example:Mammal> <http://www.w3.org/2000/01/rdf-schema#label> "Mammal" .
<urn:example:Mammal> <http://www.w3.org/2000/01/rdf-schema#comment> "Warm-blooded animal" .
<urn:example:Dog> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <urn:example:Mammal> .
<urn:example:Dog> <http://www.w3.org/2000/01/rdf-schema#label> "Dog" .
<urn:example:hasName> <http://www.w3.org/2000/01/rdf-schema#domain> <urn:example:Mammal> .
<urn:example:rex> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <urn:example:Dog> .
<urn:example:rex> <http://www.w3.org/2000/01/rdf-schema#label> "Rex" .
<urn:example:alice> <urn:example:owns> <urn:example:rex> .
`

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	log := zaptest.NewLogger(t).Sugar()
	svc, err := NewService(storage.NewStore(testutil.SetupTestDB(t), log), cfg, log)
	require.NoError(t, err)

	report, err := svc.Ingest(context.Background(), "animals.nt", []byte(animalsNT))
	require.NoError(t, err)
	require.Len(t, report.Updated, 1)
	return svc
}

func TestService_ResolveEntity(t *testing.T) {
	svc := newTestService(t, Config{})

	view, err := svc.ResolveEntity(context.Background(), ex+"rex")
	require.NoError(t, err)
	assert.Equal(t, []string{ex + "Mammal", ex + "Animal"}, view.Superclasses)
	require.Len(t, view.InheritedProperties, 1)
	assert.Equal(t, ex+"Mammal", view.InheritedProperties[0].Class)
	assert.Empty(t, view.OwnProperties)
}

func TestService_Search(t *testing.T) {
	svc := newTestService(t, Config{SearchLimit: 5, MaxSearchLimit: 10})

	res, err := svc.Search(context.Background(), "mammal", 0)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Limit)
	require.NotEmpty(t, res.Matches)
	assert.Equal(t, ex+"Mammal", res.Matches[0].Subject)
	assert.Equal(t, storage.ScoreExact, res.Matches[0].Score)

	res, err = svc.Search(context.Background(), "a", 1000)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Limit, "limit is capped")

	res, err = svc.Search(context.Background(), "animal", 0)
	require.NoError(t, err)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, ex+"Animal", res.Matches[0].Subject)
	assert.Equal(t, ex+"Mammal", res.Matches[1].Subject, "comment match ranks below the label match")
	assert.Equal(t, storage.ScoreContains/2, res.Matches[1].Score)

	_, err = svc.Search(context.Background(), "  ", 0)
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestService_GetIcon(t *testing.T) {
	svc := newTestService(t, Config{})

	icon, err := svc.GetIcon(context.Background(), ex+"rex")
	require.NoError(t, err)
	assert.Equal(t, "paw", icon.Icon)
	assert.Equal(t, ex+"Animal", icon.From)

	icon, err = svc.GetIcon(context.Background(), ex+"alice")
	require.NoError(t, err)
	assert.Empty(t, icon.Icon)
}

func TestService_ListBacklinks(t *testing.T) {
	svc := newTestService(t, Config{})

	links, err := svc.ListBacklinks(context.Background(), ex+"rex")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, ex+"alice", links[0].Subject)
	assert.Equal(t, "file:animals.nt", links[0].Origin)
}

func TestService_IngestParseFailure(t *testing.T) {
	svc := newTestService(t, Config{})

	report, err := svc.Ingest(context.Background(), "animals.nt", []byte("<urn:example:a> broken\n"))
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
	require.NotNil(t, report)
	assert.Len(t, report.Failed, 1)

	view, err := svc.ResolveEntity(context.Background(), ex+"rex")
	require.NoError(t, err)
	assert.Equal(t, "Rex", view.Label, "previous facts survive")
}

func TestService_IngestInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})

	view, err := svc.ResolveEntity(ctx, ex+"rex")
	require.NoError(t, err)
	assert.Equal(t, "Rex", view.Label)

	changed := animalsNT + "<urn:example:rex> <http://www.w3.org/2000/01/rdf-schema#comment> \"Good boy\" .\n"
	_, err = svc.Ingest(ctx, "animals.nt", []byte(changed))
	require.NoError(t, err)

	view, err = svc.ResolveEntity(ctx, ex+"rex")
	require.NoError(t, err)
	assert.Equal(t, "Good boy", view.Comment)
}

func TestService_IngestUnchangedIsNoOp(t *testing.T) {
	svc := newTestService(t, Config{})
	g := svc.Store().Generation()

	report, err := svc.Ingest(context.Background(), "animals.nt", []byte(animalsNT))
	require.NoError(t, err)
	assert.Equal(t, []string{"animals.nt"}, report.Skipped)
	assert.Equal(t, g, svc.Store().Generation())
}
