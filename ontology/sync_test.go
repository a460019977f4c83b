package ontology

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/eavto/eav"
	"github.com/teranos/eavto/eav/storage"
	"github.com/teranos/eavto/eav/types"
	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/ontology/vocab"
)

func newTestSyncer(t *testing.T) (*Syncer, *storage.Store) {
	t.Helper()
	store := newTestStore(t)
	return NewSyncer(store, zaptest.NewLogger(t).Sugar()), store
}

func entriesOf(t *testing.T, store *storage.Store, origin string) []*types.Transaction {
	t.Helper()
	entries, err := store.Transactions(context.Background(), storage.TransactionFilter{Origin: origin})
	require.NoError(t, err)
	return entries
}

func TestSync_NewSourceImported(t *testing.T) {
	ctx := context.Background()
	syncer, store := newTestSyncer(t)

	report, err := syncer.Sync(ctx, []Source{src("animals.nt", animalsNT)})
	require.NoError(t, err)
	require.Len(t, report.Updated, 1)
	assert.Empty(t, report.Skipped)
	assert.Empty(t, report.Failed)
	assert.True(t, report.Changed())

	fp, err := syncer.StoredFingerprint(ctx, "animals.nt")
	require.NoError(t, err)
	assert.Equal(t, Fingerprint([]byte(animalsNT)), fp)

	assert.Len(t, entriesOf(t, store, "file:animals.nt"), 1)
}

func TestSync_UnchangedIsNoOp(t *testing.T) {
	ctx := context.Background()
	syncer, store := newTestSyncer(t)
	sources := []Source{src("animals.nt", animalsNT), src("dogs.nt", dogsNT)}

	_, err := syncer.Sync(ctx, sources)
	require.NoError(t, err)
	before, err := store.Stats(ctx)
	require.NoError(t, err)
	generation := store.Generation()

	report, err := syncer.Sync(ctx, sources)
	require.NoError(t, err)
	assert.Empty(t, report.Updated)
	assert.Equal(t, []string{"animals.nt", "dogs.nt"}, report.Skipped)
	assert.False(t, report.Changed())

	after, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Transactions, after.Transactions, "no ledger entry for unchanged sources")
	assert.Equal(t, before.Facts, after.Facts)
	assert.Equal(t, generation, store.Generation())
}

func TestSync_ChangedSourceRetractsAndReasserts(t *testing.T) {
	ctx := context.Background()
	syncer, store := newTestSyncer(t)

	_, err := syncer.Sync(ctx, []Source{src("animals.nt", animalsNT)})
	require.NoError(t, err)

	// One byte: "paw" becomes "pay".
	changed := strings.Replace(animalsNT, `"paw"`, `"pay"`, 1)
	report, err := syncer.Sync(ctx, []Source{src("animals.nt", changed)})
	require.NoError(t, err)
	require.Len(t, report.Updated, 1)
	res := report.Updated[0]
	assert.Equal(t, 6, res.Retracted)
	assert.Equal(t, 6, res.Facts)

	entries := entriesOf(t, store, "file:animals.nt")
	require.Len(t, entries, 3, "initial assert, then exactly one retract and one assert")
	assert.Equal(t, types.TxAssert, entries[0].Kind)
	assert.Equal(t, types.TxRetract, entries[1].Kind)
	assert.Equal(t, types.TxAssert, entries[2].Kind)
	assert.Equal(t, res.Tx, entries[0].ID)
	assert.Equal(t, res.RetractTx, entries[1].ID)
	assert.EqualValues(t, 6, entries[1].FactCount)

	parsed, err := Parse(ctx, src("animals.nt", changed))
	require.NoError(t, err)
	n, err := store.ActiveCount(ctx, "file:animals.nt")
	require.NoError(t, err)
	assert.Equal(t, len(parsed.Facts), n)

	icon, err := store.CurrentValue(ctx, ex+"Animal", vocab.CoreIcon, "file:animals.nt")
	require.NoError(t, err)
	assert.Equal(t, "pay", icon.Object.Value)

	fp, err := syncer.StoredFingerprint(ctx, "animals.nt")
	require.NoError(t, err)
	assert.Equal(t, parsed.Fingerprint, fp)

	// Old facts are retracted, not deleted.
	all, err := storage.Collect(store.Scan(ctx, eav.Pattern{Origin: "file:animals.nt", IncludeRetracted: true}))
	require.NoError(t, err)
	assert.Len(t, all, 12)
	require.NoError(t, store.CheckIntegrity(ctx))
}

func TestSync_ParseFailureKeepsPreviousFacts(t *testing.T) {
	ctx := context.Background()
	syncer, store := newTestSyncer(t)

	_, err := syncer.Sync(ctx, []Source{src("animals.nt", animalsNT)})
	require.NoError(t, err)
	before := len(entriesOf(t, store, "file:animals.nt"))

	broken := animalsNT + "<urn:example:oops> <urn:example:p> \"dangling .\n"
	report, err := syncer.Sync(ctx, []Source{src("animals.nt", broken)})
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	assert.Empty(t, report.Updated)
	var pe *errors.ParseError
	require.True(t, errors.As(report.Failed[0].Error, &pe))
	assert.Equal(t, 8, pe.Line)
	assert.Contains(t, report.Failed[0].ErrorText, "animals.nt:8")

	assert.Len(t, entriesOf(t, store, "file:animals.nt"), before)
	n, err := store.ActiveCount(ctx, "file:animals.nt")
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	fp, err := syncer.StoredFingerprint(ctx, "animals.nt")
	require.NoError(t, err)
	assert.Equal(t, Fingerprint([]byte(animalsNT)), fp, "failed source keeps its old fingerprint")
}

func TestSync_CancelledLeavesStateIntact(t *testing.T) {
	syncer, store := newTestSyncer(t)

	_, err := syncer.Sync(context.Background(), []Source{src("animals.nt", animalsNT)})
	require.NoError(t, err)
	before, err := store.Stats(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	changed := strings.Replace(animalsNT, "Animal\"", "Beast\"", 1)
	_, err = syncer.Sync(ctx, []Source{src("animals.nt", changed)})
	require.Error(t, err)

	after, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before.Transactions, after.Transactions)
	assert.Equal(t, before.Active, after.Active)

	n, err := store.ActiveCount(context.Background(), "file:animals.nt")
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestSync_ChangedSourcesInDependencyOrder(t *testing.T) {
	ctx := context.Background()
	syncer, _ := newTestSyncer(t)

	report, err := syncer.Sync(ctx, []Source{src("a-dogs.nt", dogsNT), src("b-animals.nt", animalsNT)})
	require.NoError(t, err)
	assert.Equal(t, []string{"b-animals.nt", "a-dogs.nt"}, report.Order)
	require.Len(t, report.Updated, 2)
	assert.Equal(t, "b-animals.nt", report.Updated[0].Name)
}
