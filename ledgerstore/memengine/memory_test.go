package memengine_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore/memengine"
	"github.com/AntonStoeckl/library-circulation-go/testutil/testdoubles"
)

func Test_Load_UnwrittenCollectionIsEmptyAtVersionZero(t *testing.T) {
	store, err := memengine.NewLedgerStore()
	require.NoError(t, err)

	snapshot, err := store.Load(context.Background(), ledgerstore.Requests)

	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(snapshot.ItemsJSON))
	assert.Equal(t, ledgerstore.VersionUint(0), snapshot.Version)
}

func Test_Save_Then_Load_RoundTripsWithoutFieldLoss(t *testing.T) {
	store, err := memengine.NewLedgerStore()
	require.NoError(t, err)
	ctx := context.Background()
	items := []byte(`[{"id":"B001","title":"Dune","coverImage":"x.png","publicationYear":1965}]`)

	require.NoError(t, store.Save(ctx, ledgerstore.Books, items))
	loaded, err := store.Load(ctx, ledgerstore.Books)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, ledgerstore.Books, loaded.ItemsJSON))
	reloaded, err := store.Load(ctx, ledgerstore.Books)
	require.NoError(t, err)

	assert.JSONEq(t, string(items), string(reloaded.ItemsJSON))
	assert.Equal(t, ledgerstore.VersionUint(2), reloaded.Version)
}

func Test_Commit_AppliesAllChangesWhenVersionsMatch(t *testing.T) {
	store, err := memengine.NewLedgerStore(memengine.WithSeed(ledgerstore.Books, []byte(`[]`)))
	require.NoError(t, err)
	ctx := context.Background()

	books, _ := ledgerstore.BuildChange(ledgerstore.Books, 1, []byte(`[{"id":"B001"}]`))
	issues, _ := ledgerstore.BuildChange(ledgerstore.Issues, 0, []byte(`[{"id":"I001"}]`))

	require.NoError(t, store.Commit(ctx, ledgerstore.BuildCommitMeta("test"), books, issues))

	loadedBooks, _ := store.Load(ctx, ledgerstore.Books)
	loadedIssues, _ := store.Load(ctx, ledgerstore.Issues)
	assert.Equal(t, ledgerstore.VersionUint(2), loadedBooks.Version)
	assert.Equal(t, ledgerstore.VersionUint(1), loadedIssues.Version)
	assert.Len(t, store.Journal(), 1)
}

func Test_Commit_WritesNothingOnConflict(t *testing.T) {
	store, err := memengine.NewLedgerStore()
	require.NoError(t, err)
	ctx := context.Background()

	books, _ := ledgerstore.BuildChange(ledgerstore.Books, 0, []byte(`[{"id":"B001"}]`))
	staleIssues, _ := ledgerstore.BuildChange(ledgerstore.Issues, 7, []byte(`[{"id":"I001"}]`))

	err = store.Commit(ctx, ledgerstore.BuildCommitMeta("test"), books, staleIssues)

	assert.ErrorIs(t, err, ledgerstore.ErrConcurrencyConflict)
	loaded, _ := store.Load(ctx, ledgerstore.Books)
	assert.JSONEq(t, "[]", string(loaded.ItemsJSON))
	assert.Empty(t, store.Journal())
}

func Test_Commit_StaleGuardBlocksTheWrite(t *testing.T) {
	store, err := memengine.NewLedgerStore(memengine.WithSeed(ledgerstore.Members, []byte(`[{"id":"M001"}]`)))
	require.NoError(t, err)
	ctx := context.Background()

	issues, _ := ledgerstore.BuildChange(ledgerstore.Issues, 0, []byte(`[{"id":"I001"}]`))
	members, _ := ledgerstore.BuildGuard(ledgerstore.Members, 1)

	require.NoError(t, store.Save(ctx, ledgerstore.Members, []byte(`[]`)))

	err = store.Commit(ctx, ledgerstore.BuildCommitMeta("test"), issues, members)

	assert.ErrorIs(t, err, ledgerstore.ErrConcurrencyConflict)
	loaded, _ := store.Load(ctx, ledgerstore.Issues)
	assert.Equal(t, ledgerstore.VersionUint(0), loaded.Version)
	assert.Empty(t, store.Journal())
}

func Test_Commit_MatchingGuardLeavesItsCollectionUntouched(t *testing.T) {
	store, err := memengine.NewLedgerStore(memengine.WithSeed(ledgerstore.Members, []byte(`[{"id":"M001"}]`)))
	require.NoError(t, err)
	ctx := context.Background()

	issues, _ := ledgerstore.BuildChange(ledgerstore.Issues, 0, []byte(`[{"id":"I001"}]`))
	members, _ := ledgerstore.BuildGuard(ledgerstore.Members, 1)
	books, _ := ledgerstore.BuildGuard(ledgerstore.Books, 0)

	require.NoError(t, store.Commit(ctx, ledgerstore.BuildCommitMeta("test"), issues, members, books))

	loadedMembers, _ := store.Load(ctx, ledgerstore.Members)
	assert.Equal(t, ledgerstore.VersionUint(1), loadedMembers.Version)
	assert.JSONEq(t, `[{"id":"M001"}]`, string(loadedMembers.ItemsJSON))

	loadedBooks, _ := store.Load(ctx, ledgerstore.Books)
	assert.Equal(t, ledgerstore.VersionUint(0), loadedBooks.Version)
}

func Test_Commit_OnlyOneOfConcurrentWritersWins(t *testing.T) {
	store, err := memengine.NewLedgerStore()
	require.NoError(t, err)
	ctx := context.Background()

	const writers = 16
	results := make(chan error, writers)
	wg := sync.WaitGroup{}

	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			change, _ := ledgerstore.BuildChange(ledgerstore.Books, 0, []byte(`[{"id":"B001"}]`))
			results <- store.Commit(ctx, ledgerstore.BuildCommitMeta("race"), change)
		}()
	}

	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ledgerstore.ErrConcurrencyConflict)
	}

	assert.Equal(t, 1, succeeded)
}

func Test_Commit_ReportsConflictToObservability(t *testing.T) {
	metrics := testdoubles.NewMetricsCollectorSpy(true)
	tracing := testdoubles.NewTracingCollectorSpy(true)
	logger := testdoubles.NewContextualLoggerSpy(true)

	store, err := memengine.NewLedgerStore(
		memengine.WithMetrics(metrics),
		memengine.WithTracing(tracing),
		memengine.WithContextualLogger(logger),
	)
	require.NoError(t, err)

	stale, _ := ledgerstore.BuildChange(ledgerstore.Books, 3, []byte(`[]`))
	_ = store.Commit(context.Background(), ledgerstore.BuildCommitMeta("test"), stale)

	assert.True(t, metrics.HasCounterRecordForMetric(ledgerstore.MetricConcurrencyConflicts).WithOperation(ledgerstore.OperationCommit).Assert())
	assert.True(t, tracing.HasFinishedSpan(ledgerstore.SpanNameCommit, ledgerstore.StatusConcurrencyConflict))
	assert.True(t, logger.HasMessage("info", "concurrency conflict"))
}

func Test_WithSeed_RejectsInvalidJSON(t *testing.T) {
	_, err := memengine.NewLedgerStore(memengine.WithSeed(ledgerstore.Books, []byte(`{}`)))

	assert.ErrorIs(t, err, ledgerstore.ErrInvalidItemsJSON)
}
