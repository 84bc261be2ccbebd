package sqliteengine_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore/sqliteengine"
)

func openStore(t *testing.T) *sqliteengine.LedgerStore {
	t.Helper()

	store, err := sqliteengine.Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func Test_Load_MigratedCollectionsStartEmpty(t *testing.T) {
	store := openStore(t)

	for _, resource := range ledgerstore.AllResources() {
		snapshot, err := store.Load(context.Background(), resource)

		require.NoError(t, err)
		assert.JSONEq(t, "[]", string(snapshot.ItemsJSON))
		assert.Equal(t, ledgerstore.VersionUint(0), snapshot.Version)
	}
}

func Test_Save_Then_Load_RoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	items := []byte(`[{"id":"U001","email":"a@b.c","role":"admin","createdDate":"2026-01-02T03:04:05Z"}]`)

	require.NoError(t, store.Save(ctx, ledgerstore.Users, items))
	loaded, err := store.Load(ctx, ledgerstore.Users)

	require.NoError(t, err)
	assert.JSONEq(t, string(items), string(loaded.ItemsJSON))
	assert.Equal(t, ledgerstore.VersionUint(1), loaded.Version)
}

func Test_Commit_RollsBackEverythingOnStaleVersion(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	books, _ := ledgerstore.BuildChange(ledgerstore.Books, 0, []byte(`[{"id":"B001"}]`))
	stale, _ := ledgerstore.BuildChange(ledgerstore.Issues, 5, []byte(`[{"id":"I001"}]`))

	err := store.Commit(ctx, ledgerstore.BuildCommitMeta("test"), books, stale)
	assert.ErrorIs(t, err, ledgerstore.ErrConcurrencyConflict)

	loaded, err := store.Load(ctx, ledgerstore.Books)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(loaded.ItemsJSON))
}

func Test_Commit_GuardsAreCheckedButNotWritten(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, ledgerstore.Members, []byte(`[{"id":"M001"}]`)))

	issues, _ := ledgerstore.BuildChange(ledgerstore.Issues, 0, []byte(`[{"id":"I001"}]`))
	staleMembers, _ := ledgerstore.BuildGuard(ledgerstore.Members, 0)

	err := store.Commit(ctx, ledgerstore.BuildCommitMeta("stale"), issues, staleMembers)
	assert.ErrorIs(t, err, ledgerstore.ErrConcurrencyConflict)

	loaded, err := store.Load(ctx, ledgerstore.Issues)
	require.NoError(t, err)
	assert.Equal(t, ledgerstore.VersionUint(0), loaded.Version)

	members, _ := ledgerstore.BuildGuard(ledgerstore.Members, 1)
	books, _ := ledgerstore.BuildGuard(ledgerstore.Books, 0)
	require.NoError(t, store.Commit(ctx, ledgerstore.BuildCommitMeta("fresh"), issues, members, books))

	loaded, err = store.Load(ctx, ledgerstore.Issues)
	require.NoError(t, err)
	assert.Equal(t, ledgerstore.VersionUint(1), loaded.Version)

	loadedMembers, err := store.Load(ctx, ledgerstore.Members)
	require.NoError(t, err)
	assert.Equal(t, ledgerstore.VersionUint(1), loadedMembers.Version)
}

func Test_Commit_SerializesConcurrentWriters(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	const writers = 6
	errs := make(chan error, writers)
	wg := sync.WaitGroup{}

	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			change, _ := ledgerstore.BuildChange(ledgerstore.Books, 0, []byte(`[{"id":"B001"}]`))
			errs <- store.Commit(ctx, ledgerstore.BuildCommitMeta("race"), change)
		}()
	}

	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		}
	}

	assert.Equal(t, 1, succeeded)

	loaded, err := store.Load(ctx, ledgerstore.Books)
	require.NoError(t, err)
	assert.Equal(t, ledgerstore.VersionUint(1), loaded.Version)
}
