package shell_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore/memengine"
)

func Test_LoadLedger_EmptyStoreYieldsEmptyLedgerAtVersionZero(t *testing.T) {
	store, err := memengine.NewLedgerStore()
	require.NoError(t, err)

	ledger, versions, err := shell.LoadLedger(context.Background(), store)

	require.NoError(t, err)
	assert.Empty(t, ledger.Books)
	assert.Len(t, versions, len(core.AllCollections()))
	assert.Equal(t, ledgerstore.VersionUint(0), versions[core.IssuesCollection])
}

func Test_SeedLedger_Then_LoadLedger_KeepsEveryField(t *testing.T) {
	returned := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	original := core.Ledger{
		Books:      []core.Book{{ID: "B001", Title: "Dune", Author: "Herbert", Category: "SF", TotalCopies: 2, AvailableCopies: 2, ISBN: "978", Publisher: "Chilton", PublicationYear: 1965, CoverImage: "data:x"}},
		Categories: []core.Category{{ID: "C001", Name: "SF", Description: "science fiction"}},
		Members:    []core.Member{{ID: "ENT0001", Name: "Ada", Email: "ada@example.org", Phone: "1", Type: "staff"}},
		Users:      []core.User{{ID: "U001", Email: "ada@example.org", PasswordHash: "h", Role: core.RoleLibrarian, MemberID: "ENT0001", CreatedDate: returned, LastLogin: &returned}},
		Requests:   []core.Request{{ID: "R001", BookID: "B001", MemberID: "ENT0001", RequestDate: returned, Status: core.RequestRejected, ProcessedBy: "U001", ProcessedDate: &returned}},
		Issues:     []core.Issue{{ID: "I001", BookID: "B001", MemberID: "ENT0001", IssueDate: returned, DueDate: returned, ReturnDate: &returned, Status: core.IssueReturned, Fine: 2, DaysOverdue: 2, FinePaid: true, IssuedBy: "U001"}},
	}

	store, err := memengine.NewLedgerStore()
	require.NoError(t, err)
	require.NoError(t, shell.SeedLedger(context.Background(), store, original))

	loaded, _, err := shell.LoadLedger(context.Background(), store)

	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func Test_LoadLedger_CorruptCollectionIsStorageError(t *testing.T) {
	store, err := memengine.NewLedgerStore(memengine.WithSeed(ledgerstore.Books, []byte(`[{"id":42}]`)))
	require.NoError(t, err)

	_, _, err = shell.LoadLedger(context.Background(), store)

	assert.ErrorIs(t, err, shell.ErrStorage)
	assert.ErrorIs(t, err, shell.ErrDecodingLedgerFailed)
}

func Test_ChangesFrom_UsesObservedVersions(t *testing.T) {
	decision := core.SuccessDecision(core.Ledger{}, "B001", core.BooksCollection, core.IssuesCollection)
	versions := shell.Versions{core.BooksCollection: 3, core.IssuesCollection: 9}

	changes, err := shell.ChangesFrom(decision, versions)

	require.NoError(t, err)
	require.Len(t, changes, len(core.AllCollections()))
	assert.Equal(t, 2, ledgerstore.CountWrites(changes))
	assert.Equal(t, ledgerstore.Books, changes[0].Resource)
	assert.Equal(t, ledgerstore.VersionUint(3), changes[0].ExpectedVersion)
	assert.JSONEq(t, "[]", string(changes[0].ItemsJSON))
}

func Test_ChangesFrom_GuardsEveryUnchangedCollection(t *testing.T) {
	decision := core.SuccessDecision(core.Ledger{}, "I001", core.IssuesCollection)
	versions := shell.Versions{
		core.BooksCollection:      1,
		core.CategoriesCollection: 2,
		core.MembersCollection:    3,
		core.IssuesCollection:     4,
		core.UsersCollection:      5,
		core.RequestsCollection:   6,
	}

	changes, err := shell.ChangesFrom(decision, versions)

	require.NoError(t, err)
	require.NoError(t, ledgerstore.ValidateChanges(changes))

	for _, change := range changes {
		assert.Equal(t, versions[core.Collection(change.Resource)], change.ExpectedVersion, change.Resource)
		assert.Equal(t, change.Resource != ledgerstore.Issues, change.IsGuard(), change.Resource)
	}
}
