// Package fixtures builds circulation records and stores for tests.
package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore/memengine"
)

// Now is a fixed clock for deterministic tests.
var Now = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func Book(id string, total, available int) core.Book {
	return core.Book{ID: id, Title: "Title " + id, Author: "Author " + id, Category: "General", TotalCopies: total, AvailableCopies: available}
}

func Member(id string) core.Member {
	return core.Member{ID: id, Name: "Member " + id, Email: id + "@example.org", Phone: "555-0100", Type: "student"}
}

func PendingRequest(id, bookID, memberID string, at time.Time) core.Request {
	return core.Request{ID: id, BookID: bookID, MemberID: memberID, RequestDate: at, Status: core.RequestPending}
}

func ActiveIssue(id, bookID, memberID string, issuedAt, dueAt time.Time) core.Issue {
	return core.Issue{ID: id, BookID: bookID, MemberID: memberID, IssueDate: issuedAt, DueDate: dueAt, Status: core.IssueActive}
}

func ReturnedIssue(id, bookID, memberID string, dueAt, returnedAt time.Time, fine float64) core.Issue {
	return core.Issue{
		ID: id, BookID: bookID, MemberID: memberID,
		IssueDate: dueAt.AddDate(0, 0, -7), DueDate: dueAt, ReturnDate: &returnedAt,
		Status: core.IssueReturned, Fine: fine, DaysOverdue: core.DaysOverdueAt(dueAt, returnedAt),
	}
}

// Store returns a memengine store holding ledger.
func Store(t testing.TB, ledger core.Ledger) memengine.LedgerStore {
	t.Helper()

	store, err := memengine.NewLedgerStore()
	require.NoError(t, err)
	require.NoError(t, shell.SeedLedger(context.Background(), store, ledger))

	return store
}

// Load reads the current ledger back from store.
func Load(t testing.TB, store shell.LedgerReader) core.Ledger {
	t.Helper()

	ledger, _, err := shell.LoadLedger(context.Background(), store)
	require.NoError(t, err)

	return ledger
}

// RequireConsistent fails when any book breaks the copy bounds or the copy accounting rule.
func RequireConsistent(t testing.TB, ledger core.Ledger) {
	t.Helper()

	for _, v := range core.CheckInvariants(ledger) {
		if v.Rule == core.RuleCopyBounds || v.Rule == core.RuleCopyAccounting {
			require.Failf(t, "ledger inconsistent", "%s %s: %s", v.Rule, v.EntityID, v.Detail)
		}
	}
}

// RequireFailure asserts err is a core.Failure of kind.
func RequireFailure(t testing.TB, err error, kind core.FailureKind) {
	t.Helper()

	got, ok := core.KindOf(err)
	require.Truef(t, ok, "expected %s failure, got %v", kind, err)
	require.Equal(t, kind, got, err)
}
