package command_test

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/acceptreturn"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/approverequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/cancelrequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/issuebookdirect"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/rejectrequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/submitrequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/updatebook"
	"github.com/AntonStoeckl/library-circulation-go/testutil/fixtures"
)

type step func(rng *rand.Rand, ledger core.Ledger, at time.Time) (string, core.DecisionResult)

func pick(rng *rand.Rand, ids []string) string {
	if len(ids) == 0 {
		return "X000"
	}

	return ids[rng.IntN(len(ids))]
}

func idsOf[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = id(item)
	}

	return out
}

func steps() []step {
	bookIDs := func(l core.Ledger) []string { return idsOf(l.Books, func(b core.Book) string { return b.ID }) }
	memberIDs := func(l core.Ledger) []string { return idsOf(l.Members, func(m core.Member) string { return m.ID }) }
	requestIDs := func(l core.Ledger) []string { return idsOf(l.Requests, func(r core.Request) string { return r.ID }) }
	issueIDs := func(l core.Ledger) []string { return idsOf(l.Issues, func(i core.Issue) string { return i.ID }) }

	return []step{
		func(rng *rand.Rand, l core.Ledger, at time.Time) (string, core.DecisionResult) {
			cmd := submitrequest.BuildCommand(pick(rng, memberIDs(l)), pick(rng, bookIDs(l)), at)
			return "submit", submitrequest.Decide(l, cmd)
		},
		func(rng *rand.Rand, l core.Ledger, at time.Time) (string, core.DecisionResult) {
			cmd := approverequest.BuildCommand(pick(rng, requestIDs(l)), "U001", at)
			return "approve", approverequest.Decide(l, cmd)
		},
		func(rng *rand.Rand, l core.Ledger, at time.Time) (string, core.DecisionResult) {
			cmd := rejectrequest.BuildCommand(pick(rng, requestIDs(l)), "U001", at)
			return "reject", rejectrequest.Decide(l, cmd)
		},
		func(rng *rand.Rand, l core.Ledger, at time.Time) (string, core.DecisionResult) {
			cmd := cancelrequest.BuildCommand(pick(rng, requestIDs(l)), pick(rng, memberIDs(l)), at)
			return "cancel", cancelrequest.Decide(l, cmd)
		},
		func(rng *rand.Rand, l core.Ledger, at time.Time) (string, core.DecisionResult) {
			channel := issuebookdirect.ChannelDashboard
			if rng.IntN(2) == 0 {
				channel = issuebookdirect.ChannelQR
			}

			cmd := issuebookdirect.BuildCommand(pick(rng, bookIDs(l)), pick(rng, memberIDs(l)), nil, channel, "U001", at)
			return "issue", issuebookdirect.Decide(l, cmd, core.DefaultCheckoutRules(), core.DefaultFinePolicy())
		},
		func(rng *rand.Rand, l core.Ledger, at time.Time) (string, core.DecisionResult) {
			cmd := acceptreturn.BuildCommand(pick(rng, issueIDs(l)), at)
			return "return", acceptreturn.Decide(l, cmd, core.DefaultFinePolicy())
		},
		func(rng *rand.Rand, l core.Ledger, at time.Time) (string, core.DecisionResult) {
			book := l.Books[rng.IntN(len(l.Books))]
			book.TotalCopies = rng.IntN(5)

			return "update", updatebook.Decide(l, updatebook.BuildCommand(book, at))
		},
	}
}

func Test_Property_CopyAccountingHoldsAfterEveryOperation(t *testing.T) {
	// arrange
	rng := rand.New(rand.NewPCG(20260504, 7))
	ledger := core.Ledger{
		Books:   []core.Book{fixtures.Book("B001", 1, 1), fixtures.Book("B002", 2, 2), fixtures.Book("B003", 3, 3)},
		Members: []core.Member{fixtures.Member("M001"), fixtures.Member("M002"), fixtures.Member("M003")},
	}
	at := fixtures.Now
	all := steps()

	for i := range 2000 {
		// act
		at = at.Add(time.Duration(rng.IntN(48)) * time.Hour)
		name, result := all[rng.IntN(len(all))](rng, ledger, at)

		// assert
		if err := result.HasError(); err != nil {
			_, ok := core.KindOf(err)
			require.Truef(t, ok, "step %d %s: unexpected error %v", i, name, err)
			assert.False(t, result.HasChanges())

			continue
		}

		ledger = result.Ledger
		fixtures.RequireConsistent(t, ledger)

		for _, b := range ledger.Books {
			require.GreaterOrEqual(t, b.AvailableCopies, 0, fmt.Sprintf("step %d %s", i, name))
			require.LessOrEqual(t, b.AvailableCopies, b.TotalCopies, fmt.Sprintf("step %d %s", i, name))
		}
	}
}

func Test_Property_ApprovalNeverSucceedsWithoutCopies(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for range 200 {
		total := rng.IntN(3) + 1
		ledger := core.Ledger{
			Books:    []core.Book{fixtures.Book("B001", total, 0)},
			Members:  []core.Member{fixtures.Member("M001")},
			Requests: []core.Request{fixtures.PendingRequest("R001", "B001", "M001", fixtures.Now)},
		}
		for i := range total {
			ledger.Issues = append(ledger.Issues, fixtures.ActiveIssue(fmt.Sprintf("I%03d", i+1), "B001", "M001", fixtures.Now, fixtures.Now))
		}

		result := approverequest.Decide(ledger, approverequest.BuildCommand("R001", "U001", fixtures.Now))

		fixtures.RequireFailure(t, result.HasError(), core.Unavailable)
	}
}

func Test_Property_FineReplayIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	policy := core.DefaultFinePolicy()

	for range 500 {
		due := fixtures.Now.Add(time.Duration(rng.IntN(1000)-500) * time.Hour)
		now := fixtures.Now.Add(time.Duration(rng.IntN(1000)) * time.Hour)
		issue := fixtures.ActiveIssue("I001", "B001", "M001", due.AddDate(0, 0, -7), due)

		assert.Equal(t, core.CalculateFine(issue, now, policy), core.CalculateFine(issue, now, policy))

		returned := fixtures.ReturnedIssue("I001", "B001", "M001", due, now, 3)
		assert.InDelta(t, 3.0, core.CalculateFine(returned, now.AddDate(1, 0, 0), policy), 0.0001)
	}
}
