package command_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/acceptreturn"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/approverequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/issuebookdirect"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/submitrequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/testutil/fixtures"
)

type handlers struct {
	submit  submitrequest.CommandHandler
	approve approverequest.CommandHandler
	issue   issuebookdirect.CommandHandler
	accept  acceptreturn.CommandHandler
}

func newHandlers(t *testing.T, store shell.LedgerStore, policy core.FinePolicy) handlers {
	t.Helper()

	locker := shell.WithLocker(shell.NewMutexLocker())

	submit, err := submitrequest.NewCommandHandler(store, locker)
	require.NoError(t, err)

	approve, err := approverequest.NewCommandHandler(store, locker)
	require.NoError(t, err)

	issue, err := issuebookdirect.NewCommandHandler(store, core.DefaultCheckoutRules(), policy, locker)
	require.NoError(t, err)

	accept, err := acceptreturn.NewCommandHandler(store, policy, locker)
	require.NoError(t, err)

	return handlers{submit: submit, approve: approve, issue: issue, accept: accept}
}

func Test_Scenario_LastCopyIsLentReturnedLateAndLentAgain(t *testing.T) {
	policies := map[string]core.FinePolicy{
		"uncapped": core.UncappedFine{RatePerDay: core.DefaultRatePerDay},
		"capped":   core.CappedFine{RatePerDay: core.DefaultRatePerDay, MaxPerBook: core.DefaultMaxPerBook},
	}

	for name, policy := range policies {
		t.Run(name, func(t *testing.T) {
			// arrange
			ctx := context.Background()
			store := fixtures.Store(t, core.Ledger{
				Books:   []core.Book{fixtures.Book("B001", 1, 1)},
				Members: []core.Member{fixtures.Member("M001"), fixtures.Member("M002")},
			})
			h := newHandlers(t, store, policy)

			// act + assert: the first request wins the only copy
			r1, err := h.submit.Handle(ctx, submitrequest.BuildCommand("M001", "B001", fixtures.Now))
			require.NoError(t, err)

			i1, err := h.approve.Handle(ctx, approverequest.BuildCommand(r1.EntityID, "U001", fixtures.Now))
			require.NoError(t, err)
			assert.Equal(t, "I001", i1.EntityID)
			assert.Equal(t, 0, fixtures.Load(t, store).Books[0].AvailableCopies)

			// the second request cannot be approved while the copy is out
			r2, err := h.submit.Handle(ctx, submitrequest.BuildCommand("M002", "B001", fixtures.Now))
			require.NoError(t, err)

			_, err = h.approve.Handle(ctx, approverequest.BuildCommand(r2.EntityID, "U001", fixtures.Now))
			fixtures.RequireFailure(t, err, core.Unavailable)

			// returned ten days after the seven day due date
			returnedAt := fixtures.Now.AddDate(0, 0, 7+10)
			_, err = h.accept.Handle(ctx, acceptreturn.BuildCommand(i1.EntityID, returnedAt))
			require.NoError(t, err)

			ledger := fixtures.Load(t, store)
			assert.Equal(t, 10, ledger.Issues[0].DaysOverdue)
			assert.InDelta(t, 10.0, ledger.Issues[0].Fine, 0.0001)
			assert.Equal(t, 1, ledger.Books[0].AvailableCopies)

			// now the waiting request goes through
			_, err = h.approve.Handle(ctx, approverequest.BuildCommand(r2.EntityID, "U001", returnedAt))
			require.NoError(t, err)

			ledger = fixtures.Load(t, store)
			assert.Equal(t, 0, ledger.Books[0].AvailableCopies)
			fixtures.RequireConsistent(t, ledger)
		})
	}
}

func Test_Scenario_DirectIssueRunsSevenDaysLongerThanApproval(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.Store(t, core.Ledger{
		Books:   []core.Book{fixtures.Book("B001", 2, 2)},
		Members: []core.Member{fixtures.Member("M001")},
	})
	h := newHandlers(t, store, core.DefaultFinePolicy())

	// act
	request, err := h.submit.Handle(ctx, submitrequest.BuildCommand("M001", "B001", fixtures.Now))
	require.NoError(t, err)

	approved, err := h.approve.Handle(ctx, approverequest.BuildCommand(request.EntityID, "U001", fixtures.Now))
	require.NoError(t, err)

	direct, err := h.issue.Handle(ctx, issuebookdirect.BuildCommand("B001", "M001", nil, issuebookdirect.ChannelDashboard, "U001", fixtures.Now))
	require.NoError(t, err)

	// assert
	ledger := fixtures.Load(t, store)
	viaApproval := ledger.Issues[ledger.IssueIndex(approved.EntityID)]
	viaDesk := ledger.Issues[ledger.IssueIndex(direct.EntityID)]

	assert.Equal(t, 7*24, int(viaDesk.DueDate.Sub(viaApproval.DueDate).Hours()))
	fixtures.RequireConsistent(t, ledger)
}

func Test_Scenario_SecondReturnChangesNothing(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.Store(t, core.Ledger{
		Books:   []core.Book{fixtures.Book("B001", 1, 0)},
		Members: []core.Member{fixtures.Member("M001")},
		Issues:  []core.Issue{fixtures.ActiveIssue("I001", "B001", "M001", fixtures.Now, fixtures.Now.AddDate(0, 0, 7))},
	})
	h := newHandlers(t, store, core.DefaultFinePolicy())

	_, err := h.accept.Handle(ctx, acceptreturn.BuildCommand("I001", fixtures.Now))
	require.NoError(t, err)
	before := fixtures.Load(t, store)

	// act
	result, err := h.accept.Handle(ctx, acceptreturn.BuildCommand("I001", fixtures.Now.AddDate(0, 0, 30)))

	// assert
	fixtures.RequireFailure(t, err, core.AlreadyProcessed)
	assert.True(t, result.Idempotent)
	assert.Equal(t, before, fixtures.Load(t, store))
}
