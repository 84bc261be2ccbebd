package fineestimates_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/query/fineestimates"
	"github.com/AntonStoeckl/library-circulation-go/testutil/fixtures"
)

func givenLedger() core.Ledger {
	paid := fixtures.ReturnedIssue("I003", "B001", "M001", fixtures.Now.AddDate(0, 0, -20), fixtures.Now.AddDate(0, 0, -15), 5)
	paid.FinePaid = true

	return core.Ledger{
		Issues: []core.Issue{
			fixtures.ActiveIssue("I001", "B001", "M002", fixtures.Now.AddDate(0, 0, -10), fixtures.Now.AddDate(0, 0, -3)),
			fixtures.ReturnedIssue("I002", "B002", "M001", fixtures.Now.AddDate(0, 0, -12), fixtures.Now.AddDate(0, 0, -8), 4),
			paid,
			fixtures.ActiveIssue("I004", "B002", "M001", fixtures.Now, fixtures.Now.AddDate(0, 0, 7)),
		},
	}
}

func Test_Project_ListsEstimatesAndUnpaidFines(t *testing.T) {
	// act
	result := fineestimates.Project(givenLedger(), fineestimates.BuildQuery("", fixtures.Now), core.DefaultFinePolicy())

	// assert
	require.Equal(t, 2, result.Count)
	assert.Equal(t, "I002", result.Entries[0].IssueID)
	assert.True(t, result.Entries[0].Final)
	assert.InDelta(t, 4.0, result.Entries[0].Amount, 0.0001)

	assert.Equal(t, "I001", result.Entries[1].IssueID)
	assert.False(t, result.Entries[1].Final)
	assert.Equal(t, 3, result.Entries[1].DaysOverdue)
	assert.InDelta(t, 3.0, result.Entries[1].Amount, 0.0001)

	assert.InDelta(t, 7.0, result.Total, 0.0001)
	assert.InDelta(t, 4.0, result.PerMember["M001"], 0.0001)
	assert.Equal(t, core.FinePolicyUncapped, result.Policy)
}

func Test_Project_FiltersByMember(t *testing.T) {
	result := fineestimates.Project(givenLedger(), fineestimates.BuildQuery("M002", fixtures.Now), core.DefaultFinePolicy())

	require.Equal(t, 1, result.Count)
	assert.Equal(t, "M002", result.Entries[0].MemberID)
}

func Test_Project_CappedPolicyLimitsEstimates(t *testing.T) {
	ledger := core.Ledger{
		Issues: []core.Issue{fixtures.ActiveIssue("I001", "B001", "M001", fixtures.Now.AddDate(0, 0, -200), fixtures.Now.AddDate(0, 0, -100))},
	}

	result := fineestimates.Project(ledger, fineestimates.BuildQuery("", fixtures.Now), core.CappedFine{RatePerDay: 1, MaxPerBook: 50})

	assert.InDelta(t, 50.0, result.Total, 0.0001)
}

func Test_QueryHandler_ReadsFromStore(t *testing.T) {
	store := fixtures.Store(t, givenLedger())
	handler, err := fineestimates.NewQueryHandler(store, nil)
	require.NoError(t, err)

	result, err := handler.Handle(context.Background(), fineestimates.BuildQuery("M001", fixtures.Now))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
}

func Test_QueryHandler_RejectsMalformedMemberID(t *testing.T) {
	handler, err := fineestimates.NewQueryHandler(fixtures.Store(t, core.Ledger{}), nil)
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), fineestimates.BuildQuery("nobody", fixtures.Now))

	fixtures.RequireFailure(t, err, core.ValidationError)
}
