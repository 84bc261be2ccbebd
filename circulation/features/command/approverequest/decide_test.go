package approverequest_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/approverequest"
	"github.com/AntonStoeckl/library-circulation-go/testutil/fixtures"
)

func givenLedger(available int) core.Ledger {
	return core.Ledger{
		Books:    []core.Book{fixtures.Book("B001", 1, available)},
		Members:  []core.Member{fixtures.Member("M001")},
		Requests: []core.Request{fixtures.PendingRequest("R001", "B001", "M001", fixtures.Now.Add(-time.Hour))},
	}
}

func Test_Decide_Success_CreatesIssueDueInSevenDays(t *testing.T) {
	// arrange
	ledger := givenLedger(1)

	// act
	result := approverequest.Decide(ledger, approverequest.BuildCommand("R001", "U001", fixtures.Now))

	// assert
	require.NoError(t, result.HasError())
	assert.Equal(t, "I001", result.EntityID)
	assert.ElementsMatch(t, []core.Collection{core.BooksCollection, core.IssuesCollection, core.RequestsCollection}, result.Changed)

	require.Len(t, result.Ledger.Issues, 1)
	issue := result.Ledger.Issues[0]
	assert.Equal(t, core.IssueActive, issue.Status)
	assert.Equal(t, fixtures.Now.AddDate(0, 0, 7), issue.DueDate)
	assert.Equal(t, "U001", issue.IssuedBy)

	assert.Equal(t, 0, result.Ledger.Books[0].AvailableCopies)

	request := result.Ledger.Requests[0]
	assert.Equal(t, core.RequestApproved, request.Status)
	assert.Equal(t, "U001", request.ProcessedBy)
	require.NotNil(t, request.ProcessedDate)
	assert.Equal(t, fixtures.Now, *request.ProcessedDate)

	fixtures.RequireConsistent(t, result.Ledger)
}

func Test_Decide_Error_NoCopiesLeavesRequestPending(t *testing.T) {
	ledger := givenLedger(0)

	result := approverequest.Decide(ledger, approverequest.BuildCommand("R001", "U001", fixtures.Now))

	fixtures.RequireFailure(t, result.HasError(), core.Unavailable)
	assert.False(t, result.HasChanges())
	assert.Equal(t, core.RequestPending, ledger.Requests[0].Status)
}

func Test_Decide_AlreadyProcessed_WhenRequestNotPending(t *testing.T) {
	for _, status := range []core.RequestStatus{core.RequestApproved, core.RequestRejected, core.RequestCancelled} {
		ledger := givenLedger(1)
		ledger.Requests[0].Status = status

		result := approverequest.Decide(ledger, approverequest.BuildCommand("R001", "U001", fixtures.Now))

		assert.True(t, result.IsIdempotent(), status)
		fixtures.RequireFailure(t, result.HasError(), core.AlreadyProcessed)
	}
}

func Test_Decide_Error_UnknownRequestOrBook(t *testing.T) {
	ledger := givenLedger(1)
	fixtures.RequireFailure(t, approverequest.Decide(ledger, approverequest.BuildCommand("R404", "U001", fixtures.Now)).HasError(), core.NotFound)

	ledger.Books = nil
	fixtures.RequireFailure(t, approverequest.Decide(ledger, approverequest.BuildCommand("R001", "U001", fixtures.Now)).HasError(), core.NotFound)
}
