package issuebookdirect_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/issuebookdirect"
	"github.com/AntonStoeckl/library-circulation-go/testutil/fixtures"
)

func givenLedger(available int) core.Ledger {
	return core.Ledger{
		Books:   []core.Book{fixtures.Book("B001", 3, available)},
		Members: []core.Member{fixtures.Member("M001")},
	}
}

func decide(ledger core.Ledger, channel issuebookdirect.Channel, dueDate *time.Time) core.DecisionResult {
	command := issuebookdirect.BuildCommand("B001", "M001", dueDate, channel, "U001", fixtures.Now)
	return issuebookdirect.Decide(ledger, command, core.DefaultCheckoutRules(), core.DefaultFinePolicy())
}

func Test_Decide_Success_DefaultsToFourteenDays(t *testing.T) {
	// act
	result := decide(givenLedger(3), issuebookdirect.ChannelDashboard, nil)

	// assert
	require.NoError(t, result.HasError())
	assert.ElementsMatch(t, []core.Collection{core.BooksCollection, core.IssuesCollection}, result.Changed)
	require.Len(t, result.Ledger.Issues, 1)
	assert.Equal(t, fixtures.Now.AddDate(0, 0, 14), result.Ledger.Issues[0].DueDate)
	assert.Equal(t, 2, result.Ledger.Books[0].AvailableCopies)
	fixtures.RequireConsistent(t, result.Ledger)
}

func Test_Decide_Success_UsesExplicitDueDate(t *testing.T) {
	due := fixtures.Now.AddDate(0, 0, 3)

	result := decide(givenLedger(3), issuebookdirect.ChannelDashboard, &due)

	require.NoError(t, result.HasError())
	assert.Equal(t, due, result.Ledger.Issues[0].DueDate)
}

func Test_Decide_Error_DueDateBeforeCheckout(t *testing.T) {
	due := fixtures.Now.Add(-time.Hour)

	result := decide(givenLedger(3), issuebookdirect.ChannelDashboard, &due)

	fixtures.RequireFailure(t, result.HasError(), core.ValidationError)
}

func Test_Decide_Error_NoCopies(t *testing.T) {
	result := decide(givenLedger(0), issuebookdirect.ChannelDashboard, nil)

	fixtures.RequireFailure(t, result.HasError(), core.Unavailable)
}

func Test_Decide_Error_UnknownBookOrMember(t *testing.T) {
	ledger := givenLedger(3)
	ledger.Members = nil
	fixtures.RequireFailure(t, decide(ledger, issuebookdirect.ChannelDashboard, nil).HasError(), core.NotFound)

	ledger.Books = nil
	fixtures.RequireFailure(t, decide(ledger, issuebookdirect.ChannelDashboard, nil).HasError(), core.NotFound)
}

func Test_Decide_QR_LimitExceededWithOutstandingFine(t *testing.T) {
	// arrange
	ledger := givenLedger(3)
	due := fixtures.Now.AddDate(0, 0, -10)
	ledger.Issues = []core.Issue{fixtures.ReturnedIssue("I001", "B001", "M001", due, due.AddDate(0, 0, 2), 2)}
	ledger.Books[0].AvailableCopies = 3

	// act
	qr := decide(ledger, issuebookdirect.ChannelQR, nil)
	dashboard := decide(ledger, issuebookdirect.ChannelDashboard, nil)

	// assert
	fixtures.RequireFailure(t, qr.HasError(), core.LimitExceeded)
	require.NoError(t, dashboard.HasError(), "the desk is not bound by self-service limits")
}

func Test_Decide_QR_LimitExceededAtBorrowLimit(t *testing.T) {
	ledger := core.Ledger{
		Books:   []core.Book{fixtures.Book("B001", 10, 5)},
		Members: []core.Member{fixtures.Member("M001")},
	}
	for _, id := range []string{"I001", "I002", "I003", "I004", "I005"} {
		ledger.Issues = append(ledger.Issues, fixtures.ActiveIssue(id, "B001", "M001", fixtures.Now, fixtures.Now.AddDate(0, 0, 7)))
	}

	result := decide(ledger, issuebookdirect.ChannelQR, nil)

	fixtures.RequireFailure(t, result.HasError(), core.LimitExceeded)
}

func Test_Decide_QR_SucceedsBelowLimits(t *testing.T) {
	ledger := givenLedger(3)
	ledger.Issues = []core.Issue{fixtures.ActiveIssue("I001", "B001", "M001", fixtures.Now, fixtures.Now.AddDate(0, 0, 7))}
	ledger.Books[0].AvailableCopies = 2

	result := decide(ledger, issuebookdirect.ChannelQR, nil)

	require.NoError(t, result.HasError())
	assert.Equal(t, "I002", result.EntityID)
}
