package updatebook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/updatebook"
	"github.com/AntonStoeckl/library-circulation-go/testutil/fixtures"
)

func givenLedgerWithOneLoan() core.Ledger {
	return core.Ledger{
		Books:  []core.Book{fixtures.Book("B001", 3, 2)},
		Issues: []core.Issue{fixtures.ActiveIssue("I001", "B001", "M001", fixtures.Now, fixtures.Now.AddDate(0, 0, 7))},
	}
}

func Test_Decide_Success_RecomputesAvailability(t *testing.T) {
	ledger := givenLedgerWithOneLoan()
	book := ledger.Books[0]
	book.TotalCopies = 5
	book.Title = "Second Edition"

	result := updatebook.Decide(ledger, updatebook.BuildCommand(book, fixtures.Now))

	require.NoError(t, result.HasError())
	assert.Equal(t, "Second Edition", result.Ledger.Books[0].Title)
	assert.Equal(t, 4, result.Ledger.Books[0].AvailableCopies)
	fixtures.RequireConsistent(t, result.Ledger)
}

func Test_Decide_Error_TotalBelowCopiesOnLoan(t *testing.T) {
	ledger := givenLedgerWithOneLoan()
	book := ledger.Books[0]
	book.TotalCopies = 0

	result := updatebook.Decide(ledger, updatebook.BuildCommand(book, fixtures.Now))

	fixtures.RequireFailure(t, result.HasError(), core.ValidationError)
}

func Test_Decide_Error_UnknownBook(t *testing.T) {
	result := updatebook.Decide(core.Ledger{}, updatebook.BuildCommand(fixtures.Book("B001", 1, 1), fixtures.Now))

	fixtures.RequireFailure(t, result.HasError(), core.NotFound)
}
