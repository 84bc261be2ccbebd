package ledgeraudit

import (
	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

// Project builds the audit. It is a pure function.
//
// Query Logic:
//
//	GIVEN: the current ledger
//	WHEN: LedgerAudit is executed
//	THEN: one BookAccount per book in catalog order, plus every rule violation
//	CONSISTENT: only when there are no violations at all
func Project(ledger core.Ledger, _ Query) Audit {
	books := make([]BookAccount, 0, len(ledger.Books))

	for _, book := range ledger.Books {
		active := ledger.ActiveIssuesOfBook(book.ID)
		books = append(books, BookAccount{
			BookID:            book.ID,
			TotalCopies:       book.TotalCopies,
			AvailableCopies:   book.AvailableCopies,
			ActiveIssues:      active,
			ExpectedAvailable: book.TotalCopies - active,
		})
	}

	violations := core.CheckInvariants(ledger)
	if violations == nil {
		violations = []core.Violation{}
	}

	return Audit{
		Books:      books,
		Violations: violations,
		Consistent: len(violations) == 0,
	}
}
