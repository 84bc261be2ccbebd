package updatebook

import (
	"fmt"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const failureReasonBookNotFound = "book not found"

// Decide overwrites the book's catalog fields.
//
// Business Rules:
//
//	GIVEN: an existing book
//	WHEN: UpdateBook is received
//	THEN: the fields are replaced and availableCopies = totalCopies - active issues of the book
//	ERROR: NotFound if the book does not exist
//	ERROR: ValidationError if totalCopies is below the number of copies currently lent out
func Decide(ledger core.Ledger, command Command) core.DecisionResult {
	idx := ledger.BookIndex(command.BookID)
	if idx < 0 {
		return core.ErrorDecision(core.NotFound, failureReasonBookNotFound, command.BookID)
	}

	active := ledger.ActiveIssuesOfBook(command.BookID)
	if command.TotalCopies < active {
		reason := fmt.Sprintf("totalCopies %d is below the %d copies on loan", command.TotalCopies, active)
		return core.ErrorDecision(core.ValidationError, reason, command.BookID)
	}

	l := ledger.Clone()
	l.Books[idx] = core.Book{
		ID:              command.BookID,
		Title:           command.Title,
		Author:          command.Author,
		Category:        command.Category,
		TotalCopies:     command.TotalCopies,
		AvailableCopies: command.TotalCopies - active,
		CoverImage:      command.CoverImage,
		ISBN:            command.ISBN,
		Publisher:       command.Publisher,
		PublicationYear: command.PublicationYear,
	}

	return core.SuccessDecision(l, command.BookID, core.BooksCollection)
}
