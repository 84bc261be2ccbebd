package addbook

import (
	"strings"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const failureReasonDuplicateISBN = "a book with this ISBN already exists"

// Decide appends a Book with a fresh B### id and availableCopies = totalCopies.
// A non-empty ISBN must be unique, otherwise ValidationError.
func Decide(ledger core.Ledger, command Command) core.DecisionResult {
	isbn := strings.TrimSpace(command.ISBN)
	if isbn != "" {
		for _, b := range ledger.Books {
			if strings.EqualFold(b.ISBN, isbn) {
				return core.ErrorDecision(core.ValidationError, failureReasonDuplicateISBN, b.ID)
			}
		}
	}

	l := ledger.Clone()
	book := core.Book{
		ID:              l.NextBookID(),
		Title:           strings.TrimSpace(command.Title),
		Author:          strings.TrimSpace(command.Author),
		Category:        strings.TrimSpace(command.Category),
		TotalCopies:     command.TotalCopies,
		AvailableCopies: command.TotalCopies,
		CoverImage:      command.CoverImage,
		ISBN:            isbn,
		Publisher:       command.Publisher,
		PublicationYear: command.PublicationYear,
	}
	l.Books = append(l.Books, book)

	return core.SuccessDecision(l, book.ID, core.BooksCollection)
}
