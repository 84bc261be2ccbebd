package removebook

import (
	"fmt"
	"slices"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const failureReasonBookNotFound = "book not found"

// Decide removes a book.
//
// Business Rules:
//
//	GIVEN: an existing book without active issues
//	WHEN: RemoveBook is received
//	THEN: the book is deleted and its pending requests are cancelled at command.At
//	ERROR: NotFound if the book does not exist
//	ERROR: InUse while any active issue references the book
func Decide(ledger core.Ledger, command Command) core.DecisionResult {
	idx := ledger.BookIndex(command.BookID)
	if idx < 0 {
		return core.ErrorDecision(core.NotFound, failureReasonBookNotFound, command.BookID)
	}

	if active := ledger.ActiveIssuesOfBook(command.BookID); active > 0 {
		reason := fmt.Sprintf("%d copies are still on loan", active)
		return core.ErrorDecision(core.InUse, reason, command.BookID)
	}

	l := ledger.Clone()
	l.Books = slices.Delete(l.Books, idx, idx+1)
	changed := []core.Collection{core.BooksCollection}

	if l.CancelPendingRequests(func(r core.Request) bool { return r.BookID == command.BookID }, command.At) {
		changed = append(changed, core.RequestsCollection)
	}

	return core.SuccessDecision(l, command.BookID, changed...)
}
