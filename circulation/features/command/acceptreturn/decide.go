package acceptreturn

import (
	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const (
	failureReasonIssueNotFound = "issue not found"
	failureReasonReturned      = "issue already returned"
)

// Decide records a return.
//
// Business Rules:
//
//	GIVEN: an active issue
//	WHEN: AcceptReturn is received
//	THEN: daysOverdue = max(0, ceil((command.At - dueDate) / 24h)),
//	      fine = policy.Amount(daysOverdue), status returned, returnDate = command.At,
//	      and the book regains one copy, never above totalCopies
//	ERROR: NotFound if the issue does not exist
//	IDEMPOTENCY: AlreadyProcessed if the issue is already returned
//	NOTE: a missing book still lets the issue close; only the issues collection changes then
func Decide(ledger core.Ledger, command Command, policy core.FinePolicy) core.DecisionResult {
	issueIdx := ledger.IssueIndex(command.IssueID)
	if issueIdx < 0 {
		return core.ErrorDecision(core.NotFound, failureReasonIssueNotFound, command.IssueID)
	}

	if !ledger.Issues[issueIdx].IsActive() {
		return core.IdempotentDecision(command.IssueID, failureReasonReturned)
	}

	l := ledger.Clone()
	issue := &l.Issues[issueIdx]
	returnedAt := command.At

	issue.DaysOverdue = core.DaysOverdueAt(issue.DueDate, command.At)
	issue.Fine = policy.Amount(issue.DaysOverdue)
	issue.Status = core.IssueReturned
	issue.ReturnDate = &returnedAt

	changed := []core.Collection{core.IssuesCollection}

	if bookIdx := l.BookIndex(issue.BookID); bookIdx >= 0 {
		book := &l.Books[bookIdx]
		book.AvailableCopies = min(book.AvailableCopies+1, book.TotalCopies)
		changed = append(changed, core.BooksCollection)
	}

	return core.SuccessDecision(l, command.IssueID, changed...)
}
