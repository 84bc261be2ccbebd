package settlefine

import (
	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const (
	failureReasonIssueNotFound = "issue not found"
	failureReasonStillActive   = "fine is not final before the book is returned"
	failureReasonNothingOwed   = "no unpaid fine"
)

// Decide marks the fine of a returned issue as paid.
//
// Business Rules:
//
//	GIVEN: a returned issue with an unpaid fine
//	WHEN: SettleFine is received
//	THEN: finePaid = true
//	ERROR: NotFound if the issue does not exist
//	ERROR: ValidationError while the issue is still active
//	IDEMPOTENCY: AlreadyProcessed if the fine is zero or already paid
func Decide(ledger core.Ledger, command Command) core.DecisionResult {
	idx := ledger.IssueIndex(command.IssueID)
	if idx < 0 {
		return core.ErrorDecision(core.NotFound, failureReasonIssueNotFound, command.IssueID)
	}

	issue := ledger.Issues[idx]
	if issue.IsActive() {
		return core.ErrorDecision(core.ValidationError, failureReasonStillActive, command.IssueID)
	}

	if !issue.HasUnpaidFine() {
		return core.IdempotentDecision(command.IssueID, failureReasonNothingOwed)
	}

	l := ledger.Clone()
	l.Issues[idx].FinePaid = true

	return core.SuccessDecision(l, command.IssueID, core.IssuesCollection)
}
