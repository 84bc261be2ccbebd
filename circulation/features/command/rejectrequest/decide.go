package rejectrequest

import (
	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const (
	failureReasonRequestNotFound  = "request not found"
	failureReasonRequestProcessed = "request is not pending"
)

// Decide marks a pending request as rejected.
//
// Business Rules:
//
//	GIVEN: a pending request
//	WHEN: RejectRequest is received
//	THEN: the request becomes rejected and is stamped with processedBy and processedDate
//	ERROR: NotFound if the request does not exist
//	IDEMPOTENCY: AlreadyProcessed if the request is no longer pending
func Decide(ledger core.Ledger, command Command) core.DecisionResult {
	idx := ledger.RequestIndex(command.RequestID)
	if idx < 0 {
		return core.ErrorDecision(core.NotFound, failureReasonRequestNotFound, command.RequestID)
	}

	if !ledger.Requests[idx].IsPending() {
		return core.IdempotentDecision(command.RequestID, failureReasonRequestProcessed)
	}

	l := ledger.Clone()
	processedAt := command.At
	l.Requests[idx].Status = core.RequestRejected
	l.Requests[idx].ProcessedBy = command.ProcessedBy
	l.Requests[idx].ProcessedDate = &processedAt

	return core.SuccessDecision(l, command.RequestID, core.RequestsCollection)
}
