package cancelrequest

import (
	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const (
	failureReasonRequestNotFound  = "request not found"
	failureReasonNotRequester     = "request belongs to another member"
	failureReasonRequestProcessed = "request is not pending"
)

// Decide cancels a pending request on behalf of the member who submitted it.
//
// Business Rules:
//
//	GIVEN: a pending request submitted by command.MemberID
//	WHEN: CancelRequest is received
//	THEN: the request becomes cancelled and processedDate = command.At
//	ERROR: NotFound if the request does not exist
//	ERROR: ValidationError if another member submitted the request
//	IDEMPOTENCY: AlreadyProcessed if the request is no longer pending
func Decide(ledger core.Ledger, command Command) core.DecisionResult {
	idx := ledger.RequestIndex(command.RequestID)
	if idx < 0 {
		return core.ErrorDecision(core.NotFound, failureReasonRequestNotFound, command.RequestID)
	}

	request := ledger.Requests[idx]
	if request.MemberID != command.MemberID {
		return core.ErrorDecision(core.ValidationError, failureReasonNotRequester, command.RequestID)
	}

	if !request.IsPending() {
		return core.IdempotentDecision(command.RequestID, failureReasonRequestProcessed)
	}

	l := ledger.Clone()
	processedAt := command.At
	l.Requests[idx].Status = core.RequestCancelled
	l.Requests[idx].ProcessedDate = &processedAt

	return core.SuccessDecision(l, command.RequestID, core.RequestsCollection)
}
