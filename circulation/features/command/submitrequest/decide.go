package submitrequest

import (
	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const (
	failureReasonMemberNotFound = "member not found"
	failureReasonBookNotFound   = "book not found"
)

// Decide appends a pending Request.
//
// Business Rules:
//
//	GIVEN: a member and a book
//	WHEN: SubmitRequest is received
//	THEN: a Request R### with status pending and requestDate = command.At is appended
//	ERROR: NotFound if the member or the book does not exist
//	NOTE: copies are not checked and not touched
func Decide(ledger core.Ledger, command Command) core.DecisionResult {
	if ledger.MemberIndex(command.MemberID) < 0 {
		return core.ErrorDecision(core.NotFound, failureReasonMemberNotFound, command.MemberID)
	}

	if ledger.BookIndex(command.BookID) < 0 {
		return core.ErrorDecision(core.NotFound, failureReasonBookNotFound, command.BookID)
	}

	l := ledger.Clone()
	request := core.Request{
		ID:          l.NextRequestID(),
		BookID:      command.BookID,
		MemberID:    command.MemberID,
		RequestDate: command.At,
		Status:      core.RequestPending,
	}
	l.Requests = append(l.Requests, request)

	return core.SuccessDecision(l, request.ID, core.RequestsCollection)
}
