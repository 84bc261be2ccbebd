package approverequest

import (
	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const (
	failureReasonRequestNotFound   = "request not found"
	failureReasonRequestProcessed  = "request is not pending"
	failureReasonBookNotFound      = "book not found"
	failureReasonNoCopiesAvailable = "no copies available"
)

// Decide approves a request and lends one copy.
//
// Business Rules:
//
//	GIVEN: a pending request for an existing book with availableCopies > 0
//	WHEN: ApproveRequest is received
//	THEN: an Issue I### is created with dueDate = command.At + 7 days,
//	      the book loses one available copy,
//	      the request becomes approved and is stamped with processedBy and processedDate
//	ERROR: NotFound if the request or its book does not exist
//	ERROR: Unavailable if no copy is left; the request stays pending
//	IDEMPOTENCY: AlreadyProcessed if the request is no longer pending
func Decide(ledger core.Ledger, command Command) core.DecisionResult {
	requestIdx := ledger.RequestIndex(command.RequestID)
	if requestIdx < 0 {
		return core.ErrorDecision(core.NotFound, failureReasonRequestNotFound, command.RequestID)
	}

	request := ledger.Requests[requestIdx]
	if !request.IsPending() {
		return core.IdempotentDecision(request.ID, failureReasonRequestProcessed)
	}

	bookIdx := ledger.BookIndex(request.BookID)
	if bookIdx < 0 {
		return core.ErrorDecision(core.NotFound, failureReasonBookNotFound, request.BookID)
	}

	if ledger.Books[bookIdx].AvailableCopies <= 0 {
		return core.ErrorDecision(core.Unavailable, failureReasonNoCopiesAvailable, request.BookID)
	}

	l := ledger.Clone()
	issue := core.Issue{
		ID:        l.NextIssueID(),
		BookID:    request.BookID,
		MemberID:  request.MemberID,
		IssueDate: command.At,
		DueDate:   core.RequestApprovalPolicy.DueDate(command.At),
		Status:    core.IssueActive,
		IssuedBy:  command.ProcessedBy,
	}
	l.Issues = append(l.Issues, issue)
	l.Books[bookIdx].AvailableCopies--

	processedAt := command.At
	l.Requests[requestIdx].Status = core.RequestApproved
	l.Requests[requestIdx].ProcessedBy = command.ProcessedBy
	l.Requests[requestIdx].ProcessedDate = &processedAt

	return core.SuccessDecision(l, issue.ID, core.BooksCollection, core.IssuesCollection, core.RequestsCollection)
}
