package issuebookdirect

import (
	"fmt"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const (
	failureReasonBookNotFound      = "book not found"
	failureReasonMemberNotFound    = "member not found"
	failureReasonNoCopiesAvailable = "no copies available"
	failureReasonDueDateInPast     = "due date is before the checkout time"
)

// Decide lends one copy of a book to a member.
//
// Business Rules:
//
//	GIVEN: an existing book with availableCopies > 0 and an existing member
//	WHEN: IssueBookDirect is received
//	THEN: an Issue I### is created with dueDate = command.DueDate or command.At + 14 days,
//	      the book loses one available copy
//	ERROR: NotFound if the book or the member does not exist
//	ERROR: Unavailable if no copy is left
//	ERROR: ValidationError if command.DueDate is before command.At
//	QR ONLY: LimitExceeded if the member owes more than rules.FineThreshold
//	         or already holds rules.BorrowLimit active loans
func Decide(ledger core.Ledger, command Command, rules core.CheckoutRules, policy core.FinePolicy) core.DecisionResult {
	bookIdx := ledger.BookIndex(command.BookID)
	if bookIdx < 0 {
		return core.ErrorDecision(core.NotFound, failureReasonBookNotFound, command.BookID)
	}

	if ledger.Books[bookIdx].AvailableCopies <= 0 {
		return core.ErrorDecision(core.Unavailable, failureReasonNoCopiesAvailable, command.BookID)
	}

	if ledger.MemberIndex(command.MemberID) < 0 {
		return core.ErrorDecision(core.NotFound, failureReasonMemberNotFound, command.MemberID)
	}

	if command.Channel == ChannelQR {
		if owed := ledger.OutstandingFines(command.MemberID, command.At, policy); owed > rules.FineThreshold {
			reason := fmt.Sprintf("outstanding fines %.2f exceed %.2f", owed, rules.FineThreshold)
			return core.ErrorDecision(core.LimitExceeded, reason, command.MemberID)
		}

		if active := ledger.ActiveIssuesOfMember(command.MemberID); active >= rules.BorrowLimit {
			reason := fmt.Sprintf("borrow limit of %d reached", rules.BorrowLimit)
			return core.ErrorDecision(core.LimitExceeded, reason, command.MemberID)
		}
	}

	dueDate := core.DirectIssuePolicy.DueDate(command.At)
	if command.DueDate != nil {
		if command.DueDate.Before(command.At) {
			return core.ErrorDecision(core.ValidationError, failureReasonDueDateInPast, command.BookID)
		}

		dueDate = *command.DueDate
	}

	l := ledger.Clone()
	issue := core.Issue{
		ID:        l.NextIssueID(),
		BookID:    command.BookID,
		MemberID:  command.MemberID,
		IssueDate: command.At,
		DueDate:   dueDate,
		Status:    core.IssueActive,
		IssuedBy:  command.IssuedBy,
	}
	l.Issues = append(l.Issues, issue)
	l.Books[bookIdx].AvailableCopies--

	return core.SuccessDecision(l, issue.ID, core.BooksCollection, core.IssuesCollection)
}
