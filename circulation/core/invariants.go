package core

import (
	"fmt"
)

// Violation describes one broken consistency rule.
type Violation struct {
	Rule     string `json:"rule"`
	EntityID string `json:"entityId"`
	Detail   string `json:"detail"`
}

const (
	RuleCopyBounds     = "copy-bounds"
	RuleCopyAccounting = "copy-accounting"
	RuleOrphanRequest  = "orphan-request"
	RuleOrphanIssue    = "orphan-issue"
	RuleDuplicateID    = "duplicate-id"
)

// CheckInvariants lists every book whose counters disagree with the issue ledger,
// every request or issue pointing at a missing book or member, and duplicate ids.
// A consistent ledger yields no violations.
func CheckInvariants(l Ledger) []Violation {
	var violations []Violation

	for _, book := range l.Books {
		if book.AvailableCopies < 0 || book.AvailableCopies > book.TotalCopies {
			violations = append(violations, Violation{
				Rule:     RuleCopyBounds,
				EntityID: book.ID,
				Detail:   fmt.Sprintf("available %d outside [0, %d]", book.AvailableCopies, book.TotalCopies),
			})
		}

		expected := book.TotalCopies - l.ActiveIssuesOfBook(book.ID)
		if book.AvailableCopies != expected {
			violations = append(violations, Violation{
				Rule:     RuleCopyAccounting,
				EntityID: book.ID,
				Detail:   fmt.Sprintf("available %d, expected %d", book.AvailableCopies, expected),
			})
		}
	}

	for _, request := range l.Requests {
		if l.BookIndex(request.BookID) < 0 || l.MemberIndex(request.MemberID) < 0 {
			violations = append(violations, Violation{
				Rule:     RuleOrphanRequest,
				EntityID: request.ID,
				Detail:   fmt.Sprintf("book %q or member %q missing", request.BookID, request.MemberID),
			})
		}
	}

	for _, issue := range l.Issues {
		if l.BookIndex(issue.BookID) < 0 || l.MemberIndex(issue.MemberID) < 0 {
			violations = append(violations, Violation{
				Rule:     RuleOrphanIssue,
				EntityID: issue.ID,
				Detail:   fmt.Sprintf("book %q or member %q missing", issue.BookID, issue.MemberID),
			})
		}
	}

	for _, ids := range [][]string{l.bookIDs(), l.memberIDs(), l.userIDs(), l.requestIDs(), l.issueIDs(), l.categoryIDs()} {
		seen := make(map[string]bool, len(ids))

		for _, id := range ids {
			if seen[id] {
				violations = append(violations, Violation{Rule: RuleDuplicateID, EntityID: id, Detail: "id used more than once"})
			}

			seen[id] = true
		}
	}

	return violations
}
