package overdueissues

import (
	"cmp"
	"slices"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

// Project selects active issues with dueDate before query.At, oldest due date first.
// Titles and names stay empty when the book or member no longer exists.
func Project(ledger core.Ledger, query Query) OverdueIssues {
	overdue := make([]OverdueIssue, 0)

	for _, issue := range ledger.Issues {
		if !core.IsOverdue(issue, query.At) {
			continue
		}

		item := OverdueIssue{
			IssueID:     issue.ID,
			BookID:      issue.BookID,
			MemberID:    issue.MemberID,
			DueDate:     issue.DueDate,
			DaysOverdue: core.CalendarDaysOverdue(issue.DueDate, query.At),
		}

		if idx := ledger.BookIndex(issue.BookID); idx >= 0 {
			item.BookTitle = ledger.Books[idx].Title
		}

		if idx := ledger.MemberIndex(issue.MemberID); idx >= 0 {
			item.MemberName = ledger.Members[idx].Name
			item.MemberEmail = ledger.Members[idx].Email
		}

		overdue = append(overdue, item)
	}

	slices.SortFunc(overdue, func(a, b OverdueIssue) int {
		return cmp.Or(a.DueDate.Compare(b.DueDate), cmp.Compare(a.IssueID, b.IssueID))
	})

	return OverdueIssues{Issues: overdue, Count: len(overdue)}
}
