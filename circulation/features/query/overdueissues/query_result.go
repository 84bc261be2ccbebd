package overdueissues

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

// OverdueIssue joins an overdue loan with the names a librarian needs to chase it.
type OverdueIssue struct {
	IssueID     core.IssueIDString  `json:"issueId"`
	BookID      core.BookIDString   `json:"bookId"`
	BookTitle   string              `json:"bookTitle"`
	MemberID    core.MemberIDString `json:"memberId"`
	MemberName  string              `json:"memberName"`
	MemberEmail string              `json:"memberEmail"`
	DueDate     time.Time           `json:"dueDate"`
	DaysOverdue int                 `json:"daysOverdue"`
}

type OverdueIssues struct {
	Issues []OverdueIssue `json:"issues"`
	Count  int            `json:"count"`
}
