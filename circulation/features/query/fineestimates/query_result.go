package fineestimates

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

// FineEntry is one loan that costs money.
// Final is true for returned loans whose fine is frozen; otherwise Amount is an estimate.
type FineEntry struct {
	IssueID     core.IssueIDString  `json:"issueId"`
	BookID      core.BookIDString   `json:"bookId"`
	MemberID    core.MemberIDString `json:"memberId"`
	DueDate     time.Time           `json:"dueDate"`
	DaysOverdue int                 `json:"daysOverdue"`
	Amount      float64             `json:"amount"`
	Final       bool                `json:"final"`
}

// FineEstimates represents the query result.
type FineEstimates struct {
	Entries   []FineEntry                     `json:"entries"`
	PerMember map[core.MemberIDString]float64 `json:"perMember"`
	Total     float64                         `json:"total"`
	Policy    string                          `json:"policy"`
	Count     int                             `json:"count"`
}
