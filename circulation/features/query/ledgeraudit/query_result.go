package ledgeraudit

import (
	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

// BookAccount compares a book's counter with the loans in the issue ledger.
type BookAccount struct {
	BookID            core.BookIDString `json:"bookId"`
	TotalCopies       int               `json:"totalCopies"`
	AvailableCopies   int               `json:"availableCopies"`
	ActiveIssues      int               `json:"activeIssues"`
	ExpectedAvailable int               `json:"expectedAvailable"`
}

// Audit represents the query result.
type Audit struct {
	Books      []BookAccount    `json:"books"`
	Violations []core.Violation `json:"violations"`
	Consistent bool             `json:"consistent"`
}
