package overdueissues

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const (
	queryType = "OverdueIssues"
)

// Query represents the intent to list overdue loans at At.
type Query struct {
	At core.Instant
}

// BuildQuery creates a new Query.
func BuildQuery(at time.Time) Query {
	return Query{At: core.ToInstant(at)}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
