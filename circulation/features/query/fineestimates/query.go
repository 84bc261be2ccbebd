package fineestimates

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const (
	queryType = "FineEstimates"
)

// Query represents the intent to list outstanding fines at a point in time.
// An empty MemberID means all members.
type Query struct {
	MemberID core.MemberIDString `validate:"omitempty,memberid"`
	At       core.Instant
}

// BuildQuery creates a new Query with the provided parameters.
func BuildQuery(memberID core.MemberIDString, at time.Time) Query {
	return Query{
		MemberID: memberID,
		At:       core.ToInstant(at),
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
