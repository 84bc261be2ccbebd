package core

import (
	"time"
)

// Alias types instead of full value objects.

// BookIDString represents a book identifier like "B001".
type BookIDString = string

// MemberIDString represents a member identifier like "M001" or "ENT0001".
type MemberIDString = string

// RequestIDString represents a request identifier like "R001".
type RequestIDString = string

// IssueIDString represents an issue identifier like "I001".
type IssueIDString = string

// UserIDString represents a user identifier like "U001".
type UserIDString = string

// Instant represents a point in time at which a command happened.
type Instant = time.Time

// ToInstant normalizes t to UTC with microsecond precision.
func ToInstant(t time.Time) Instant {
	return t.UTC().Truncate(time.Microsecond)
}

// Collection names one of the six ledger collections.
type Collection string

const (
	BooksCollection      Collection = "books"
	CategoriesCollection Collection = "categories"
	MembersCollection    Collection = "members"
	IssuesCollection     Collection = "issues"
	UsersCollection      Collection = "users"
	RequestsCollection   Collection = "requests"
)

// AllCollections returns the collection names in their canonical order.
func AllCollections() []Collection {
	return []Collection{BooksCollection, CategoriesCollection, MembersCollection, IssuesCollection, UsersCollection, RequestsCollection}
}
