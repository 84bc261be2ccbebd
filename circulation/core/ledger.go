package core

import (
	"slices"
	"strings"
	"time"
)

// Ledger holds all six collections as loaded in one critical section.
type Ledger struct {
	Books      []Book
	Categories []Category
	Members    []Member
	Users      []User
	Requests   []Request
	Issues     []Issue
}

// Clone returns a copy whose slices can be mutated without touching l.
func (l Ledger) Clone() Ledger {
	return Ledger{
		Books:      slices.Clone(l.Books),
		Categories: slices.Clone(l.Categories),
		Members:    slices.Clone(l.Members),
		Users:      slices.Clone(l.Users),
		Requests:   slices.Clone(l.Requests),
		Issues:     slices.Clone(l.Issues),
	}
}

// BookIndex returns the position of the book with id, or -1.
func (l Ledger) BookIndex(id BookIDString) int {
	return slices.IndexFunc(l.Books, func(b Book) bool { return b.ID == id })
}

// MemberIndex returns the position of the member with id, or -1.
func (l Ledger) MemberIndex(id MemberIDString) int {
	return slices.IndexFunc(l.Members, func(m Member) bool { return m.ID == id })
}

// UserIndex returns the position of the user with id, or -1.
func (l Ledger) UserIndex(id UserIDString) int {
	return slices.IndexFunc(l.Users, func(u User) bool { return u.ID == id })
}

// UserIndexByEmail matches case-insensitively, or returns -1.
func (l Ledger) UserIndexByEmail(email string) int {
	return slices.IndexFunc(l.Users, func(u User) bool { return strings.EqualFold(u.Email, strings.TrimSpace(email)) })
}

// RequestIndex returns the position of the request with id, or -1.
func (l Ledger) RequestIndex(id RequestIDString) int {
	return slices.IndexFunc(l.Requests, func(r Request) bool { return r.ID == id })
}

// IssueIndex returns the position of the issue with id, or -1.
func (l Ledger) IssueIndex(id IssueIDString) int {
	return slices.IndexFunc(l.Issues, func(i Issue) bool { return i.ID == id })
}

// CategoryIndexByName matches case-insensitively, or returns -1.
func (l Ledger) CategoryIndexByName(name string) int {
	return slices.IndexFunc(l.Categories, func(c Category) bool { return strings.EqualFold(c.Name, strings.TrimSpace(name)) })
}

// ActiveIssuesOfBook counts copies of the book currently out.
func (l Ledger) ActiveIssuesOfBook(bookID BookIDString) int {
	n := 0

	for _, issue := range l.Issues {
		if issue.BookID == bookID && issue.IsActive() {
			n++
		}
	}

	return n
}

// ActiveIssuesOfMember counts the member's current loans.
func (l Ledger) ActiveIssuesOfMember(memberID MemberIDString) int {
	n := 0

	for _, issue := range l.Issues {
		if issue.MemberID == memberID && issue.IsActive() {
			n++
		}
	}

	return n
}

// OutstandingFines sums unpaid fines of returned issues and live estimates of active ones.
func (l Ledger) OutstandingFines(memberID MemberIDString, now time.Time, policy FinePolicy) float64 {
	total := 0.0

	for _, issue := range l.Issues {
		if issue.MemberID != memberID {
			continue
		}

		switch {
		case issue.IsActive():
			total += CalculateFine(issue, now, policy)
		case issue.HasUnpaidFine():
			total += issue.Fine
		}
	}

	return total
}

// MemberHasUser reports whether some User already links to the member.
func (l Ledger) MemberHasUser(memberID MemberIDString) bool {
	return slices.ContainsFunc(l.Users, func(u User) bool { return u.MemberID != "" && u.MemberID == memberID })
}

func (l Ledger) bookIDs() []string {
	ids := make([]string, len(l.Books))
	for i, b := range l.Books {
		ids[i] = b.ID
	}

	return ids
}

func (l Ledger) categoryIDs() []string {
	ids := make([]string, len(l.Categories))
	for i, c := range l.Categories {
		ids[i] = c.ID
	}

	return ids
}

func (l Ledger) memberIDs() []string {
	ids := make([]string, len(l.Members))
	for i, m := range l.Members {
		ids[i] = m.ID
	}

	return ids
}

func (l Ledger) userIDs() []string {
	ids := make([]string, len(l.Users))
	for i, u := range l.Users {
		ids[i] = u.ID
	}

	return ids
}

func (l Ledger) requestIDs() []string {
	ids := make([]string, len(l.Requests))
	for i, r := range l.Requests {
		ids[i] = r.ID
	}

	return ids
}

func (l Ledger) issueIDs() []string {
	ids := make([]string, len(l.Issues))
	for i, is := range l.Issues {
		ids[i] = is.ID
	}

	return ids
}

// NextBookID is NextID over the book collection.
func (l Ledger) NextBookID() BookIDString { return NextID(BookIDPrefix, l.bookIDs()) }

// NextCategoryID is NextID over the category collection.
func (l Ledger) NextCategoryID() string { return NextID(CategoryIDPrefix, l.categoryIDs()) }

// NextMemberID is NextID over the member collection. External ENT ids do not count.
func (l Ledger) NextMemberID() MemberIDString { return NextID(MemberIDPrefix, l.memberIDs()) }

// NextUserID is NextID over the user collection.
func (l Ledger) NextUserID() UserIDString { return NextID(UserIDPrefix, l.userIDs()) }

// NextRequestID is NextID over the request collection.
func (l Ledger) NextRequestID() RequestIDString { return NextID(RequestIDPrefix, l.requestIDs()) }

// NextIssueID is NextID over the issue collection.
func (l Ledger) NextIssueID() IssueIDString { return NextID(IssueIDPrefix, l.issueIDs()) }

// CancelPendingRequests cancels every pending request matched by match at the given instant
// and reports whether any request changed.
func (l *Ledger) CancelPendingRequests(match func(Request) bool, at Instant) bool {
	cancelled := false

	for i := range l.Requests {
		if l.Requests[i].IsPending() && match(l.Requests[i]) {
			processedAt := at
			l.Requests[i].Status = RequestCancelled
			l.Requests[i].ProcessedDate = &processedAt
			cancelled = true
		}
	}

	return cancelled
}
