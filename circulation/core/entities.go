package core

import (
	"time"
)

// RequestStatus is the lifecycle state of a Request. Everything except pending is terminal.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

// IssueStatus is the lifecycle state of an Issue. Returned is terminal.
type IssueStatus string

const (
	IssueActive   IssueStatus = "active"
	IssueReturned IssueStatus = "returned"
)

// Role of a User account.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLibrarian Role = "librarian"
	RoleStudent   Role = "student"
)

// IsStaff reports whether the role may process requests and issue books.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleLibrarian
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleLibrarian || r == RoleStudent
}

// Book is a catalog entry with a copy counter.
type Book struct {
	ID              BookIDString `json:"id"`
	Title           string       `json:"title"`
	Author          string       `json:"author"`
	Category        string       `json:"category"`
	TotalCopies     int          `json:"totalCopies"`
	AvailableCopies int          `json:"availableCopies"`
	CoverImage      string       `json:"coverImage,omitempty"`
	ISBN            string       `json:"isbn,omitempty"`
	Publisher       string       `json:"publisher,omitempty"`
	PublicationYear int          `json:"publicationYear,omitempty"`
}

// Category groups books in the catalog.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Member is a borrower identity. It may exist without a User.
type Member struct {
	ID    MemberIDString `json:"id"`
	Name  string         `json:"name"`
	Email string         `json:"email"`
	Phone string         `json:"phone"`
	Type  string         `json:"type"`
}

// User is a login account, optionally linked to one Member.
type User struct {
	ID           UserIDString   `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"passwordHash"`
	Role         Role           `json:"role"`
	MemberID     MemberIDString `json:"memberId,omitempty"`
	CreatedDate  time.Time      `json:"createdDate"`
	LastLogin    *time.Time     `json:"lastLogin,omitempty"`
}

// Request is a member's ask to borrow a book.
type Request struct {
	ID            RequestIDString `json:"id"`
	BookID        BookIDString    `json:"bookId"`
	MemberID      MemberIDString  `json:"memberId"`
	RequestDate   time.Time       `json:"requestDate"`
	Status        RequestStatus   `json:"status"`
	ProcessedBy   string          `json:"processedBy,omitempty"`
	ProcessedDate *time.Time      `json:"processedDate,omitempty"`
}

// IsPending reports whether the request can still be processed.
func (r Request) IsPending() bool {
	return r.Status == RequestPending
}

// Issue is one loan of a book copy to a member.
type Issue struct {
	ID          IssueIDString  `json:"id"`
	BookID      BookIDString   `json:"bookId"`
	MemberID    MemberIDString `json:"memberId"`
	IssueDate   time.Time      `json:"issueDate"`
	DueDate     time.Time      `json:"dueDate"`
	ReturnDate  *time.Time     `json:"returnDate,omitempty"`
	Status      IssueStatus    `json:"status"`
	Fine        float64        `json:"fine"`
	DaysOverdue int            `json:"daysOverdue"`
	FinePaid    bool           `json:"finePaid"`
	IssuedBy    string         `json:"issuedBy,omitempty"`
}

// IsActive reports whether the copy is still out.
func (i Issue) IsActive() bool {
	return i.Status != IssueReturned
}

// HasUnpaidFine reports whether a returned issue carries a fine that was not settled.
func (i Issue) HasUnpaidFine() bool {
	return i.Status == IssueReturned && i.Fine > 0 && !i.FinePaid
}
