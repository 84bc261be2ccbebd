package issuebookdirect

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const commandType = "IssueBookDirect"

// Channel tells where a direct checkout came from.
type Channel string

const (
	ChannelDashboard Channel = "dashboard"
	ChannelQR        Channel = "qr"
)

// Command represents a direct checkout.
// DueDate is optional; without it the DirectIssuePolicy applies.
type Command struct {
	BookID   core.BookIDString   `validate:"required,entityid=B"`
	MemberID core.MemberIDString `validate:"required,memberid"`
	DueDate  *time.Time
	Channel  Channel `validate:"required,oneof=dashboard qr"`
	IssuedBy core.UserIDString
	At       core.Instant
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	bookID core.BookIDString,
	memberID core.MemberIDString,
	dueDate *time.Time,
	channel Channel,
	issuedBy core.UserIDString,
	at time.Time,
) Command {
	if dueDate != nil {
		d := core.ToInstant(*dueDate)
		dueDate = &d
	}

	return Command{
		BookID:   bookID,
		MemberID: memberID,
		DueDate:  dueDate,
		Channel:  channel,
		IssuedBy: issuedBy,
		At:       core.ToInstant(at),
	}
}
