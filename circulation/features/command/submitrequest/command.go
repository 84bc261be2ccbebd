package submitrequest

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const commandType = "SubmitRequest"

// Command represents the intent of a member to borrow a book.
type Command struct {
	MemberID core.MemberIDString `validate:"required,memberid"`
	BookID   core.BookIDString   `validate:"required,entityid=B"`
	At       core.Instant
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(memberID core.MemberIDString, bookID core.BookIDString, at time.Time) Command {
	return Command{
		MemberID: memberID,
		BookID:   bookID,
		At:       core.ToInstant(at),
	}
}
