package removemember

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const commandType = "RemoveMember"

// Command represents the intent to delete a member.
type Command struct {
	MemberID core.MemberIDString `validate:"required,memberid"`
	At       core.Instant
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(memberID core.MemberIDString, at time.Time) Command {
	return Command{
		MemberID: memberID,
		At:       core.ToInstant(at),
	}
}
