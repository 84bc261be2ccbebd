package cancelrequest

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const commandType = "CancelRequest"

// Command represents a member withdrawing a request.
type Command struct {
	RequestID core.RequestIDString `validate:"required,entityid=R"`
	MemberID  core.MemberIDString  `validate:"required,memberid"`
	At        core.Instant
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(requestID core.RequestIDString, memberID core.MemberIDString, at time.Time) Command {
	return Command{
		RequestID: requestID,
		MemberID:  memberID,
		At:        core.ToInstant(at),
	}
}
