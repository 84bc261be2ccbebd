package approverequest

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const commandType = "ApproveRequest"

// Command represents the intent of staff to approve a pending request.
type Command struct {
	RequestID   core.RequestIDString `validate:"required,entityid=R"`
	ProcessedBy core.UserIDString    `validate:"required"`
	At          core.Instant
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(requestID core.RequestIDString, processedBy core.UserIDString, at time.Time) Command {
	return Command{
		RequestID:   requestID,
		ProcessedBy: processedBy,
		At:          core.ToInstant(at),
	}
}
