package acceptreturn

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const commandType = "AcceptReturn"

// Command represents a returned copy arriving at the desk.
type Command struct {
	IssueID core.IssueIDString `validate:"required,entityid=I"`
	At      core.Instant
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(issueID core.IssueIDString, at time.Time) Command {
	return Command{
		IssueID: issueID,
		At:      core.ToInstant(at),
	}
}
