package addcategory

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const commandType = "AddCategory"

type Command struct {
	Name        string `validate:"required"`
	Description string
	At          core.Instant
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(name, description string, at time.Time) Command {
	return Command{
		Name:        name,
		Description: description,
		At:          core.ToInstant(at),
	}
}
