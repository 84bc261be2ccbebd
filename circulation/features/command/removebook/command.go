package removebook

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const commandType = "RemoveBook"

// Command represents the intent to delete a book from the catalog.
type Command struct {
	BookID core.BookIDString `validate:"required,entityid=B"`
	At     core.Instant
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID core.BookIDString, at time.Time) Command {
	return Command{
		BookID: bookID,
		At:     core.ToInstant(at),
	}
}
