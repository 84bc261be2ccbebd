package authenticateuser

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const commandType = "AuthenticateUser"

type Command struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	At       core.Instant
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(email, password string, at time.Time) Command {
	return Command{
		Email:    email,
		Password: password,
		At:       core.ToInstant(at),
	}
}
