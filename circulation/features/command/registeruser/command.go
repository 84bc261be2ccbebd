package registeruser

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const commandType = "RegisterUser"

// Command carries a new account. Password is plain text and never stored.
type Command struct {
	Email    string              `validate:"required,email"`
	Password string              `validate:"required,min=6,max=72"`
	Role     core.Role           `validate:"required,role"`
	MemberID core.MemberIDString `validate:"omitempty,memberid"`
	At       core.Instant
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(email, password string, role core.Role, memberID core.MemberIDString, at time.Time) Command {
	return Command{
		Email:    email,
		Password: password,
		Role:     role,
		MemberID: memberID,
		At:       core.ToInstant(at),
	}
}
