package registermember

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const commandType = "RegisterMember"

// Command carries the data of a new member. ExternalID is optional.
type Command struct {
	ExternalID core.MemberIDString
	Name       string `validate:"required"`
	Email      string `validate:"required,email"`
	Phone      string
	Type       string `validate:"required"`
	At         core.Instant
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command from a Member template. A non-empty template ID is used as external id.
func BuildCommand(member core.Member, at time.Time) Command {
	return Command{
		ExternalID: member.ID,
		Name:       member.Name,
		Email:      member.Email,
		Phone:      member.Phone,
		Type:       member.Type,
		At:         core.ToInstant(at),
	}
}
