package authenticateuser

import (
	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const (
	failureReasonUserNotFound       = "no account for this email"
	failureReasonInvalidCredentials = "invalid credentials"
)

// MatchFunc reports whether plain hashes to hash.
type MatchFunc func(hash, plain string) bool

// Decide checks the password and sets lastLogin = command.At.
// ERROR: NotFound for an unknown email, ValidationError for a wrong password.
func Decide(ledger core.Ledger, command Command, matches MatchFunc) core.DecisionResult {
	idx := ledger.UserIndexByEmail(command.Email)
	if idx < 0 {
		return core.ErrorDecision(core.NotFound, failureReasonUserNotFound, command.Email)
	}

	if !matches(ledger.Users[idx].PasswordHash, command.Password) {
		return core.ErrorDecision(core.ValidationError, failureReasonInvalidCredentials, ledger.Users[idx].ID)
	}

	l := ledger.Clone()
	loginAt := command.At
	l.Users[idx].LastLogin = &loginAt

	return core.SuccessDecision(l, l.Users[idx].ID, core.UsersCollection)
}
