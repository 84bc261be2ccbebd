package registeruser

import (
	"strings"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const (
	failureReasonDuplicateEmail = "email already registered"
	failureReasonMemberNotFound = "member not found"
	failureReasonMemberLinked   = "member already has an account"
)

// Decide appends a User holding passwordHash.
//
// Business Rules:
//
//	GIVEN: an unused email and, optionally, a member without an account
//	WHEN: RegisterUser is received
//	THEN: a User U### is appended with createdDate = command.At
//	ERROR: ValidationError if the email is taken or the member is already linked
//	ERROR: NotFound if the given member does not exist
func Decide(ledger core.Ledger, command Command, passwordHash string) core.DecisionResult {
	email := strings.ToLower(strings.TrimSpace(command.Email))

	if idx := ledger.UserIndexByEmail(email); idx >= 0 {
		return core.ErrorDecision(core.ValidationError, failureReasonDuplicateEmail, ledger.Users[idx].ID)
	}

	if command.MemberID != "" {
		if ledger.MemberIndex(command.MemberID) < 0 {
			return core.ErrorDecision(core.NotFound, failureReasonMemberNotFound, command.MemberID)
		}

		if ledger.MemberHasUser(command.MemberID) {
			return core.ErrorDecision(core.ValidationError, failureReasonMemberLinked, command.MemberID)
		}
	}

	l := ledger.Clone()
	user := core.User{
		ID:           l.NextUserID(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         command.Role,
		MemberID:     command.MemberID,
		CreatedDate:  command.At,
	}
	l.Users = append(l.Users, user)

	return core.SuccessDecision(l, user.ID, core.UsersCollection)
}
