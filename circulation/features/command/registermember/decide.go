package registermember

import (
	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const (
	failureReasonInvalidExternalID   = "external member id must look like ENT0001"
	failureReasonDuplicateExternalID = "member id already registered"
)

// Decide appends a Member.
//
// Business Rules:
//
//	GIVEN: member data and optionally an external id
//	WHEN: RegisterMember is received
//	THEN: a Member is appended with the external id, or with the next M### id
//	ERROR: ValidationError if the external id is malformed or already taken
func Decide(ledger core.Ledger, command Command) core.DecisionResult {
	id := command.ExternalID

	switch {
	case id == "":
		id = ledger.NextMemberID()
	case !core.IsExternalMemberID(id):
		return core.ErrorDecision(core.ValidationError, failureReasonInvalidExternalID, id)
	case ledger.MemberIndex(id) >= 0:
		return core.ErrorDecision(core.ValidationError, failureReasonDuplicateExternalID, id)
	}

	l := ledger.Clone()
	l.Members = append(l.Members, core.Member{
		ID:    id,
		Name:  command.Name,
		Email: command.Email,
		Phone: command.Phone,
		Type:  command.Type,
	})

	return core.SuccessDecision(l, id, core.MembersCollection)
}
