package removemember

import (
	"fmt"
	"slices"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const failureReasonMemberNotFound = "member not found"

// Decide removes a member.
//
// Business Rules:
//
//	GIVEN: an existing member without active issues
//	WHEN: RemoveMember is received
//	THEN: the member is deleted, linked users lose their memberId,
//	      and the member's pending requests are cancelled at command.At
//	ERROR: NotFound if the member does not exist
//	ERROR: InUse while the member holds active issues
func Decide(ledger core.Ledger, command Command) core.DecisionResult {
	idx := ledger.MemberIndex(command.MemberID)
	if idx < 0 {
		return core.ErrorDecision(core.NotFound, failureReasonMemberNotFound, command.MemberID)
	}

	if active := ledger.ActiveIssuesOfMember(command.MemberID); active > 0 {
		reason := fmt.Sprintf("member still holds %d books", active)
		return core.ErrorDecision(core.InUse, reason, command.MemberID)
	}

	l := ledger.Clone()
	l.Members = slices.Delete(l.Members, idx, idx+1)
	changed := []core.Collection{core.MembersCollection}

	unlinked := false
	for i := range l.Users {
		if l.Users[i].MemberID == command.MemberID {
			l.Users[i].MemberID = ""
			unlinked = true
		}
	}

	if unlinked {
		changed = append(changed, core.UsersCollection)
	}

	if l.CancelPendingRequests(func(r core.Request) bool { return r.MemberID == command.MemberID }, command.At) {
		changed = append(changed, core.RequestsCollection)
	}

	return core.SuccessDecision(l, command.MemberID, changed...)
}
