package removemember_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/removemember"
	"github.com/AntonStoeckl/library-circulation-go/testutil/fixtures"
)

func Test_Decide_Success_UnlinksUsersAndCancelsRequests(t *testing.T) {
	// arrange
	ledger := core.Ledger{
		Books:    []core.Book{fixtures.Book("B001", 1, 1)},
		Members:  []core.Member{fixtures.Member("M001")},
		Users:    []core.User{{ID: "U001", Email: "m1@example.org", Role: core.RoleStudent, MemberID: "M001"}},
		Requests: []core.Request{fixtures.PendingRequest("R001", "B001", "M001", fixtures.Now)},
		Issues:   []core.Issue{fixtures.ReturnedIssue("I001", "B001", "M001", fixtures.Now, fixtures.Now, 0)},
	}

	// act
	result := removemember.Decide(ledger, removemember.BuildCommand("M001", fixtures.Now))

	// assert
	require.NoError(t, result.HasError())
	assert.ElementsMatch(t,
		[]core.Collection{core.MembersCollection, core.UsersCollection, core.RequestsCollection},
		result.Changed,
	)
	assert.Empty(t, result.Ledger.Members)
	assert.Empty(t, result.Ledger.Users[0].MemberID)
	assert.Equal(t, core.RequestCancelled, result.Ledger.Requests[0].Status)
}

func Test_Decide_Error_InUseWhileHoldingBooks(t *testing.T) {
	ledger := core.Ledger{
		Members: []core.Member{fixtures.Member("M001")},
		Issues:  []core.Issue{fixtures.ActiveIssue("I001", "B001", "M001", fixtures.Now, fixtures.Now.AddDate(0, 0, 7))},
	}

	result := removemember.Decide(ledger, removemember.BuildCommand("M001", fixtures.Now))

	fixtures.RequireFailure(t, result.HasError(), core.InUse)
}

func Test_Decide_Error_UnknownMember(t *testing.T) {
	result := removemember.Decide(core.Ledger{}, removemember.BuildCommand("M001", fixtures.Now))

	fixtures.RequireFailure(t, result.HasError(), core.NotFound)
}
