package registeruser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/registeruser"
	"github.com/AntonStoeckl/library-circulation-go/testutil/fixtures"
)

func Test_Decide_Success_LinksMember(t *testing.T) {
	ledger := core.Ledger{Members: []core.Member{fixtures.Member("M001")}}
	command := registeruser.BuildCommand("Ada@Example.org ", "secret1", core.RoleStudent, "M001", fixtures.Now)

	result := registeruser.Decide(ledger, command, "hash")

	require.NoError(t, result.HasError())
	assert.Equal(t, "U001", result.EntityID)
	user := result.Ledger.Users[0]
	assert.Equal(t, "ada@example.org", user.Email)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.Equal(t, "M001", user.MemberID)
	assert.Equal(t, fixtures.Now, user.CreatedDate)
}

func Test_Decide_Error_DuplicateEmail(t *testing.T) {
	ledger := core.Ledger{Users: []core.User{{ID: "U001", Email: "ada@example.org", Role: core.RoleAdmin}}}

	result := registeruser.Decide(ledger, registeruser.BuildCommand("ADA@example.org", "secret1", core.RoleStudent, "", fixtures.Now), "hash")

	fixtures.RequireFailure(t, result.HasError(), core.ValidationError)
}

func Test_Decide_Error_MemberMissingOrLinked(t *testing.T) {
	ledger := core.Ledger{
		Members: []core.Member{fixtures.Member("M001")},
		Users:   []core.User{{ID: "U001", Email: "first@example.org", Role: core.RoleStudent, MemberID: "M001"}},
	}

	linked := registeruser.Decide(ledger, registeruser.BuildCommand("second@example.org", "secret1", core.RoleStudent, "M001", fixtures.Now), "hash")
	missing := registeruser.Decide(ledger, registeruser.BuildCommand("third@example.org", "secret1", core.RoleStudent, "M404", fixtures.Now), "hash")

	fixtures.RequireFailure(t, linked.HasError(), core.ValidationError)
	fixtures.RequireFailure(t, missing.HasError(), core.NotFound)
}
