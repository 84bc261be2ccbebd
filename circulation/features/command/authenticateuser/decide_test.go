package authenticateuser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/authenticateuser"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/testutil/fixtures"
)

func plainMatch(hash, plain string) bool { return hash == "h:"+plain }

func givenLedger() core.Ledger {
	return core.Ledger{Users: []core.User{{ID: "U001", Email: "ada@example.org", PasswordHash: "h:secret", Role: core.RoleAdmin}}}
}

func Test_Decide_Success_StampsLastLogin(t *testing.T) {
	result := authenticateuser.Decide(givenLedger(), authenticateuser.BuildCommand("ADA@example.org", "secret", fixtures.Now), plainMatch)

	require.NoError(t, result.HasError())
	assert.Equal(t, "U001", result.EntityID)
	require.NotNil(t, result.Ledger.Users[0].LastLogin)
	assert.Equal(t, fixtures.Now, *result.Ledger.Users[0].LastLogin)
}

func Test_Decide_Error_WrongPasswordOrUnknownEmail(t *testing.T) {
	wrong := authenticateuser.Decide(givenLedger(), authenticateuser.BuildCommand("ada@example.org", "guess", fixtures.Now), plainMatch)
	unknown := authenticateuser.Decide(givenLedger(), authenticateuser.BuildCommand("bob@example.org", "secret", fixtures.Now), plainMatch)

	fixtures.RequireFailure(t, wrong.HasError(), core.ValidationError)
	fixtures.RequireFailure(t, unknown.HasError(), core.NotFound)
}

func Test_CommandHandler_VerifiesBcryptHash(t *testing.T) {
	// arrange
	hasher := shell.BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := hasher.Hash("secret")
	require.NoError(t, err)

	ledger := givenLedger()
	ledger.Users[0].PasswordHash = hash
	store := fixtures.Store(t, ledger)

	handler, err := authenticateuser.NewCommandHandler(store, hasher)
	require.NoError(t, err)

	// act
	result, err := handler.Handle(context.Background(), authenticateuser.BuildCommand("ada@example.org", "secret", fixtures.Now))

	// assert
	require.NoError(t, err)
	assert.Equal(t, "U001", result.EntityID)
	assert.NotNil(t, fixtures.Load(t, store).Users[0].LastLogin)
}
