package registeruser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/registeruser"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/testutil/fixtures"
)

func Test_CommandHandler_StoresBcryptHashOnly(t *testing.T) {
	// arrange
	store := fixtures.Store(t, core.Ledger{})
	hasher := shell.BcryptHasher{Cost: bcrypt.MinCost}
	handler, err := registeruser.NewCommandHandler(store, hasher)
	require.NoError(t, err)

	// act
	result, err := handler.Handle(context.Background(), registeruser.BuildCommand("ada@example.org", "correct horse", core.RoleLibrarian, "", fixtures.Now))

	// assert
	require.NoError(t, err)
	assert.Equal(t, "U001", result.EntityID)

	users := fixtures.Load(t, store).Users
	require.Len(t, users, 1)
	assert.NotEqual(t, "correct horse", users[0].PasswordHash)
	assert.True(t, hasher.Matches(users[0].PasswordHash, "correct horse"))
}

func Test_CommandHandler_RejectsWeakInput(t *testing.T) {
	store := fixtures.Store(t, core.Ledger{})
	handler, err := registeruser.NewCommandHandler(store, shell.BcryptHasher{Cost: bcrypt.MinCost})
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), registeruser.BuildCommand("not-an-email", "123", "janitor", "", fixtures.Now))

	fixtures.RequireFailure(t, err, core.ValidationError)
}

func Test_NewCommandHandler_RequiresHasher(t *testing.T) {
	_, err := registeruser.NewCommandHandler(fixtures.Store(t, core.Ledger{}), nil)

	assert.ErrorIs(t, err, registeruser.ErrNilHasher)
}
