package shell_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
)

func Test_MutexLocker_BlocksUntilReleased(t *testing.T) {
	locker := shell.NewMutexLocker()

	unlock, err := locker.Lock(context.Background(), shell.LedgerLockKey)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, shell.LedgerLockKey)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(context.Background()))
	require.NoError(t, unlock(context.Background()))

	again, err := locker.Lock(context.Background(), shell.LedgerLockKey)
	require.NoError(t, err)
	assert.NoError(t, again(context.Background()))
}

func Test_BcryptHasher(t *testing.T) {
	hasher := shell.BcryptHasher{Cost: 4}

	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, hasher.Matches(hash, "s3cret"))
	assert.False(t, hasher.Matches(hash, "wrong"))

	_, err = hasher.Hash(strings.Repeat("x", 80))
	assert.ErrorIs(t, err, shell.ErrPasswordTooLong)
}

type payload struct {
	BookID   string `validate:"required,entityid=B"`
	MemberID string `validate:"required,memberid"`
	Email    string `validate:"omitempty,email"`
	Role     string `validate:"omitempty,role"`
}

func Test_ValidateStruct(t *testing.T) {
	assert.NoError(t, shell.ValidateStruct(payload{BookID: "B001", MemberID: "ENT0001"}))
	assert.NoError(t, shell.ValidateStruct(payload{BookID: "B012", MemberID: "M003", Email: "a@b.org", Role: "student"}))

	err := shell.ValidateStruct(payload{BookID: "X1", MemberID: "", Role: "janitor"})

	kind, ok := core.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, core.ValidationError, kind)
	assert.Contains(t, err.Error(), "BookID must look like B001")
	assert.Contains(t, err.Error(), "MemberID is required")
}

func Test_ClassifyCommandOutcome(t *testing.T) {
	assert.Equal(t, shell.StatusSuccess, shell.ClassifyCommandOutcome(shell.HandlerResult{}, nil))
	assert.Equal(t, shell.StatusIdempotent, shell.ClassifyCommandOutcome(shell.HandlerResult{Idempotent: true}, core.NewFailure(core.AlreadyProcessed, "x", "")))
	assert.Equal(t, shell.StatusRejected, shell.ClassifyCommandOutcome(shell.HandlerResult{}, core.NewFailure(core.NotFound, "x", "")))
	assert.Equal(t, shell.StatusCanceled, shell.ClassifyCommandOutcome(shell.HandlerResult{}, context.Canceled))
	assert.Equal(t, shell.StatusError, shell.ClassifyCommandOutcome(shell.HandlerResult{}, shell.ErrStorage))
}
