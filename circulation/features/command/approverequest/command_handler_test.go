package approverequest_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/approverequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/testutil/fixtures"
)

func Test_CommandHandler_ConcurrentApprovalsForLastCopy_OneWins(t *testing.T) {
	// arrange
	ledger := core.Ledger{
		Books:   []core.Book{fixtures.Book("B001", 1, 1)},
		Members: []core.Member{fixtures.Member("M001"), fixtures.Member("M002")},
		Requests: []core.Request{
			fixtures.PendingRequest("R001", "B001", "M001", fixtures.Now),
			fixtures.PendingRequest("R002", "B001", "M002", fixtures.Now),
		},
	}
	store := fixtures.Store(t, ledger)

	// no locker: only the optimistic commit protects the counter
	handler, err := approverequest.NewCommandHandler(store)
	require.NoError(t, err)

	// act
	errs := make([]error, 2)
	wg := sync.WaitGroup{}

	for i, requestID := range []string{"R001", "R002"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = handler.Handle(context.Background(), approverequest.BuildCommand(requestID, "U001", fixtures.Now))
		}()
	}

	wg.Wait()

	// assert
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}

		fixtures.RequireFailure(t, err, core.Unavailable)
	}

	assert.Equal(t, 1, succeeded)

	after := fixtures.Load(t, store)
	assert.Equal(t, 0, after.Books[0].AvailableCopies)
	assert.Len(t, after.Issues, 1)
	fixtures.RequireConsistent(t, after)
}

func Test_CommandHandler_RejectsInvalidCommandBeforeLoading(t *testing.T) {
	store := fixtures.Store(t, core.Ledger{})
	handler, err := approverequest.NewCommandHandler(store, shell.WithLocker(shell.NewMutexLocker()))
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), approverequest.BuildCommand("", "", fixtures.Now))

	fixtures.RequireFailure(t, err, core.ValidationError)
	assert.Empty(t, store.Journal())
}
