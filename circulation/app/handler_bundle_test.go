package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AntonStoeckl/library-circulation-go/circulation/app"
	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/acceptreturn"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/approverequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/authenticateuser"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/issuebookdirect"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/registeruser"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/submitrequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/query/fineestimates"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/query/ledgeraudit"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/testutil/fixtures"
	"github.com/AntonStoeckl/library-circulation-go/testutil/testdoubles"
)

func Test_NewHandlerBundle_RejectsNilStore(t *testing.T) {
	_, err := app.NewHandlerBundle(nil, app.Settings{})

	assert.ErrorIs(t, err, shell.ErrNilLedgerStore)
}

func Test_HandlerBundle_RunsRequestLifecycleWithObservability(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.Store(t, core.Ledger{
		Books:   []core.Book{fixtures.Book("B001", 1, 1)},
		Members: []core.Member{fixtures.Member("M001")},
	})
	metrics := testdoubles.NewMetricsCollectorSpy(true)
	tracing := testdoubles.NewTracingCollectorSpy(true)

	bundle, err := app.NewHandlerBundle(store, app.Settings{
		Policy:           core.CappedFine{RatePerDay: 1, MaxPerBook: 5},
		MetricsCollector: metrics,
		TracingCollector: tracing,
	})
	require.NoError(t, err)

	// act
	request, err := bundle.SubmitRequest.Handle(ctx, submitrequest.BuildCommand("M001", "B001", fixtures.Now))
	require.NoError(t, err)

	issue, err := bundle.ApproveRequest.Handle(ctx, approverequest.BuildCommand(request.EntityID, "U001", fixtures.Now))
	require.NoError(t, err)

	_, err = bundle.AcceptReturn.Handle(ctx, acceptreturn.BuildCommand(issue.EntityID, fixtures.Now.AddDate(0, 0, 30)))
	require.NoError(t, err)

	estimates, err := bundle.FineEstimates.Handle(ctx, fineestimates.BuildQuery("M001", fixtures.Now.AddDate(0, 0, 30)))
	require.NoError(t, err)

	audit, err := bundle.LedgerAudit.Handle(ctx, ledgeraudit.BuildQuery())
	require.NoError(t, err)

	// assert
	assert.InDelta(t, 5.0, estimates.Total, 0.0001)
	assert.True(t, audit.Consistent)
	assert.Equal(t, 3, metrics.CountCounterRecordsForMetric(shell.CommandHandlerCallsMetric))
	assert.Equal(t, 2, metrics.CountCounterRecordsForMetric(shell.QueryHandlerCallsMetric))
	assert.True(t, tracing.HasFinishedSpan(shell.SpanNameCommandHandle, shell.StatusSuccess))
}

func Test_HandlerBundle_RegistersAndAuthenticatesUsers(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.Store(t, core.Ledger{Members: []core.Member{fixtures.Member("M001")}})

	bundle, err := app.NewHandlerBundle(store, app.Settings{Passwords: shell.BcryptHasher{Cost: bcrypt.MinCost}})
	require.NoError(t, err)

	created, err := bundle.RegisterUser.Handle(ctx, registeruser.BuildCommand("Student@Example.com", "secret1", core.RoleStudent, "M001", fixtures.Now))
	require.NoError(t, err)

	// act
	login, loginErr := bundle.AuthenticateUser.Handle(ctx, authenticateuser.BuildCommand("student@example.com", "secret1", fixtures.Now))
	_, wrongErr := bundle.AuthenticateUser.Handle(ctx, authenticateuser.BuildCommand("student@example.com", "nope-nope", fixtures.Now))

	// assert
	require.NoError(t, loginErr)
	assert.Equal(t, created.EntityID, login.EntityID)
	fixtures.RequireFailure(t, wrongErr, core.ValidationError)
}

func Test_HandlerBundle_ZeroSettingsUseDefaultCheckoutRules(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.Store(t, core.Ledger{
		Books:   []core.Book{fixtures.Book("B001", 2, 2)},
		Members: []core.Member{fixtures.Member("M001")},
	})

	bundle, err := app.NewHandlerBundle(store, app.Settings{})
	require.NoError(t, err)

	// act
	result, err := bundle.IssueBookDirect.Handle(ctx,
		issuebookdirect.BuildCommand("B001", "M001", nil, issuebookdirect.ChannelQR, "U002", fixtures.Now))

	// assert
	require.NoError(t, err)
	assert.NotEmpty(t, result.EntityID)
	assert.Len(t, fixtures.Load(t, store).Issues, 1)
}
