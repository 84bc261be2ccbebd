package cancelrequest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/cancelrequest"
	"github.com/AntonStoeckl/library-circulation-go/testutil/fixtures"
)

func givenLedger() core.Ledger {
	return core.Ledger{
		Requests: []core.Request{fixtures.PendingRequest("R001", "B001", "M001", fixtures.Now)},
	}
}

func Test_Decide_Success_CancelsOwnPendingRequest(t *testing.T) {
	result := cancelrequest.Decide(givenLedger(), cancelrequest.BuildCommand("R001", "M001", fixtures.Now))

	require.NoError(t, result.HasError())
	assert.Equal(t, core.RequestCancelled, result.Ledger.Requests[0].Status)
	assert.Empty(t, result.Ledger.Requests[0].ProcessedBy)
}

func Test_Decide_Error_OtherMembersRequest(t *testing.T) {
	result := cancelrequest.Decide(givenLedger(), cancelrequest.BuildCommand("R001", "M002", fixtures.Now))

	fixtures.RequireFailure(t, result.HasError(), core.ValidationError)
}

func Test_Decide_AlreadyProcessed_WhenApproved(t *testing.T) {
	ledger := givenLedger()
	ledger.Requests[0].Status = core.RequestApproved

	result := cancelrequest.Decide(ledger, cancelrequest.BuildCommand("R001", "M001", fixtures.Now))

	assert.True(t, result.IsIdempotent())
	fixtures.RequireFailure(t, result.HasError(), core.AlreadyProcessed)
}

func Test_Decide_Error_UnknownRequest(t *testing.T) {
	result := cancelrequest.Decide(core.Ledger{}, cancelrequest.BuildCommand("R009", "M001", fixtures.Now))

	fixtures.RequireFailure(t, result.HasError(), core.NotFound)
}
