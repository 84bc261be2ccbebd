package observable_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell/observable"
	"github.com/AntonStoeckl/library-circulation-go/testutil/testdoubles"
)

func Test_QueryWrapper_Handle_Success(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy(true)
	tracing := testdoubles.NewTracingCollectorSpy(true)
	logger := testdoubles.NewContextualLoggerSpy(true)

	wrapper, err := observable.NewQueryWrapper[testQuery, []string](
		queryHandlerStub{result: []string{"I001"}},
		observable.WithQueryMetrics[testQuery, []string](metrics),
		observable.WithQueryTracing[testQuery, []string](tracing),
		observable.WithQueryContextualLogging[testQuery, []string](logger),
	)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(context.Background(), testQuery{})

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{"I001"}, result)
	assert.True(t, metrics.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).
		WithLabel(shell.LogAttrQueryType, "TestQuery").
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.True(t, tracing.HasFinishedSpan(shell.SpanNameQueryHandle, shell.StatusSuccess))
	assert.True(t, logger.HasMessage("info", shell.LogMsgQueryCompleted))
}

func Test_QueryWrapper_Handle_Error(t *testing.T) {
	testCases := []struct {
		err    error
		status string
	}{
		{errBoom, shell.StatusError},
		{fmt.Errorf("load: %w", context.Canceled), shell.StatusCanceled},
		{context.DeadlineExceeded, shell.StatusTimeout},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			metrics := testdoubles.NewMetricsCollectorSpy(true)
			logger := testdoubles.NewContextualLoggerSpy(true)

			wrapper, err := observable.NewQueryWrapper[testQuery, []string](
				queryHandlerStub{err: tc.err},
				observable.WithQueryMetrics[testQuery, []string](metrics),
				observable.WithQueryContextualLogging[testQuery, []string](logger),
			)
			require.NoError(t, err)

			_, err = wrapper.Handle(context.Background(), testQuery{})

			assert.ErrorIs(t, err, tc.err)
			assert.True(t, metrics.HasDurationRecordForMetric(shell.QueryHandlerDurationMetric).WithStatus(tc.status).Assert())
			assert.True(t, logger.HasMessage("error", shell.LogMsgQueryFailed))
		})
	}
}
