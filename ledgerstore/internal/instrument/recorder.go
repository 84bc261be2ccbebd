// Package instrument holds the observability plumbing shared by the ledgerstore engines.
package instrument

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
)

const logMsgOperation = "ledgerstore operation: "

// Recorder reports to whatever collectors are configured and silently skips the rest.
type Recorder struct {
	obs ledgerstore.Observability
}

// NewRecorder creates a Recorder for the given collectors.
func NewRecorder(obs ledgerstore.Observability) Recorder {
	return Recorder{obs: obs}
}

// Span wraps an optional tracing span together with its start time.
type Span struct {
	ctx   ledgerstore.SpanContext
	start time.Time
}

// StartSpan starts a span when tracing is configured and returns the (possibly enriched) context.
func (r Recorder) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, Span) {
	span := Span{start: time.Now()}

	if r.obs.Tracing != nil {
		var spanCtx ledgerstore.SpanContext
		ctx, spanCtx = r.obs.Tracing.StartSpan(ctx, name, attrs)
		span.ctx = spanCtx
	}

	return ctx, span
}

// Elapsed returns the time since the span was started.
func (s Span) Elapsed() time.Duration {
	return time.Since(s.start)
}

// FinishSpan finishes the span with a status and attributes, including the elapsed time.
func (r Recorder) FinishSpan(span Span, status string, attrs map[string]string) {
	if r.obs.Tracing == nil || span.ctx == nil {
		return
	}

	if attrs == nil {
		attrs = make(map[string]string, 1)
	}
	attrs[ledgerstore.AttrDurationMS] = strconv.FormatFloat(ToMilliseconds(span.Elapsed()), 'f', 3, 64)

	span.ctx.SetStatus(status)
	r.obs.Tracing.FinishSpan(span.ctx, status, attrs)
}

// RecordDuration records an operation duration.
func (r Recorder) RecordDuration(ctx context.Context, metric string, d time.Duration, operation, status string) {
	if r.obs.Metrics == nil {
		return
	}

	labels := map[string]string{ledgerstore.AttrOperation: operation, ledgerstore.AttrStatus: status}

	if cm, ok := r.obs.Metrics.(ledgerstore.ContextualMetricsCollector); ok {
		cm.RecordDurationContext(ctx, metric, d, labels)
		return
	}

	r.obs.Metrics.RecordDuration(metric, d, labels)
}

// RecordValue records a value metric for one resource.
func (r Recorder) RecordValue(ctx context.Context, metric string, value float64, operation string, resource ledgerstore.Resource) {
	if r.obs.Metrics == nil {
		return
	}

	labels := map[string]string{ledgerstore.AttrOperation: operation, ledgerstore.AttrResource: resource.String()}

	if cm, ok := r.obs.Metrics.(ledgerstore.ContextualMetricsCollector); ok {
		cm.RecordValueContext(ctx, metric, value, labels)
		return
	}

	r.obs.Metrics.RecordValue(metric, value, labels)
}

// RecordConflict counts a concurrency conflict.
func (r Recorder) RecordConflict(ctx context.Context, operation string) {
	r.increment(ctx, ledgerstore.MetricConcurrencyConflicts, map[string]string{
		ledgerstore.AttrOperation: operation,
		"conflict_type":           "concurrency",
	})
}

// RecordDatabaseError counts a failed database interaction.
func (r Recorder) RecordDatabaseError(ctx context.Context, operation, errorType string) {
	r.increment(ctx, ledgerstore.MetricDatabaseErrors, map[string]string{
		ledgerstore.AttrOperation: operation,
		ledgerstore.AttrStatus:    ledgerstore.StatusError,
		ledgerstore.AttrErrorType: errorType,
	})
}

func (r Recorder) increment(ctx context.Context, metric string, labels map[string]string) {
	if r.obs.Metrics == nil {
		return
	}

	if cm, ok := r.obs.Metrics.(ledgerstore.ContextualMetricsCollector); ok {
		cm.IncrementCounterContext(ctx, metric, labels)
		return
	}

	r.obs.Metrics.IncrementCounter(metric, labels)
}

// Debug logs at debug level, preferring the contextual logger.
func (r Recorder) Debug(ctx context.Context, msg string, args ...any) {
	if r.obs.ContextualLogger != nil {
		r.obs.ContextualLogger.DebugContext(ctx, msg, args...)
		return
	}

	if r.obs.Logger != nil {
		r.obs.Logger.Debug(msg, args...)
	}
}

// Operation logs an operational message at info level.
func (r Recorder) Operation(ctx context.Context, action string, args ...any) {
	if r.obs.ContextualLogger != nil {
		r.obs.ContextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
		return
	}

	if r.obs.Logger != nil {
		r.obs.Logger.Info(logMsgOperation+action, args...)
	}
}

// Warn logs a non-critical problem.
func (r Recorder) Warn(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{"error", err.Error()}, args...)

	if r.obs.ContextualLogger != nil {
		r.obs.ContextualLogger.WarnContext(ctx, msg, allArgs...)
		return
	}

	if r.obs.Logger != nil {
		r.obs.Logger.Warn(msg, allArgs...)
	}
}

// Error logs a failure.
func (r Recorder) Error(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{"error", err.Error()}, args...)

	if r.obs.ContextualLogger != nil {
		r.obs.ContextualLogger.ErrorContext(ctx, msg, allArgs...)
		return
	}

	if r.obs.Logger != nil {
		r.obs.Logger.Error(msg, allArgs...)
	}
}

// ClassifyError maps an error to the error_type label used in metrics and spans.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ledgerstore.ErrConcurrencyConflict):
		return "concurrency_conflict"
	case errors.Is(err, context.Canceled):
		return "context_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "context_deadline_exceeded"
	case errors.Is(err, ledgerstore.ErrBuildingQueryFailed):
		return "build_query"
	case errors.Is(err, ledgerstore.ErrInvalidItemsJSON):
		return "invalid_items_json"
	default:
		return "database"
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func ToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
