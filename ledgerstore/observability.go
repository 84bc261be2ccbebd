package ledgerstore

import (
	"context"
	"time"
)

// Logger interface for SQL logging, operational messages, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger interface for context-aware logging, so backends can correlate log records with traces.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// MetricsCollector interface for collecting store performance and operational metrics.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// ContextualMetricsCollector extends MetricsCollector with context-aware methods.
// Engines use these methods when the collector implements them and fall back to MetricsCollector otherwise.
type ContextualMetricsCollector interface {
	MetricsCollector
	RecordDurationContext(ctx context.Context, metric string, duration time.Duration, labels map[string]string)
	IncrementCounterContext(ctx context.Context, metric string, labels map[string]string)
	RecordValueContext(ctx context.Context, metric string, value float64, labels map[string]string)
}

// SpanContext represents an active tracing span that can be updated with attributes.
type SpanContext interface {
	SetStatus(status string)
	AddAttribute(key, value string)
}

// TracingCollector interface for collecting tracing information from store operations.
type TracingCollector interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext)
	FinishSpan(spanCtx SpanContext, status string, attrs map[string]string)
}

// Observability bundles the optional collectors an engine reports to. Nil members are skipped.
type Observability struct {
	Logger           Logger
	ContextualLogger ContextualLogger
	Metrics          MetricsCollector
	Tracing          TracingCollector
}

// Metric and span names shared by all engines.
const (
	MetricLoadDuration         = "ledgerstore_load_duration_seconds"
	MetricSaveDuration         = "ledgerstore_save_duration_seconds"
	MetricCommitDuration       = "ledgerstore_commit_duration_seconds"
	MetricItemsBytes           = "ledgerstore_items_bytes"
	MetricConcurrencyConflicts = "ledgerstore_concurrency_conflicts_total"
	MetricDatabaseErrors       = "ledgerstore_database_errors_total"

	SpanNameLoad   = "ledgerstore.load"
	SpanNameSave   = "ledgerstore.save"
	SpanNameCommit = "ledgerstore.commit"

	OperationLoad   = "load"
	OperationSave   = "save"
	OperationCommit = "commit"

	StatusSuccess             = "success"
	StatusError               = "error"
	StatusConcurrencyConflict = "concurrency_conflict"

	AttrOperation   = "operation"
	AttrStatus      = "status"
	AttrResource    = "resource"
	AttrResources   = "resources"
	AttrVersion     = "version"
	AttrErrorType   = "error_type"
	AttrCommitID    = "commit_id"
	AttrDurationMS  = "duration_ms"
	AttrConsistency = "consistency"
)
