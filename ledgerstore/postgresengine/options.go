package postgresengine

import (
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
)

// Option defines a functional option for configuring LedgerStore.
type Option func(*LedgerStore) error

// WithTableName sets the name of the resources table.
func WithTableName(tableName string) Option {
	return func(s *LedgerStore) error {
		if tableName == "" {
			return ledgerstore.ErrEmptyTableName
		}

		s.tableName = tableName

		return nil
	}
}

// WithJournalTableName sets the name of the commit journal table.
func WithJournalTableName(tableName string) Option {
	return func(s *LedgerStore) error {
		if tableName == "" {
			return ledgerstore.ErrEmptyTableName
		}

		s.journalTableName = tableName

		return nil
	}
}

// WithoutJournal disables writing the commit journal.
func WithoutJournal() Option {
	return func(s *LedgerStore) error {
		s.journalTableName = ""
		return nil
	}
}

// WithLogger sets the logger for the LedgerStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: loads, commits, concurrency conflicts (production-safe)
// Warn level: non-critical issues like journal or cleanup failures
// Error level: failures that cause the operation to fail.
func WithLogger(logger ledgerstore.Logger) Option {
	return func(s *LedgerStore) error {
		s.obs.Logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger. It takes precedence over the plain logger.
func WithContextualLogger(logger ledgerstore.ContextualLogger) Option {
	return func(s *LedgerStore) error {
		s.obs.ContextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector ledgerstore.MetricsCollector) Option {
	return func(s *LedgerStore) error {
		s.obs.Metrics = collector
		return nil
	}
}

// WithTracing sets the tracing collector.
func WithTracing(collector ledgerstore.TracingCollector) Option {
	return func(s *LedgerStore) error {
		s.obs.Tracing = collector
		return nil
	}
}
