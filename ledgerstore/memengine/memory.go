package memengine

import (
	"context"
	"slices"
	"sync"

	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore/internal/instrument"
)

const (
	logMsgLoaded              = "resource loaded"
	logMsgSaved               = "resource saved"
	logMsgCommitted           = "changes committed"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logAttrResource           = "resource"
	logAttrVersion            = "version"
	logAttrChangeCount        = "change_count"
	logAttrOperation          = "operation"
)

type collection struct {
	items   []byte
	version ledgerstore.VersionUint
}

// LedgerStore is an in-memory ledger store. The zero value is not usable; use NewLedgerStore.
type LedgerStore struct {
	mu          *sync.RWMutex
	collections map[ledgerstore.Resource]collection
	journal     *[]ledgerstore.CommitMeta
	obs         ledgerstore.Observability
	recorder    instrument.Recorder
}

// Option defines a functional option for configuring LedgerStore.
type Option func(*LedgerStore) error

// WithLogger sets the logger.
func WithLogger(logger ledgerstore.Logger) Option {
	return func(s *LedgerStore) error {
		s.obs.Logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger.
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

// WithSeed pre-populates a collection at version 1.
func WithSeed(resource ledgerstore.Resource, itemsJSON []byte) Option {
	return func(s *LedgerStore) error {
		if _, err := ledgerstore.ParseResource(string(resource)); err != nil {
			return err
		}

		if err := ledgerstore.ValidateItemsJSON(itemsJSON); err != nil {
			return err
		}

		s.collections[resource] = collection{items: slices.Clone(itemsJSON), version: 1}

		return nil
	}
}

// NewLedgerStore creates an empty in-memory LedgerStore with optional configuration.
func NewLedgerStore(options ...Option) (LedgerStore, error) {
	s := LedgerStore{
		mu:          &sync.RWMutex{},
		collections: make(map[ledgerstore.Resource]collection),
		journal:     &[]ledgerstore.CommitMeta{},
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return LedgerStore{}, err
		}
	}

	s.recorder = instrument.NewRecorder(s.obs)

	return s, nil
}

// Load returns a copy of the collection and its version. Unknown collections load as an empty array at version 0.
func (s LedgerStore) Load(ctx context.Context, resource ledgerstore.Resource) (ledgerstore.Snapshot, error) {
	ctx, span := s.recorder.StartSpan(ctx, ledgerstore.SpanNameLoad, map[string]string{ledgerstore.AttrResource: resource.String()})

	if err := ctx.Err(); err != nil {
		s.recorder.FinishSpan(span, ledgerstore.StatusError, map[string]string{ledgerstore.AttrErrorType: instrument.ClassifyError(err)})
		return ledgerstore.Snapshot{}, err
	}

	if _, err := ledgerstore.ParseResource(string(resource)); err != nil {
		s.recorder.FinishSpan(span, ledgerstore.StatusError, nil)
		return ledgerstore.Snapshot{}, err
	}

	s.mu.RLock()
	c, ok := s.collections[resource]
	s.mu.RUnlock()

	snapshot := ledgerstore.Snapshot{Resource: resource, ItemsJSON: ledgerstore.EmptyItemsJSON}
	if ok {
		snapshot.ItemsJSON = slices.Clone(c.items)
		snapshot.Version = c.version
	}

	s.recorder.RecordDuration(ctx, ledgerstore.MetricLoadDuration, span.Elapsed(), ledgerstore.OperationLoad, ledgerstore.StatusSuccess)
	s.recorder.RecordValue(ctx, ledgerstore.MetricItemsBytes, float64(len(snapshot.ItemsJSON)), ledgerstore.OperationLoad, resource)
	s.recorder.FinishSpan(span, ledgerstore.StatusSuccess, nil)
	s.recorder.Operation(ctx, logMsgLoaded, logAttrResource, resource.String(), logAttrVersion, snapshot.Version)

	return snapshot, nil
}

// Save replaces the collection unconditionally and bumps its version.
func (s LedgerStore) Save(ctx context.Context, resource ledgerstore.Resource, itemsJSON []byte) error {
	ctx, span := s.recorder.StartSpan(ctx, ledgerstore.SpanNameSave, map[string]string{ledgerstore.AttrResource: resource.String()})

	if _, err := ledgerstore.ParseResource(string(resource)); err != nil {
		s.recorder.FinishSpan(span, ledgerstore.StatusError, nil)
		return err
	}

	if err := ledgerstore.ValidateItemsJSON(itemsJSON); err != nil {
		s.recorder.FinishSpan(span, ledgerstore.StatusError, nil)
		return err
	}

	s.mu.Lock()
	c := s.collections[resource]
	s.collections[resource] = collection{items: slices.Clone(itemsJSON), version: c.version + 1}
	s.mu.Unlock()

	s.recorder.RecordDuration(ctx, ledgerstore.MetricSaveDuration, span.Elapsed(), ledgerstore.OperationSave, ledgerstore.StatusSuccess)
	s.recorder.FinishSpan(span, ledgerstore.StatusSuccess, nil)
	s.recorder.Operation(ctx, logMsgSaved, logAttrResource, resource.String(), logAttrVersion, c.version+1)

	return nil
}

// Commit applies all changes if every expected version matches, otherwise none of them.
func (s LedgerStore) Commit(ctx context.Context, meta ledgerstore.CommitMeta, changes ...ledgerstore.Change) error {
	ctx, span := s.recorder.StartSpan(ctx, ledgerstore.SpanNameCommit, map[string]string{
		ledgerstore.AttrCommitID:  meta.CommitID.String(),
		ledgerstore.AttrOperation: meta.Operation,
	})

	if err := ledgerstore.ValidateChanges(changes); err != nil {
		s.recorder.FinishSpan(span, ledgerstore.StatusError, nil)
		return err
	}

	s.mu.Lock()

	for _, change := range changes {
		if s.collections[change.Resource].version != change.ExpectedVersion {
			s.mu.Unlock()

			s.recorder.RecordConflict(ctx, ledgerstore.OperationCommit)
			s.recorder.RecordDuration(ctx, ledgerstore.MetricCommitDuration, span.Elapsed(), ledgerstore.OperationCommit, ledgerstore.StatusConcurrencyConflict)
			s.recorder.FinishSpan(span, ledgerstore.StatusConcurrencyConflict, nil)
			s.recorder.Operation(ctx, logMsgConcurrencyConflict, logAttrResource, change.Resource.String(), logAttrVersion, change.ExpectedVersion)

			return ledgerstore.ErrConcurrencyConflict
		}
	}

	for _, change := range changes {
		if change.IsGuard() {
			continue
		}

		s.collections[change.Resource] = collection{
			items:   slices.Clone(change.ItemsJSON),
			version: change.ExpectedVersion + 1,
		}
	}

	*s.journal = append(*s.journal, meta)

	s.mu.Unlock()

	s.recorder.RecordDuration(ctx, ledgerstore.MetricCommitDuration, span.Elapsed(), ledgerstore.OperationCommit, ledgerstore.StatusSuccess)
	s.recorder.FinishSpan(span, ledgerstore.StatusSuccess, nil)
	s.recorder.Operation(ctx, logMsgCommitted, logAttrOperation, meta.Operation, logAttrChangeCount, ledgerstore.CountWrites(changes))

	return nil
}

// Journal returns the commits applied so far, oldest first.
func (s LedgerStore) Journal() []ledgerstore.CommitMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(*s.journal)
}
