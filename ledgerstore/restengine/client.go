package restengine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore/internal/instrument"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10

	logMsgLoaded              = "resource loaded"
	logMsgSaved               = "resource saved"
	logMsgCommitted           = "changes committed"
	logMsgConcurrencyConflict = "concurrency conflict detected"
)

// ErrNilBaseURL is returned when the client is built without a server address.
var ErrNilBaseURL = errors.New("base url must not be empty")

// ErrUnexpectedStatus is joined with the status line of any reply the client does not understand.
var ErrUnexpectedStatus = errors.New("unexpected http status")

// LedgerStore talks to a remote ledger over HTTP.
type LedgerStore struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
	obs        ledgerstore.Observability
	recorder   instrument.Recorder
}

// Option defines a functional option for configuring LedgerStore.
type Option func(*LedgerStore) error

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(client *http.Client) Option {
	return func(s *LedgerStore) error {
		if client == nil {
			return errors.New("http client must not be nil")
		}

		s.httpClient = client

		return nil
	}
}

// WithBearerToken sends "Authorization: Bearer <token>" on every request.
func WithBearerToken(token string) Option {
	return func(s *LedgerStore) error {
		s.token = token
		return nil
	}
}

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

// NewLedgerStore creates a client for the shim at baseURL, e.g. "http://localhost:8080".
func NewLedgerStore(baseURL string, options ...Option) (*LedgerStore, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrNilBaseURL
	}

	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	s := &LedgerStore{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, option := range options {
		if err = option(s); err != nil {
			return nil, err
		}
	}

	s.recorder = instrument.NewRecorder(s.obs)

	return s, nil
}

// Load fetches one collection. The version comes from the ETag header.
func (s *LedgerStore) Load(ctx context.Context, resource ledgerstore.Resource) (ledgerstore.Snapshot, error) {
	ctx, span := s.recorder.StartSpan(ctx, ledgerstore.SpanNameLoad, map[string]string{ledgerstore.AttrResource: resource.String()})

	snapshot, err := s.load(ctx, resource)
	if err != nil {
		s.finishWithError(ctx, span, ledgerstore.OperationLoad, ledgerstore.MetricLoadDuration, err)
		return ledgerstore.Snapshot{}, err
	}

	s.recorder.RecordDuration(ctx, ledgerstore.MetricLoadDuration, span.Elapsed(), ledgerstore.OperationLoad, ledgerstore.StatusSuccess)
	s.recorder.FinishSpan(span, ledgerstore.StatusSuccess, nil)
	s.recorder.Operation(ctx, logMsgLoaded, "resource", resource.String(), "version", snapshot.Version)

	return snapshot, nil
}

func (s *LedgerStore) load(ctx context.Context, resource ledgerstore.Resource) (ledgerstore.Snapshot, error) {
	if _, err := ledgerstore.ParseResource(string(resource)); err != nil {
		return ledgerstore.Snapshot{}, err
	}

	resp, err := s.do(ctx, http.MethodGet, s.resourceURL(resource), nil)
	if err != nil {
		return ledgerstore.Snapshot{}, errors.Join(ledgerstore.ErrLoadingResourceFailed, err)
	}
	defer s.closeBody(ctx, resp)

	if resp.StatusCode != http.StatusOK {
		return ledgerstore.Snapshot{}, errors.Join(ledgerstore.ErrLoadingResourceFailed, statusError(resp))
	}

	var body ItemsBody
	if err = jsonAPI.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ledgerstore.Snapshot{}, errors.Join(ledgerstore.ErrLoadingResourceFailed, err)
	}

	version, err := ParseETag(resp.Header.Get("ETag"))
	if err != nil {
		return ledgerstore.Snapshot{}, errors.Join(ledgerstore.ErrLoadingResourceFailed, err)
	}

	return ledgerstore.BuildSnapshot(resource, body.Items, version)
}

// Save replaces one collection without a version check.
func (s *LedgerStore) Save(ctx context.Context, resource ledgerstore.Resource, itemsJSON []byte) error {
	ctx, span := s.recorder.StartSpan(ctx, ledgerstore.SpanNameSave, map[string]string{ledgerstore.AttrResource: resource.String()})

	err := s.save(ctx, resource, itemsJSON)
	if err != nil {
		s.finishWithError(ctx, span, ledgerstore.OperationSave, ledgerstore.MetricSaveDuration, err)
		return err
	}

	s.recorder.RecordDuration(ctx, ledgerstore.MetricSaveDuration, span.Elapsed(), ledgerstore.OperationSave, ledgerstore.StatusSuccess)
	s.recorder.FinishSpan(span, ledgerstore.StatusSuccess, nil)
	s.recorder.Operation(ctx, logMsgSaved, "resource", resource.String())

	return nil
}

func (s *LedgerStore) save(ctx context.Context, resource ledgerstore.Resource, itemsJSON []byte) error {
	if _, err := ledgerstore.ParseResource(string(resource)); err != nil {
		return err
	}

	if err := ledgerstore.ValidateItemsJSON(itemsJSON); err != nil {
		return err
	}

	payload, err := jsonAPI.Marshal(ItemsBody{Items: itemsJSON})
	if err != nil {
		return errors.Join(ledgerstore.ErrSavingResourceFailed, err)
	}

	resp, err := s.do(ctx, http.MethodPut, s.resourceURL(resource), payload)
	if err != nil {
		return errors.Join(ledgerstore.ErrSavingResourceFailed, err)
	}
	defer s.closeBody(ctx, resp)

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return errors.Join(ledgerstore.ErrSavingResourceFailed, statusError(resp))
	}

	return nil
}

// Commit posts all changes in one request. A 409 reply means nothing was written.
func (s *LedgerStore) Commit(ctx context.Context, meta ledgerstore.CommitMeta, changes ...ledgerstore.Change) error {
	ctx, span := s.recorder.StartSpan(ctx, ledgerstore.SpanNameCommit, map[string]string{
		ledgerstore.AttrCommitID:  meta.CommitID.String(),
		ledgerstore.AttrOperation: meta.Operation,
	})

	err := s.commit(ctx, meta, changes)

	switch {
	case errors.Is(err, ledgerstore.ErrConcurrencyConflict):
		s.recorder.RecordConflict(ctx, ledgerstore.OperationCommit)
		s.recorder.RecordDuration(ctx, ledgerstore.MetricCommitDuration, span.Elapsed(), ledgerstore.OperationCommit, ledgerstore.StatusConcurrencyConflict)
		s.recorder.FinishSpan(span, ledgerstore.StatusConcurrencyConflict, nil)
		s.recorder.Operation(ctx, logMsgConcurrencyConflict, "operation", meta.Operation)

		return err

	case err != nil:
		s.finishWithError(ctx, span, ledgerstore.OperationCommit, ledgerstore.MetricCommitDuration, err)
		return err
	}

	s.recorder.RecordDuration(ctx, ledgerstore.MetricCommitDuration, span.Elapsed(), ledgerstore.OperationCommit, ledgerstore.StatusSuccess)
	s.recorder.FinishSpan(span, ledgerstore.StatusSuccess, nil)
	s.recorder.Operation(ctx, logMsgCommitted, "operation", meta.Operation, "change_count", len(changes))

	return nil
}

func (s *LedgerStore) commit(ctx context.Context, meta ledgerstore.CommitMeta, changes []ledgerstore.Change) error {
	if err := ledgerstore.ValidateChanges(changes); err != nil {
		return err
	}

	body := CommitBody{
		CommitID:    meta.CommitID.String(),
		Operation:   meta.Operation,
		CommittedAt: meta.CommittedAt,
		Changes:     make([]CommitChange, 0, len(changes)),
	}

	for _, change := range changes {
		body.Changes = append(body.Changes, CommitChange{
			Resource:        change.Resource.String(),
			ExpectedVersion: change.ExpectedVersion,
			Items:           change.ItemsJSON,
			Guard:           change.IsGuard(),
		})
	}

	payload, err := jsonAPI.Marshal(body)
	if err != nil {
		return errors.Join(ledgerstore.ErrCommitFailed, err)
	}

	resp, err := s.do(ctx, http.MethodPost, s.baseURL.JoinPath("api", "commit").String(), payload)
	if err != nil {
		return errors.Join(ledgerstore.ErrCommitFailed, err)
	}
	defer s.closeBody(ctx, resp)

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusConflict, http.StatusPreconditionFailed:
		return ledgerstore.ErrConcurrencyConflict
	default:
		return errors.Join(ledgerstore.ErrCommitFailed, statusError(resp))
	}
}

func (s *LedgerStore) do(ctx context.Context, method, target string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	if ledgerstore.GetConsistencyLevel(ctx) == ledgerstore.EventualConsistency {
		req.Header.Set("X-Consistency", ledgerstore.EventualConsistency.String())
	}

	s.recorder.Debug(ctx, "http request", "method", method, "url", target)

	return s.httpClient.Do(req)
}

func (s *LedgerStore) resourceURL(resource ledgerstore.Resource) string {
	return s.baseURL.JoinPath("api", resource.String()).String()
}

func (s *LedgerStore) closeBody(ctx context.Context, resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)

	if err := resp.Body.Close(); err != nil {
		s.recorder.Warn(ctx, "failed to close response body", err)
	}
}

func (s *LedgerStore) finishWithError(ctx context.Context, span instrument.Span, operation, metric string, err error) {
	errorType := instrument.ClassifyError(err)

	s.recorder.RecordDatabaseError(ctx, operation, errorType)
	s.recorder.RecordDuration(ctx, metric, span.Elapsed(), operation, ledgerstore.StatusError)
	s.recorder.FinishSpan(span, ledgerstore.StatusError, map[string]string{ledgerstore.AttrErrorType: errorType})
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body ErrorBody
	if jsonAPI.Unmarshal(raw, &body) == nil && body.Error != "" {
		return fmt.Errorf("%w: %s: %s", ErrUnexpectedStatus, resp.Status, body.Error)
	}

	return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
}

// FormatETag renders a version as a strong entity tag.
func FormatETag(version ledgerstore.VersionUint) string {
	return strconv.Quote(strconv.FormatUint(version, 10))
}

// ParseETag reads a version back from FormatETag output. Weak tags are accepted.
func ParseETag(etag string) (ledgerstore.VersionUint, error) {
	etag = strings.TrimPrefix(strings.TrimSpace(etag), "W/")
	if etag == "" {
		return 0, errors.New("missing etag")
	}

	unquoted, err := strconv.Unquote(etag)
	if err != nil {
		unquoted = etag
	}

	version, err := strconv.ParseUint(unquoted, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid etag %q: %w", etag, err)
	}

	return version, nil
}
