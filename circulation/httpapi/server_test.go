package httpapi_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AntonStoeckl/library-circulation-go/circulation/app"
	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/httpapi"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
	"github.com/AntonStoeckl/library-circulation-go/testutil/fixtures"
)

const testSecret = "test-secret"

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router http.Handler
	store  shell.LedgerStore
}

func newTestServer(t *testing.T, store shell.LedgerStore, settings app.Settings) testServer {
	t.Helper()

	settings.Passwords = shell.BcryptHasher{Cost: bcrypt.MinCost}

	bundle, err := app.NewHandlerBundle(store, settings)
	require.NoError(t, err)

	server, err := httpapi.NewServer(store, bundle,
		httpapi.WithJWTSecret(testSecret),
		httpapi.WithClock(func() time.Time { return fixtures.Now }),
		httpapi.WithRateLimit(1000, 1000),
	)
	require.NoError(t, err)

	return testServer{router: server.Router(), store: store}
}

func token(t *testing.T, userID string, role core.Role, memberID string) string {
	t.Helper()

	signed, err := httpapi.SignToken([]byte(testSecret), userID, role, memberID, fixtures.Now, time.Hour)
	require.NoError(t, err)

	return signed
}

func (s testServer) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = jsonAPI.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, jsonAPI.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())

	return out
}

type idBody struct {
	ID string `json:"id"`
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// failingStore fails every read and write.
type failingStore struct{}

var errDiskOnFire = errors.New("disk on fire")

func (failingStore) Load(context.Context, ledgerstore.Resource) (ledgerstore.Snapshot, error) {
	return ledgerstore.Snapshot{}, errDiskOnFire
}

func (failingStore) Save(context.Context, ledgerstore.Resource, []byte) error {
	return errDiskOnFire
}

func (failingStore) Commit(context.Context, ledgerstore.CommitMeta, ...ledgerstore.Change) error {
	return errDiskOnFire
}
