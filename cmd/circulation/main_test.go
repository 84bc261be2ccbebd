package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/httpapi"
)

var settings = []string{
	"LEDGER_DRIVER", "POSTGRES_DSN", "POSTGRES_REPLICA_DSN", "POSTGRES_DRIVER", "SQLITE_PATH",
	"LEDGER_API_URL", "LEDGER_API_TOKEN", "REDIS_ADDR", "HTTP_ADDR", "JWT_SECRET", "CORS_ORIGINS",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "FINE_POLICY", "FINE_RATE_PER_DAY", "FINE_MAX_PER_BOOK",
	"BORROW_LIMIT", "FINE_THRESHOLD", "OTEL_EXPORTER_OTLP_ENDPOINT",
}

// sqliteEnv points every command at one file so state survives between invocations.
func sqliteEnv(t *testing.T) {
	t.Helper()

	for _, key := range settings {
		t.Setenv(key, "")
	}

	t.Setenv("LEDGER_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "ledger.db"))
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	root := newRootCommand()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)

	err := root.Execute()

	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()

	out, err := run(t, "", args...)
	require.NoError(t, err, "circulation %s", strings.Join(args, " "))

	return out
}

func Test_CLI_RequestApproveReturnAndAudit(t *testing.T) {
	sqliteEnv(t)

	assert.Equal(t, "book added: B001\n", mustRun(t, "book", "add", "--title", "The Go Programming Language", "--author", "Donovan", "--copies", "2"))
	assert.Equal(t, "member registered: M001\n", mustRun(t, "member", "add", "--name", "Ada", "--email", "ada@example.com"))
	assert.Equal(t, "request submitted: R001\n", mustRun(t, "request", "submit", "--member", "M001", "--book", "B001"))
	assert.Equal(t, "request approved, issue: I001\n", mustRun(t, "request", "approve", "R001", "--by", "U001"))
	assert.Equal(t, "return accepted: I001\n", mustRun(t, "return", "I001"))

	var audit struct {
		Consistent bool `json:"consistent"`
		Books      []struct {
			BookID          string `json:"bookId"`
			AvailableCopies int    `json:"availableCopies"`
		} `json:"books"`
	}
	require.NoError(t, jsoniter.UnmarshalFromString(mustRun(t, "audit"), &audit))

	assert.True(t, audit.Consistent)
	require.Len(t, audit.Books, 1)
	assert.Equal(t, 2, audit.Books[0].AvailableCopies)

	var fines struct {
		Policy string  `json:"policy"`
		Total  float64 `json:"total"`
	}
	require.NoError(t, jsoniter.UnmarshalFromString(mustRun(t, "fines", "--json"), &fines))

	assert.Equal(t, core.FinePolicyUncapped, fines.Policy)
	assert.Zero(t, fines.Total)
}

func Test_CLI_DirectIssueShowsUpAsActive(t *testing.T) {
	sqliteEnv(t)

	mustRun(t, "book", "add", "--title", "Refactoring", "--author", "Fowler")
	mustRun(t, "member", "add", "--id", "ENT0042", "--name", "Grace", "--email", "grace@example.com")

	assert.Equal(t, "book issued: I001\n", mustRun(t, "issue", "--book", "B001", "--member", "ENT0042", "--due", "2099-01-31"))

	out := mustRun(t, "overdue")
	assert.Contains(t, out, "ISSUE")
	assert.NotContains(t, out, "I001")

	_, err := run(t, "", "book", "remove", "B001")
	kind, ok := core.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, core.InUse, kind)
}

func Test_CLI_FailuresSurfaceTheirKind(t *testing.T) {
	sqliteEnv(t)

	_, err := run(t, "", "request", "submit", "--member", "M001", "--book", "B001")
	kind, ok := core.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, core.NotFound, kind)

	_, err = run(t, "", "issue", "--book", "B001", "--member", "M001", "--due", "31.01.2099")
	assert.ErrorContains(t, err, "YYYY-MM-DD")

	_, err = run(t, "", "migrate", "status")
	assert.ErrorIs(t, err, ErrStatusNeedsPostgres)
}

func Test_CLI_UserCreateReadsPasswordFromStdin(t *testing.T) {
	sqliteEnv(t)

	out, err := run(t, "correct horse\n", "user", "create", "--email", "lib@example.com", "--role", "librarian")
	require.NoError(t, err)
	assert.Equal(t, "user created: U001\n", out)

	_, err = run(t, "\n", "user", "create", "--email", "other@example.com", "--role", "librarian")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = run(t, "correct horse\n", "user", "create", "--email", "LIB@example.com", "--role", "librarian")
	kind, ok := core.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, core.ValidationError, kind)
}

func Test_CLI_TokenIsAcceptedByTheAPI(t *testing.T) {
	sqliteEnv(t)

	_, err := run(t, "", "token", "--user", "U001")
	assert.ErrorIs(t, err, httpapi.ErrMissingJWTSecret)

	t.Setenv("JWT_SECRET", "cli-test-secret")

	out := mustRun(t, "token", "--user", "U007", "--role", "librarian")

	claims, err := httpapi.ParseToken([]byte("cli-test-secret"), strings.TrimSpace(out), time.Now)
	require.NoError(t, err)
	assert.Equal(t, "U007", claims.Subject)
	assert.Equal(t, core.RoleLibrarian, claims.Role)
}

func Test_CLI_MigrateSQLite(t *testing.T) {
	sqliteEnv(t)

	assert.Equal(t, "ledger schema is up to date (sqlite)\n", mustRun(t, "migrate"))
}
