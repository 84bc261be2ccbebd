package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

// Ledger drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverREST     = "rest"
)

// PostgreSQL client libraries.
const (
	PostgresDriverPGX  = "pgx"
	PostgresDriverSQL  = "sql"
	PostgresDriverSQLX = "sqlx"
)

const (
	defaultHTTPAddr       = ":8080"
	defaultSQLitePath     = "data/circulation.db"
	defaultRateLimitRPS   = 20.0
	defaultRateLimitBurst = 40
	defaultCORSOrigins    = "*"
)

var (
	// ErrUnknownLedgerDriver is returned for a LEDGER_DRIVER outside memory, postgres, sqlite and rest.
	ErrUnknownLedgerDriver = errors.New("unknown ledger driver")

	// ErrUnknownPostgresDriver is returned for a POSTGRES_DRIVER outside pgx, sql and sqlx.
	ErrUnknownPostgresDriver = errors.New("unknown postgres driver")

	// ErrInvalidNumber is returned when a numeric variable does not parse.
	ErrInvalidNumber = errors.New("invalid numeric setting")

	// ErrMissingSetting is returned when the selected driver needs a variable that is empty.
	ErrMissingSetting = errors.New("missing setting")
)

// Config is the parsed environment.
type Config struct {
	LedgerDriver       string
	PostgresDSN        string
	PostgresReplicaDSN string
	PostgresDriver     string
	SQLitePath         string
	LedgerAPIURL       string
	LedgerAPIToken     string
	RedisAddr          string

	HTTPAddr       string
	JWTSecret      string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int

	FinePolicyName string
	FineRatePerDay float64
	FineMaxPerBook float64
	BorrowLimit    int
	FineThreshold  float64

	OTLPEndpoint string
}

// Load reads .env if present and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	return FromEnv()
}

// FromEnv parses the current environment without touching .env files.
func FromEnv() (Config, error) {
	p := parser{}

	cfg := Config{
		LedgerDriver:       stringVar("LEDGER_DRIVER", DriverMemory),
		PostgresDSN:        stringVar("POSTGRES_DSN", ""),
		PostgresReplicaDSN: stringVar("POSTGRES_REPLICA_DSN", ""),
		PostgresDriver:     stringVar("POSTGRES_DRIVER", PostgresDriverPGX),
		SQLitePath:         stringVar("SQLITE_PATH", defaultSQLitePath),
		LedgerAPIURL:       stringVar("LEDGER_API_URL", ""),
		LedgerAPIToken:     stringVar("LEDGER_API_TOKEN", ""),
		RedisAddr:          stringVar("REDIS_ADDR", ""),

		HTTPAddr:       stringVar("HTTP_ADDR", defaultHTTPAddr),
		JWTSecret:      stringVar("JWT_SECRET", ""),
		CORSOrigins:    splitList(stringVar("CORS_ORIGINS", defaultCORSOrigins)),
		RateLimitRPS:   p.float("RATE_LIMIT_RPS", defaultRateLimitRPS),
		RateLimitBurst: p.int("RATE_LIMIT_BURST", defaultRateLimitBurst),

		FinePolicyName: stringVar("FINE_POLICY", core.FinePolicyUncapped),
		FineRatePerDay: p.float("FINE_RATE_PER_DAY", core.DefaultRatePerDay),
		FineMaxPerBook: p.float("FINE_MAX_PER_BOOK", core.DefaultMaxPerBook),
		BorrowLimit:    p.int("BORROW_LIMIT", core.DefaultBorrowLimit),
		FineThreshold:  p.float("FINE_THRESHOLD", core.DefaultFineThreshold),

		OTLPEndpoint: stringVar("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if p.err != nil {
		return Config{}, p.err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the driver selection and the settings each driver needs.
func (c Config) Validate() error {
	switch c.LedgerDriver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: POSTGRES_DSN", ErrMissingSetting)
		}

		switch c.PostgresDriver {
		case PostgresDriverPGX, PostgresDriverSQL, PostgresDriverSQLX:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownPostgresDriver, c.PostgresDriver)
		}
	case DriverREST:
		if c.LedgerAPIURL == "" {
			return fmt.Errorf("%w: LEDGER_API_URL", ErrMissingSetting)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLedgerDriver, c.LedgerDriver)
	}

	if _, err := c.FinePolicy(); err != nil {
		return err
	}

	return nil
}

// FinePolicy builds the configured fine policy.
func (c Config) FinePolicy() (core.FinePolicy, error) {
	return core.ParseFinePolicy(c.FinePolicyName, c.FineRatePerDay, c.FineMaxPerBook)
}

// CheckoutRules builds the self-service checkout limits.
func (c Config) CheckoutRules() core.CheckoutRules {
	return core.CheckoutRules{BorrowLimit: c.BorrowLimit, FineThreshold: c.FineThreshold}
}

func stringVar(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}

	return fallback
}

func splitList(v string) []string {
	var out []string

	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

// parser keeps the first numeric parse error.
type parser struct {
	err error
}

func (p *parser) float(key string, fallback float64) float64 {
	raw := stringVar(key, "")
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, raw)
		return fallback
	}

	return v
}

func (p *parser) int(key string, fallback int) int {
	raw := stringVar(key, "")
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw)
		return fallback
	}

	return v
}

func (p *parser) fail(key, raw string) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s=%q", ErrInvalidNumber, key, raw)
	}
}
