package httpapi

import (
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-circulation-go/circulation/app"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
)

const (
	defaultTokenTTL       = 12 * time.Hour
	defaultRateLimitRPS   = 20.0
	defaultRateLimitBurst = 40
	corsMaxAge            = 12 * time.Hour
)

var (
	// ErrMissingJWTSecret is returned when the server is built without a signing secret.
	ErrMissingJWTSecret = errors.New("jwt secret must not be empty")

	// ErrNilHandlerBundle is returned when the server is built without handlers.
	ErrNilHandlerBundle = errors.New("handler bundle must not be nil")
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Server wires the ledger store and the handler bundle into a gin engine.
type Server struct {
	store       shell.LedgerStore
	handlers    *app.HandlerBundle
	secret      []byte
	tokenTTL    time.Duration
	now         func() time.Time
	logger      shell.ContextualLogger
	corsOrigins []string
	limiter     *RateLimiter
}

// Option defines a functional option for configuring Server.
type Option func(*Server) error

// WithJWTSecret sets the HS256 signing secret. It is required.
func WithJWTSecret(secret string) Option {
	return func(s *Server) error {
		if secret == "" {
			return ErrMissingJWTSecret
		}

		s.secret = []byte(secret)

		return nil
	}
}

// WithTokenTTL sets how long login tokens stay valid.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) error {
		if ttl <= 0 {
			return errors.New("token ttl must be positive")
		}

		s.tokenTTL = ttl

		return nil
	}
}

// WithClock replaces time.Now for command timestamps and token validation.
func WithClock(now func() time.Time) Option {
	return func(s *Server) error {
		s.now = now
		return nil
	}
}

// WithContextualLogger sets the access and error logger.
func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// WithCORSOrigins sets the allowed origins. "*" allows every origin.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) error {
		s.corsOrigins = origins
		return nil
	}
}

// WithRateLimit sets the per-client token bucket.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) error {
		if rps <= 0 || burst <= 0 {
			return errors.New("rate limit and burst must be positive")
		}

		s.limiter = NewRateLimiter(rps, burst)

		return nil
	}
}

// NewServer creates a Server. WithJWTSecret is mandatory.
func NewServer(store shell.LedgerStore, handlers *app.HandlerBundle, options ...Option) (*Server, error) {
	if store == nil {
		return nil, shell.ErrNilLedgerStore
	}

	if handlers == nil {
		return nil, ErrNilHandlerBundle
	}

	s := &Server{
		store:       store,
		handlers:    handlers,
		tokenTTL:    defaultTokenTTL,
		now:         time.Now,
		corsOrigins: []string{"*"},
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	if len(s.secret) == 0 {
		return nil, ErrMissingJWTSecret
	}

	if s.limiter == nil {
		s.limiter = NewRateLimiter(defaultRateLimitRPS, defaultRateLimitBurst)
	}

	return s, nil
}

// Router builds the gin engine with all middleware and routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.accessLog(), s.cors(), s.limiter.Middleware())

	r.POST("/api/auth/login", s.login)

	store := r.Group("/api", s.requireAuth())
	{
		store.GET("/:resource", requireRole(staffRoles...), s.loadResource)
		store.PUT("/:resource", requireRole(adminRoles...), s.saveResource)
		store.POST("/commit", requireRole(adminRoles...), s.commit)
	}

	v1 := r.Group("/v1", s.requireAuth())
	s.registerOperations(v1)

	return r
}

func (s *Server) cors() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "If-Match", "X-Consistency", headerRequestID},
		ExposeHeaders: []string{"ETag", headerRequestID},
		MaxAge:        corsMaxAge,
	}

	if len(s.corsOrigins) == 1 && s.corsOrigins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.corsOrigins
		cfg.AllowCredentials = true
	}

	return cors.New(cfg)
}
