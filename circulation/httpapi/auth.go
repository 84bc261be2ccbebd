package httpapi

import (
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/authenticateuser"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
)

const ctxKeyClaims = "claims"

var (
	staffRoles = []core.Role{core.RoleAdmin, core.RoleLibrarian}
	adminRoles = []core.Role{core.RoleAdmin}
)

// ErrInvalidToken is returned for tokens that do not verify.
var ErrInvalidToken = errors.New("invalid token")

// Claims are carried in every bearer token. Subject is the user id.
type Claims struct {
	Role     core.Role           `json:"role"`
	MemberID core.MemberIDString `json:"memberId,omitempty"`
	jwt.RegisteredClaims
}

// SignToken issues an HS256 token for a user.
func SignToken(secret []byte, userID core.UserIDString, role core.Role, memberID core.MemberIDString, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		Role:     role,
		MemberID: memberID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "library-circulation",
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(secret []byte, token string, now func() time.Time) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{},
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
		if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
			abortWithError(c, http.StatusUnauthorized, "missing bearer token", "")
			return
		}

		claims, err := ParseToken(s.secret, strings.TrimSpace(token), s.now)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "invalid token", "")
			return
		}

		c.Set(ctxKeyClaims, claims)
		c.Next()
	}
}

func requireRole(roles ...core.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, claimsOf(c).Role) {
			abortWithError(c, http.StatusForbidden, "insufficient role", "")
			return
		}

		c.Next()
	}
}

func claimsOf(c *gin.Context) *Claims {
	if v, ok := c.Get(ctxKeyClaims); ok {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}

	return &Claims{}
}

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string              `json:"token"`
	UserID    core.UserIDString   `json:"userId"`
	Role      core.Role           `json:"role"`
	MemberID  core.MemberIDString `json:"memberId,omitempty"`
	ExpiresAt time.Time           `json:"expiresAt"`
}

// login answers 401 for unknown emails and wrong passwords alike.
func (s *Server) login(c *gin.Context) {
	var body loginBody
	if !s.bind(c, &body) {
		return
	}

	ctx := c.Request.Context()
	now := s.now()

	result, err := s.handlers.AuthenticateUser.Handle(ctx, authenticateuser.BuildCommand(body.Email, body.Password, now))
	if kind, ok := core.KindOf(err); ok && (kind == core.NotFound || kind == core.ValidationError) {
		abortWithError(c, http.StatusUnauthorized, "invalid email or password", "")
		return
	}

	if err != nil {
		s.fail(c, err)
		return
	}

	ledger, _, err := shell.LoadLedger(ctx, s.store)
	if err != nil {
		s.fail(c, err)
		return
	}

	idx := ledger.UserIndex(result.EntityID)
	if idx < 0 {
		s.fail(c, core.NewFailure(core.NotFound, "user vanished after login", result.EntityID))
		return
	}

	user := ledger.Users[idx]

	token, err := SignToken(s.secret, user.ID, user.Role, user.MemberID, now, s.tokenTTL)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		UserID:    user.ID,
		Role:      user.Role,
		MemberID:  user.MemberID,
		ExpiresAt: now.Add(s.tokenTTL).UTC(),
	})
}

// bind decodes the JSON body and checks its validate tags. It answers 400 itself and reports false on failure.
func (s *Server) bind(c *gin.Context, v any) bool {
	if err := jsonAPI.NewDecoder(c.Request.Body).Decode(v); err != nil {
		abortWithError(c, http.StatusBadRequest, "malformed json body", string(core.ValidationError))
		return false
	}

	if err := shell.ValidateStruct(v); err != nil {
		s.fail(c, err)
		return false
	}

	return true
}
