// Package auth verifies bearer credentials and issues them.
// Verification is a pure function of the Authorization header and the shared secret.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"filevault/internal/model"
)

// ErrUnauthenticated is the parent of every credential failure.
var ErrUnauthenticated = errors.New("unauthenticated")

// Error is a credential failure with a machine code and a fixed client message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return ErrUnauthenticated }

var (
	ErrMissingToken      = &Error{Code: "MISSING_TOKEN", Message: "No token provided"}
	ErrTokenParts        = &Error{Code: "TOKEN_ERROR", Message: "Token error"}
	ErrTokenMalformatted = &Error{Code: "TOKEN_MALFORMATTED", Message: "Token malformatted"}
	ErrTokenInvalid      = &Error{Code: "TOKEN_INVALID", Message: "Token invalid"}
	ErrInvalidPayload    = &Error{Code: "INVALID_TOKEN_PAYLOAD", Message: "Invalid token payload"}
)

const (
	claimID      = "id"
	claimIsAdmin = "isAdmin"
)

var signingMethod = jwt.SigningMethodHS256

// Authenticator verifies and issues HS256 tokens carrying {id, isAdmin}.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

// NewAuthenticator builds an Authenticator. ttl is the lifetime of issued tokens.
func NewAuthenticator(secret string, ttl time.Duration) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{
		secret: []byte(secret),
		ttl:    ttl,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{signingMethod.Alg()}),
			jwt.WithJSONNumber(),
		),
		now: time.Now,
	}, nil
}

// Authenticate validates an Authorization header value of the form "Bearer <token>".
// The scheme is matched case-insensitively and the header must split into exactly
// two space-separated parts.
func (a *Authenticator) Authenticate(header string) (model.Principal, error) {
	if header == "" {
		return model.Principal{}, ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 {
		return model.Principal{}, ErrTokenParts
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return model.Principal{}, ErrTokenMalformatted
	}

	claims := jwt.MapClaims{}
	if _, err := a.parser.ParseWithClaims(parts[1], claims, a.keyFunc); err != nil {
		return model.Principal{}, ErrTokenInvalid
	}

	id, ok := integralClaim(claims[claimID])
	if !ok || id <= 0 {
		return model.Principal{}, ErrInvalidPayload
	}
	isAdmin, _ := claims[claimIsAdmin].(bool)
	return model.Principal{ID: id, IsAdmin: isAdmin}, nil
}

// Issue signs a token for u valid for the configured TTL.
func (a *Authenticator) Issue(u *model.User) (string, error) {
	now := a.now()
	token := jwt.NewWithClaims(signingMethod, jwt.MapClaims{
		claimID:      u.ID,
		claimIsAdmin: u.IsAdmin,
		"iat":        now.Unix(),
		"exp":        now.Add(a.ttl).Unix(),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (a *Authenticator) keyFunc(*jwt.Token) (any, error) {
	return a.secret, nil
}

// integralClaim accepts a JSON number with an integral value or a decimal string.
func integralClaim(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
			return 0, false
		}
		return int64(f), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}
