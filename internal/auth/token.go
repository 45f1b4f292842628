package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer = "userbase"

	// DefaultTokenTTL is the fixed lifetime of identity tokens.
	DefaultTokenTTL = 7 * 24 * time.Hour
)

var errMissingSecret = errors.New("auth: token secret is not configured")

// Claims represents JWT claims used across the service.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

// Principal converts verified claims into the request identity.
func (c *Claims) Principal() Principal {
	return Principal{
		UserID:   c.Subject,
		Username: c.Username,
		Email:    c.Email,
		Role:     c.Role,
	}
}

// TokenIssuer signs and verifies identity tokens with a single HS256 secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption configures TokenIssuer.
type TokenOption func(*TokenIssuer)

// WithTokenTTL overrides the token lifetime. Only tests use it; deployments keep DefaultTokenTTL.
func WithTokenTTL(ttl time.Duration) TokenOption {
	return func(t *TokenIssuer) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithTokenClock overrides time source (useful for tests).
func WithTokenClock(fn func() time.Time) TokenOption {
	return func(t *TokenIssuer) {
		if fn != nil {
			t.now = fn
		}
	}
}

// NewTokenIssuer fails when the secret is empty; callers treat that as fatal.
func NewTokenIssuer(secret string, opts ...TokenOption) (*TokenIssuer, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errMissingSecret
	}
	t := &TokenIssuer{
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Issue signs a token for the given user.
func (t *TokenIssuer) Issue(user User) (string, time.Time, error) {
	if strings.TrimSpace(user.ID) == "" {
		return "", time.Time{}, errors.New("auth: subject is required")
	}
	if !user.Role.Valid() {
		return "", time.Time{}, fmt.Errorf("auth: cannot issue token for role %q", user.Role)
	}
	now := t.now().UTC()
	expiresAt := now.Add(t.ttl)
	claims := Claims{
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry. It returns ErrTokenMissing, ErrTokenExpired
// or ErrTokenInvalid; no partially trusted claims are ever returned.
func (t *TokenIssuer) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenMissing
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" || !claims.Role.Valid() {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
