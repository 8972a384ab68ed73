package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dukerupert/ferrovelho/internal/cookie"
	"github.com/dukerupert/ferrovelho/internal/guard"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of a role claim.
const DefaultTokenTTL = 12 * time.Hour

const tokenIssuer = "ferrovelho"

var ErrInvalidToken = errors.New("invalid role token")

// RoleClaims is the signed role claim stored in the role cookie.
type RoleClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// RoleReader reads the role of the current request.
type RoleReader interface {
	Role(r *http.Request) string
}

// Tokens issues and verifies HS256 role tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token issuer. The secret must not be empty.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("auth: empty token secret")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the token lifetime.
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for subject carrying role.
func (t *Tokens) Issue(subject, role string) (string, error) {
	now := t.now()
	claims := RoleClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Role: role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign role token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns its claims. Expired, tampered or
// non-HMAC tokens are rejected with ErrInvalidToken.
func (t *Tokens) Parse(token string) (*RoleClaims, error) {
	claims := &RoleClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Role returns the role carried by the request's role cookie. A missing or
// invalid claim reads as guard.RoleGuest.
func (t *Tokens) Role(r *http.Request) string {
	raw := cookie.Get(r, cookie.RoleCookieName)
	if raw == "" {
		return guard.RoleGuest
	}
	claims, err := t.Parse(raw)
	if err != nil || claims.Role == "" {
		return guard.RoleGuest
	}
	return claims.Role
}
