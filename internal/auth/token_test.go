package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukerupert/ferrovelho/internal/cookie"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_IssueAndParse(t *testing.T) {
	tokens, err := NewTokens("test-secret", time.Hour)
	require.NoError(t, err)

	signed, err := tokens.Issue("admin@ferrovelho.com.br", RoleAdmin)
	require.NoError(t, err)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "admin@ferrovelho.com.br", claims.Subject)
	assert.Equal(t, "ferrovelho", claims.Issuer)
}

func TestTokens_ParseRejects(t *testing.T) {
	tokens, err := NewTokens("test-secret", time.Hour)
	require.NoError(t, err)
	other, err := NewTokens("other-secret", time.Hour)
	require.NoError(t, err)

	foreign, err := other.Issue("x", RoleAdmin)
	require.NoError(t, err)

	expired, err := NewTokens("test-secret", time.Minute)
	require.NoError(t, err)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.Issue("x", RoleAdmin)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, RoleClaims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer},
		Role:             RoleAdmin,
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"expired":      stale,
		"alg none":     unsigned,
		"empty":        "",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Parse(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokens_Role(t *testing.T) {
	tokens, err := NewTokens("test-secret", time.Hour)
	require.NoError(t, err)
	admin, err := tokens.Issue("a", RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		cookie string
		want   string
	}{
		{"no cookie", "", "guest"},
		{"tampered cookie", admin + "x", "guest"},
		{"admin cookie", admin, "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/cadastro/vendedor", nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: cookie.RoleCookieName, Value: tt.cookie})
			}
			assert.Equal(t, tt.want, tokens.Role(r))
		})
	}
}

func TestNewTokens_RequiresSecret(t *testing.T) {
	_, err := NewTokens("", time.Hour)
	assert.Error(t, err)

	tokens, err := NewTokens("s", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, tokens.TTL())
}
