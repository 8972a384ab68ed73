// Package cookie sets and clears the cookies the application issues.
package cookie

import (
	"net/http"
	"time"
)

// Cookie names used throughout the application.
const (
	// RoleCookieName holds the signed role claim.
	RoleCookieName = "ferrovelho_role"

	// RegistrationCookieName holds the registration session id.
	RegistrationCookieName = "ferrovelho_registro"
)

// Config holds cookie scoping shared by every cookie.
type Config struct {
	// Domain scopes cookies; empty means host-only.
	Domain string

	// Secure requires HTTPS. True in production.
	Secure bool
}

// NewConfig creates a cookie configuration.
func NewConfig(domain string, secure bool) *Config {
	return &Config{Domain: domain, Secure: secure}
}

// Set writes an HttpOnly, SameSite=Lax cookie on "/". A zero maxAge makes it
// a browser-session cookie.
func (c *Config) Set(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Domain:   c.Domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear removes a cookie. Domain and path must match the ones used by Set.
func (c *Config) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Domain:   c.Domain,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Get returns a cookie value, or "" when the cookie is missing.
func Get(r *http.Request, name string) string {
	ck, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}
