package middleware

import (
	"context"
	"net/http"

	"github.com/dukerupert/ferrovelho/internal/auth"
	"github.com/dukerupert/ferrovelho/internal/guard"
)

const (
	// RoleContextKey is the context key for the request's role claim
	RoleContextKey contextKey = "role"
)

// WithRole reads the role claim once per request and stores it in the
// context for handlers and templates. Missing claims read as guest.
func WithRole(reader auth.RoleReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := reader.Role(r)
			ctx := context.WithValue(r.Context(), RoleContextKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRole returns the role stored by WithRole, or guest.
func GetRole(ctx context.Context) string {
	if role, ok := ctx.Value(RoleContextKey).(string); ok && role != "" {
		return role
	}
	return guard.RoleGuest
}

// RequireRole runs guard.Authorize on every request. Denied browser requests
// are redirected to the guard's target; JSON clients get 403. onDeny, when
// set, is called with the denied role.
func RequireRole(reader auth.RoleReader, onDeny func(role string), roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := reader.Role(r)
			decision := guard.Authorize(role, roles...)
			if decision.Allow {
				next.ServeHTTP(w, r)
				return
			}

			if onDeny != nil {
				onDeny(role)
			}
			GetLogger(r.Context()).Info("route guard denied request",
				"role", role,
				"redirect", decision.Redirect,
			)

			if acceptsJSON(r) {
				respondForbidden(w, r)
				return
			}
			http.Redirect(w, r, decision.Redirect, http.StatusSeeOther)
		})
	}
}
