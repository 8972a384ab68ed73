package storefront

import (
	"net/http"

	"github.com/dukerupert/ferrovelho/internal/cookie"
)

// GetRegistrationID returns the registration session id from its cookie,
// or "" when absent.
func GetRegistrationID(r *http.Request) string {
	return cookie.Get(r, cookie.RegistrationCookieName)
}

// SetRegistrationCookie stores the registration session id. It is a
// browser-session cookie; the server-side TTL decides when the session ends.
func SetRegistrationCookie(w http.ResponseWriter, id string, cookieConfig *cookie.Config) {
	cookieConfig.Set(w, cookie.RegistrationCookieName, id, 0)
}

// ClearRegistrationCookie removes the registration session cookie.
func ClearRegistrationCookie(w http.ResponseWriter, cookieConfig *cookie.Config) {
	cookieConfig.Clear(w, cookie.RegistrationCookieName)
}
