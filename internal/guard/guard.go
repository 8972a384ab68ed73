// Package guard decides whether a role claim may enter a protected route.
package guard

// RoleGuest is the role of a visitor without a valid role claim.
const RoleGuest = "guest"

// UnauthorizedPath is where denied requests are sent.
const UnauthorizedPath = "/unauthorized"

// Decision is the outcome of Authorize. Redirect is set when Allow is false.
type Decision struct {
	Allow    bool
	Redirect string
}

// Authorize allows role when it is one of allowed. It keeps no state and
// must be called on every request.
func Authorize(role string, allowed ...string) Decision {
	for _, a := range allowed {
		if role == a {
			return Decision{Allow: true}
		}
	}
	return Decision{Redirect: UnauthorizedPath}
}
