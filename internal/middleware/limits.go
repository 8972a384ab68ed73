package middleware

import (
	"net/http"
)

// Common size limits
const (
	KB = 1024

	// DefaultMaxBodySize fits every registration form with room to spare.
	DefaultMaxBodySize = 64 * KB
)

// MaxBodySize rejects requests whose declared body exceeds maxBytes with 413
// and caps the rest with http.MaxBytesReader. With no argument
// DefaultMaxBodySize is used.
func MaxBodySize(maxBytes ...int64) func(http.Handler) http.Handler {
	limit := int64(DefaultMaxBodySize)
	if len(maxBytes) > 0 && maxBytes[0] > 0 {
		limit = maxBytes[0]
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				respondTooLarge(w, r)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
