package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/ferrovelho/internal/cookie"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRole string

func (s staticRole) Role(*http.Request) string { return string(s) }

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
})

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name         string
		role         string
		accept       string
		wantStatus   int
		wantLocation string
		wantDenied   []string
	}{
		{"guest redirected", "guest", "", http.StatusSeeOther, "/unauthorized", []string{"guest"}},
		{"admin allowed", "admin", "", http.StatusOK, "", nil},
		{"json client gets 403", "guest", "application/json", http.StatusForbidden, "", []string{"guest"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var denied []string
			h := RequireRole(staticRole(tt.role), func(role string) { denied = append(denied, role) }, "admin")(okHandler)

			req := httptest.NewRequest(http.MethodGet, "/cadastro/vendedor", nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
			assert.Equal(t, tt.wantDenied, denied)
		})
	}
}

func TestWithRole(t *testing.T) {
	var got string
	h := WithRole(staticRole("admin"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRole(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "admin", got)
	assert.Equal(t, "guest", GetRole(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		reuse    bool
	}{
		{"generated", "", false},
		{"reused", "lb-1234", true},
		{"unsafe replaced", "bad id\nInjected: yes", false},
		{"too long replaced", strings.Repeat("a", 200), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctxID string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxID = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			require.NotEmpty(t, ctxID)
			assert.Equal(t, ctxID, w.Header().Get(RequestIDHeader))
			assert.Equal(t, tt.reuse, ctxID == tt.incoming)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         2,
		CleanupInterval:   time.Minute,
	})
	t.Cleanup(rl.Stop)
	h := rl.Middleware(okHandler)

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":4000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)

	limited := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code, "other clients are unaffected")
	rl.Stop()
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", GetClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", GetClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", GetClientIP(req))
}

func TestCSRF(t *testing.T) {
	h := CSRF(CSRFConfig{CookieConfig: cookie.NewConfig("", false)})(okHandler)

	// GET issues the cookie.
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	token := cookies[0].Value
	require.NotEmpty(t, token)

	post := func(formToken, header string) int {
		form := url.Values{"email": {"a@b.com"}}
		if formToken != "" {
			form.Set(CSRFFormFieldName, formToken)
		}
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: token})
		if header != "" {
			req.Header.Set(CSRFHeaderName, header)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusForbidden, post("", ""))
	assert.Equal(t, http.StatusForbidden, post("wrong", ""))
	assert.Equal(t, http.StatusOK, post(token, ""))
	assert.Equal(t, http.StatusOK, post("", token))
}

func TestMatchesPathPrefix(t *testing.T) {
	assert.True(t, matchesPathPrefix("/api/estados", "/api"))
	assert.True(t, matchesPathPrefix("/api", "/api"))
	assert.False(t, matchesPathPrefix("/api-evil", "/api"))
}

func TestMaxBodySize(t *testing.T) {
	h := MaxBodySize(10)(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 11)))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small"))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig()
	w := httptest.NewRecorder()
	SecurityHeaders(cfg)(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))

	cfg.HSTSMaxAge = 0
	w = httptest.NewRecorder()
	SecurityHeaders(cfg)(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg, reg, "/login")
	h := m.Middleware(okHandler)

	for _, path := range []string{"/login", "/wp-admin.php", "/.env"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/login", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "other", "200")))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
}
