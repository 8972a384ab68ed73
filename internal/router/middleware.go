package router

import (
	"net/http"
	"time"

	"github.com/dukerupert/ferrovelho/internal/middleware"
)

// Logger writes one access log line per request with the request-scoped
// logger, so the line carries the request id.
func Logger() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger := middleware.GetLogger(r.Context())
			attrs := []any{
				"status", wrapped.status,
				"duration", time.Since(start),
			}
			switch {
			case wrapped.status >= 500:
				logger.Error("request", attrs...)
			case r.URL.Path == "/metrics":
				logger.Debug("request", attrs...)
			default:
				logger.Info("request", attrs...)
			}
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Recovery turns a panic into a 500 and logs it. A panic after the response
// started can only be logged.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				middleware.GetLogger(r.Context()).Error("panic recovered",
					"panic", rec,
					"path", r.URL.Path,
				)
				http.Error(w, "Erro interno do servidor", http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
