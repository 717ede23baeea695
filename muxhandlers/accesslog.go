package muxhandlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/vitalvas/webapi/mux"
)

// AccessLogEntry describes one completed request.
type AccessLogEntry struct {
	Method     string
	Path       string
	RemoteAddr string
	Scheme     string
	RequestID  string
	Status     int
	Size       int64
	Duration   time.Duration
}

// AccessLogConfig configures the access log middleware.
type AccessLogConfig struct {
	// LogFunc receives one entry per completed request. Required.
	LogFunc func(r *http.Request, entry AccessLogEntry)

	// SkipPaths lists exact paths that are not logged.
	SkipPaths []string
}

// AccessLogMiddleware returns a middleware that reports method, path, status,
// size and duration of every request to LogFunc. Place it inside request ID
// and forwarded headers so the entry carries their values.
func AccessLogMiddleware(cfg AccessLogConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if cfg.LogFunc == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(cfg.SkipPaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusResponseWriter(w)

			next.ServeHTTP(sw, r)

			scheme := "http"
			if IsHTTPS(r) {
				scheme = "https"
			}

			cfg.LogFunc(r, AccessLogEntry{
				Method:     r.Method,
				Path:       r.URL.Path,
				RemoteAddr: r.RemoteAddr,
				Scheme:     scheme,
				RequestID:  RequestIDFromContext(r.Context()),
				Status:     sw.Status(),
				Size:       sw.size,
				Duration:   time.Since(start),
			})
		})
	}
}
