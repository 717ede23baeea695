package muxhandlers

import (
	"errors"
	"net/http"

	"github.com/vitalvas/webapi/mux"
)

// DefaultMaxRequestBodySize is the body limit used when MaxBytes is zero.
const DefaultMaxRequestBodySize int64 = 30_000_000

// ErrInvalidMaxSize is returned when RequestSizeLimitConfig.MaxBytes is
// negative.
var ErrInvalidMaxSize = errors.New("request size limit: max size must not be negative")

// RequestSizeLimitConfig configures the Request Size Limit middleware behaviour.
type RequestSizeLimitConfig struct {
	// MaxBytes is the maximum allowed request body size in bytes.
	// Zero selects DefaultMaxRequestBodySize.
	MaxBytes int64
}

// RequestSizeLimitMiddleware returns a middleware that limits the size of
// incoming request bodies. Requests that declare a larger Content-Length are
// rejected with 413 before the handler runs; other bodies are wrapped with
// http.MaxBytesReader so reads past the limit fail.
func RequestSizeLimitMiddleware(cfg RequestSizeLimitConfig) (mux.MiddlewareFunc, error) {
	if cfg.MaxBytes < 0 {
		return nil, ErrInvalidMaxSize
	}

	maxBytes := cfg.MaxBytes
	if maxBytes == 0 {
		maxBytes = DefaultMaxRequestBodySize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				mux.ResponseProblem(w, r, http.StatusRequestEntityTooLarge, "request body is too large")
				return
			}

			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}
