package muxhandlers

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/vitalvas/webapi/mux"
)

// RecoveryConfig configures the Recovery middleware behaviour.
type RecoveryConfig struct {
	// LogFunc is an optional callback invoked with the request, the
	// recovered value and the goroutine stack when a panic occurs.
	LogFunc func(r *http.Request, err any, stack []byte)
}

// RecoveryMiddleware returns a middleware that recovers from panics in
// downstream handlers. The client receives a plain 500 Internal Server
// Error without any detail; the stack only reaches LogFunc.
//
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func RecoveryMiddleware(cfg RecoveryConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusResponseWriter(w)

			defer func() {
				rv := recover()
				if rv == nil {
					return
				}
				if err, ok := rv.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rv)
				}

				if cfg.LogFunc != nil {
					cfg.LogFunc(r, rv, debug.Stack())
				}

				if sw.wroteHeader {
					return
				}

				http.Error(sw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
