package muxhandlers

import (
	"net/http"
	"os"

	"github.com/vitalvas/webapi/mux"
)

// ServerConfig configures the Server middleware behaviour.
type ServerConfig struct {
	// Name is written to the Server response header. Empty skips it.
	Name string

	// Hostname is written to the X-Server-Hostname response header.
	// When empty, the first non-empty variable in HostnameEnv is used.
	// Nothing is written when both are empty.
	Hostname string

	// HostnameEnv is a list of environment variable names checked in
	// order, e.g. ["POD_NAME", "HOSTNAME"].
	HostnameEnv []string
}

// ServerMiddleware returns a middleware that sets server identification
// response headers. Values are resolved once when the middleware is created.
func ServerMiddleware(cfg ServerConfig) mux.MiddlewareFunc {
	hostname := cfg.Hostname
	if hostname == "" {
		for _, env := range cfg.HostnameEnv {
			if v, ok := os.LookupEnv(env); ok && v != "" {
				hostname = v
				break
			}
		}
	}

	name := cfg.Name

	return func(next http.Handler) http.Handler {
		if name == "" && hostname == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if name != "" {
				w.Header().Set("Server", name)
			}
			if hostname != "" {
				w.Header().Set("X-Server-Hostname", hostname)
			}
			next.ServeHTTP(w, r)
		})
	}
}
