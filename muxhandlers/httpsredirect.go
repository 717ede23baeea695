package muxhandlers

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/vitalvas/webapi/mux"
)

// HTTPSRedirectConfig configures the HTTPS redirection middleware.
type HTTPSRedirectConfig struct {
	// HTTPSPort is the port clients are sent to. Zero means the port is
	// unknown and requests pass through unchanged.
	HTTPSPort int

	// StatusCode is the redirect status. Defaults to 307 Temporary Redirect,
	// which preserves the request method.
	StatusCode int

	// LogFunc is called once when no HTTPS port is configured.
	LogFunc func(msg string)
}

// IsHTTPS reports whether the request arrived over TLS or was forwarded as
// https by a trusted proxy.
func IsHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.URL.Scheme, "https")
}

// HTTPSRedirectMiddleware returns a middleware that redirects plain HTTP
// requests to the same host and path over HTTPS.
func HTTPSRedirectMiddleware(cfg HTTPSRedirectConfig) mux.MiddlewareFunc {
	status := cfg.StatusCode
	if status == 0 {
		status = http.StatusTemporaryRedirect
	}

	var warnOnce sync.Once

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsHTTPS(r) {
				next.ServeHTTP(w, r)
				return
			}

			if cfg.HTTPSPort <= 0 {
				if cfg.LogFunc != nil {
					warnOnce.Do(func() {
						cfg.LogFunc("failed to determine the https port for redirect")
					})
				}
				next.ServeHTTP(w, r)
				return
			}

			http.Redirect(w, r, httpsURL(r, cfg.HTTPSPort), status)
		})
	}
}

// httpsURL builds the redirect target. Port 443 is omitted.
func httpsURL(r *http.Request, port int) string {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != 443 {
		host += ":" + strconv.Itoa(port)
	}
	return "https://" + host + r.URL.RequestURI()
}
