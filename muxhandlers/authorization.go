package muxhandlers

import (
	"errors"
	"net/http"

	"github.com/vitalvas/webapi/mux"
)

var (
	// ErrUnauthorized is returned by a Policy when the caller is not
	// authenticated. It answers 401 with a challenge.
	ErrUnauthorized = errors.New("authorization: unauthenticated")

	// ErrForbidden is returned by a Policy when the caller is authenticated
	// but not allowed. It answers 403.
	ErrForbidden = errors.New("authorization: forbidden")
)

// Policy decides whether a request may reach its endpoint. It may return a
// derived request, for example one carrying the caller's claims.
type Policy func(r *http.Request) (*http.Request, error)

type authorizationKey struct{}

// authorizationRequirement is the route metadata stored by
// RequireAuthorization.
type authorizationRequirement struct {
	policies []Policy
}

// RequireAuthorization marks the route as protected. With no policies the
// middleware's DefaultPolicy applies.
func RequireAuthorization(route *mux.Route, policies ...Policy) *mux.Route {
	return route.WithMetadata(authorizationKey{}, authorizationRequirement{policies: policies})
}

// IsAuthorizationRequired reports whether RequireAuthorization was applied to
// the route.
func IsAuthorizationRequired(route *mux.Route) bool {
	if route == nil {
		return false
	}
	_, ok := route.Metadata(authorizationKey{})
	return ok
}

// AuthorizationConfig configures the authorization middleware.
type AuthorizationConfig struct {
	// DefaultPolicy applies to routes marked without explicit policies.
	// When nil such routes always answer 401.
	DefaultPolicy Policy

	// Challenge is the WWW-Authenticate value sent with 401 responses.
	// Defaults to "Bearer".
	Challenge string

	// LogFunc is an optional callback invoked when a request is rejected.
	LogFunc func(r *http.Request, err error)
}

// AuthorizationMiddleware returns a router middleware that enforces the
// policies attached to the matched route. It must run after routing; routes
// without a requirement pass through.
func AuthorizationMiddleware(cfg AuthorizationConfig) mux.MiddlewareFunc {
	challenge := cfg.Challenge
	if challenge == "" {
		challenge = "Bearer"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := mux.CurrentRoute(r)
			if route == nil {
				next.ServeHTTP(w, r)
				return
			}

			meta, ok := route.Metadata(authorizationKey{})
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			policies := meta.(authorizationRequirement).policies
			if len(policies) == 0 {
				policies = []Policy{cfg.DefaultPolicy}
			}

			for _, policy := range policies {
				err := ErrUnauthorized
				if policy != nil {
					var authorized *http.Request
					authorized, err = policy(r)
					if err == nil {
						if authorized != nil {
							r = authorized
						}
						continue
					}
				}

				if cfg.LogFunc != nil {
					cfg.LogFunc(r, err)
				}

				if errors.Is(err, ErrForbidden) {
					mux.ResponseProblem(w, r, http.StatusForbidden, "")
					return
				}

				w.Header().Set("WWW-Authenticate", challenge)
				mux.ResponseProblem(w, r, http.StatusUnauthorized, "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
