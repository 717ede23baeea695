package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/vitalvas/webapi/muxhandlers"
)

type claimsKey struct{}

// WithClaims stores claims in the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims stored by BearerPolicy.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

// BearerPolicy authenticates the request with its bearer token and passes
// the claims on in the request context.
func (s *Service) BearerPolicy() muxhandlers.Policy {
	return func(r *http.Request) (*http.Request, error) {
		token, ok := BearerToken(r)
		if !ok {
			return nil, fmt.Errorf("%w: missing bearer token", muxhandlers.ErrUnauthorized)
		}

		claims, err := s.Parse(token)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", muxhandlers.ErrUnauthorized, err)
		}

		return r.WithContext(WithClaims(r.Context(), claims)), nil
	}
}

// ScopePolicy requires claims carrying scope. It must follow BearerPolicy.
func ScopePolicy(scope string) muxhandlers.Policy {
	return func(r *http.Request) (*http.Request, error) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			return nil, fmt.Errorf("%w: no claims", muxhandlers.ErrUnauthorized)
		}
		if !claims.HasScope(scope) {
			return nil, fmt.Errorf("%w: missing scope %q", muxhandlers.ErrForbidden, scope)
		}
		return r, nil
	}
}
