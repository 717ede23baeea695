package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/webapi/muxhandlers"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()

	svc, err := New(cfg)
	require.NoError(t, err)
	return svc
}

func TestService(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		svc := newTestService(t, Config{Secret: testSecret, Issuer: "webapi", Audience: "clients"})
		assert.False(t, svc.GeneratedSecret())

		token, err := svc.Generate("alice", "forecasts:write")
		require.NoError(t, err)

		claims, err := svc.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject)
		assert.Equal(t, "webapi", claims.Issuer)
		assert.Equal(t, jwt.ClaimStrings{"clients"}, claims.Audience)
		assert.True(t, claims.HasScope("forecasts:write"))
		assert.False(t, claims.HasScope("admin"))
	})

	t.Run("generated secret", func(t *testing.T) {
		a := newTestService(t, Config{})
		b := newTestService(t, Config{})
		assert.True(t, a.GeneratedSecret())

		token, err := a.Generate("bob")
		require.NoError(t, err)

		_, err = a.Parse(token)
		assert.NoError(t, err)

		_, err = b.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		svc := newTestService(t, Config{Secret: testSecret, TokenTTL: time.Minute})
		issued := time.Now().Add(-time.Hour)
		svc.now = func() time.Time { return issued }

		token, err := svc.Generate("carol")
		require.NoError(t, err)

		svc.now = time.Now
		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("issuer and audience mismatch", func(t *testing.T) {
		issuer := newTestService(t, Config{Secret: testSecret, Issuer: "other", Audience: "clients"})
		token, err := issuer.Generate("dave")
		require.NoError(t, err)

		svc := newTestService(t, Config{Secret: testSecret, Issuer: "webapi", Audience: "clients"})
		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)

		aud := newTestService(t, Config{Secret: testSecret, Issuer: "webapi", Audience: "partners"})
		token, err = aud.Generate("dave")
		require.NoError(t, err)
		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects other algorithms", func(t *testing.T) {
		svc := newTestService(t, Config{Secret: testSecret})

		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("requires expiry", func(t *testing.T) {
		svc := newTestService(t, Config{Secret: testSecret})

		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := newTestService(t, Config{Secret: testSecret}).Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("negative ttl", func(t *testing.T) {
		_, err := New(Config{TokenTTL: -time.Second})
		assert.Error(t, err)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			got, ok := BearerToken(req)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicies(t *testing.T) {
	svc := newTestService(t, Config{Secret: testSecret})

	t.Run("bearer stores claims", func(t *testing.T) {
		token, err := svc.Generate("alice", "write")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		authorized, err := svc.BearerPolicy()(req)
		require.NoError(t, err)

		claims, ok := ClaimsFromContext(authorized.Context())
		require.True(t, ok)
		assert.Equal(t, "alice", claims.Subject)

		_, err = ScopePolicy("write")(authorized)
		assert.NoError(t, err)

		_, err = ScopePolicy("admin")(authorized)
		assert.ErrorIs(t, err, muxhandlers.ErrForbidden)
	})

	t.Run("bearer rejects", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := svc.BearerPolicy()(req)
		assert.ErrorIs(t, err, muxhandlers.ErrUnauthorized)

		req.Header.Set("Authorization", "Bearer invalid")
		_, err = svc.BearerPolicy()(req)
		assert.ErrorIs(t, err, muxhandlers.ErrUnauthorized)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("scope without claims", func(t *testing.T) {
		_, err := ScopePolicy("write")(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.ErrorIs(t, err, muxhandlers.ErrUnauthorized)

		_, ok := ClaimsFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
		assert.False(t, ok)
	})
}
