package muxhandlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware(t *testing.T) {
	capture := func(got *string) http.Handler {
		return http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			*got = RequestIDFromContext(r.Context())
		})
	}

	t.Run("generates uuid", func(t *testing.T) {
		var got string
		w := httptest.NewRecorder()
		RequestIDMiddleware(RequestIDConfig{})(capture(&got)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		_, err := uuid.Parse(got)
		require.NoError(t, err)
		assert.Equal(t, got, w.Header().Get("X-Request-ID"))
	})

	t.Run("ignores incoming by default", func(t *testing.T) {
		var got string
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "client-id")
		RequestIDMiddleware(RequestIDConfig{})(capture(&got)).ServeHTTP(httptest.NewRecorder(), req)

		assert.NotEqual(t, "client-id", got)
	})

	tests := []struct {
		name     string
		incoming string
		reused   bool
	}{
		{"well formed", "abc-123", true},
		{"control characters", "abc\x00def", false},
		{"spaces", "abc def", false},
		{"too long", strings.Repeat("a", maxIncomingRequestIDLength+1), false},
		{"max length", strings.Repeat("a", maxIncomingRequestIDLength), true},
	}

	for _, tt := range tests {
		t.Run("trusted incoming "+tt.name, func(t *testing.T) {
			var got string
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", tt.incoming)
			RequestIDMiddleware(RequestIDConfig{TrustIncoming: true})(capture(&got)).ServeHTTP(httptest.NewRecorder(), req)

			if tt.reused {
				assert.Equal(t, tt.incoming, got)
			} else {
				assert.NotEqual(t, tt.incoming, got)
				assert.NotEmpty(t, got)
			}
		})
	}

	t.Run("custom header and generator", func(t *testing.T) {
		var got string
		w := httptest.NewRecorder()
		RequestIDMiddleware(RequestIDConfig{
			HeaderName:   "X-Correlation-ID",
			GenerateFunc: func(_ *http.Request) string { return "fixed" },
		})(capture(&got)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "fixed", got)
		assert.Equal(t, "fixed", w.Header().Get("X-Correlation-ID"))
		assert.Empty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("empty generator leaves request untouched", func(t *testing.T) {
		var got string
		w := httptest.NewRecorder()
		RequestIDMiddleware(RequestIDConfig{
			GenerateFunc: func(_ *http.Request) string { return "" },
		})(capture(&got)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Empty(t, got)
		assert.Empty(t, w.Header().Get("X-Request-ID"))
	})
}

func TestRequestIDFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, RequestIDFromContext(req.Context()))
}
