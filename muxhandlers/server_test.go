package muxhandlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("name and hostname", func(t *testing.T) {
		w := httptest.NewRecorder()
		ServerMiddleware(ServerConfig{Name: "webapi", Hostname: "node-1"})(next).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "webapi", w.Header().Get("Server"))
		assert.Equal(t, "node-1", w.Header().Get("X-Server-Hostname"))
	})

	t.Run("hostname from env", func(t *testing.T) {
		t.Setenv("WEBAPI_TEST_EMPTY", "")
		t.Setenv("WEBAPI_TEST_POD", "pod-7")

		w := httptest.NewRecorder()
		ServerMiddleware(ServerConfig{HostnameEnv: []string{"WEBAPI_TEST_MISSING", "WEBAPI_TEST_EMPTY", "WEBAPI_TEST_POD"}})(next).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Empty(t, w.Header().Get("Server"))
		assert.Equal(t, "pod-7", w.Header().Get("X-Server-Hostname"))
	})

	t.Run("nothing configured", func(t *testing.T) {
		w := httptest.NewRecorder()
		ServerMiddleware(ServerConfig{})(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Empty(t, w.Header().Get("Server"))
		assert.Empty(t, w.Header().Get("X-Server-Hostname"))
	})
}
