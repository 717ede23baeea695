package openapi

import (
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/webapi/mux"
	"gopkg.in/yaml.v3"
)

func serveRequest(r *mux.Router, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func setupTestRegistry(t *testing.T) *Registry {
	t.Helper()

	registry := NewRegistry()
	require.NoError(t, registry.Add(DocumentSettings{
		DocumentName: "v1",
		Title:        "Widgets v1",
		APIGroupNames: []string{
			"1",
		},
		Serializer:  SerializerSettings{EnumHandling: EnumAsString, NullValueHandling: NullIgnore},
		TypeMappers: []TypeMapper{uuidMapper()},
		PostProcess: func(doc *Document) {
			doc.Info.Description = "Served from " + doc.BaseURL()
		},
	}))
	require.NoError(t, registry.Add(DocumentSettings{
		DocumentName: "swagger",
		Kind:         DocumentSwagger2,
		Title:        "Widgets",
		Serializer:   SerializerSettings{EnumHandling: EnumAsString, NullValueHandling: NullIgnore},
		TypeMappers:  []TypeMapper{uuidMapper()},
		PostProcess: func(doc *Document) {
			doc.Info.License = &License{Name: "Widgets licensee", URL: "https://github.com"}
		},
	}))
	return registry
}

func TestUseOpenAPI(t *testing.T) {
	t.Run("openapi 3 json", func(t *testing.T) {
		r, spec := setupTestRouter()
		_, err := UseOpenAPI(r, spec, setupTestRegistry(t), OpenAPIConfig{DocumentName: "v1", Path: "/openapi/v1/openapi.json"})
		require.NoError(t, err)

		w := serveRequest(r, http.MethodGet, "http://api.example.com/openapi/v1/openapi.json")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

		var doc map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, "3.1.0", doc["openapi"])

		info := doc["info"].(map[string]any)
		assert.Equal(t, "Widgets v1", info["title"])
		assert.Equal(t, "Served from http://api.example.com", info["description"])

		servers := doc["servers"].([]any)
		assert.Equal(t, "http://api.example.com", servers[0].(map[string]any)["url"])

		paths := doc["paths"].(map[string]any)
		assert.Contains(t, paths, "/widgets/{id}")
		assert.NotContains(t, paths["/widgets"].(map[string]any), "post")
	})

	t.Run("https base url", func(t *testing.T) {
		r, spec := setupTestRouter()
		_, err := UseOpenAPI(r, spec, setupTestRegistry(t), OpenAPIConfig{DocumentName: "v1", Path: "/openapi/v1/openapi.json"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/openapi/v1/openapi.json", nil)
		req.Host = "secure.example.com"
		req.TLS = &tls.ConnectionState{}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		var doc Document
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, "Served from https://secure.example.com", doc.Info.Description)
	})

	t.Run("swagger 2.0 json", func(t *testing.T) {
		r, spec := setupTestRouter()
		_, err := UseOpenAPI(r, spec, setupTestRegistry(t), OpenAPIConfig{DocumentName: "swagger", Path: "/swagger/v1/swagger.json"})
		require.NoError(t, err)

		w := serveRequest(r, http.MethodGet, "/swagger/v1/swagger.json")
		require.Equal(t, http.StatusOK, w.Code)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, "2.0", doc["swagger"])
		assert.NotContains(t, doc, "openapi")

		info := doc["info"].(map[string]any)
		assert.Equal(t, "Widgets", info["title"])
		license := info["license"].(map[string]any)
		assert.Equal(t, "Widgets licensee", license["name"])
		assert.Equal(t, "https://github.com", license["url"])

		assert.Contains(t, doc["definitions"], "testWidget")
		paths := doc["paths"].(map[string]any)
		assert.Contains(t, paths, "/widgets/{id}")
		assert.Contains(t, paths["/widgets"].(map[string]any), "post")
	})

	t.Run("yaml by extension", func(t *testing.T) {
		r, spec := setupTestRouter()
		_, err := UseOpenAPI(r, spec, setupTestRegistry(t), OpenAPIConfig{DocumentName: "v1", Path: "/openapi/v1/openapi.yaml"})
		require.NoError(t, err)

		w := serveRequest(r, http.MethodGet, "/openapi/v1/openapi.yaml")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/x-yaml", w.Header().Get("Content-Type"))

		var doc map[string]any
		require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, "3.1.0", doc["openapi"])
		assert.NotContains(t, w.Body.String(), "{\"")
	})

	t.Run("default path", func(t *testing.T) {
		r, spec := setupTestRouter()
		route, err := UseOpenAPI(r, spec, setupTestRegistry(t), OpenAPIConfig{DocumentName: "v1"})
		require.NoError(t, err)

		tpl, err := route.GetPathTemplate()
		require.NoError(t, err)
		assert.Equal(t, "/swagger/v1/swagger.json", tpl)
	})

	t.Run("unknown document", func(t *testing.T) {
		r, spec := setupTestRouter()
		_, err := UseOpenAPI(r, spec, setupTestRegistry(t), OpenAPIConfig{DocumentName: "missing"})
		assert.ErrorIs(t, err, ErrUnknownDocument)
	})

	t.Run("post process panic answers 500", func(t *testing.T) {
		r, spec := setupTestRouter()
		registry := NewRegistry()
		require.NoError(t, registry.Add(DocumentSettings{
			DocumentName: "broken",
			PostProcess:  func(*Document) { panic("boom") },
		}))
		_, err := UseOpenAPI(r, spec, registry, OpenAPIConfig{DocumentName: "broken", Path: "/broken.json"})
		require.NoError(t, err)

		w := serveRequest(r, http.MethodGet, "/broken.json")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "boom")
	})

	t.Run("swagger 2.0 without components", func(t *testing.T) {
		r := mux.NewRouter()
		registry := NewRegistry()
		require.NoError(t, registry.Add(DocumentSettings{DocumentName: "empty", Kind: DocumentSwagger2}))
		_, err := UseOpenAPI(r, NewSpec(), registry, OpenAPIConfig{DocumentName: "empty", Path: "/empty.json"})
		require.NoError(t, err)

		w := serveRequest(r, http.MethodGet, "/empty.json")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var doc map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, "2.0", doc["swagger"])
	})

	t.Run("documents are not documented", func(t *testing.T) {
		r, spec := setupTestRouter()
		_, err := UseOpenAPI(r, spec, setupTestRegistry(t), OpenAPIConfig{DocumentName: "v1", Path: "/openapi/v1/openapi.json"})
		require.NoError(t, err)

		var doc Document
		w := serveRequest(r, http.MethodGet, "/openapi/v1/openapi.json")
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.NotContains(t, doc.Paths, "/openapi/v1/openapi.json")
	})
}

func TestUseSwaggerUI(t *testing.T) {
	t.Run("serves page on all paths", func(t *testing.T) {
		r := mux.NewRouter()
		require.NoError(t, UseSwaggerUI(r, SwaggerUIConfig{
			Path:         "/openapi",
			DocumentPath: "/openapi/v1/openapi.json",
			Title:        "Widgets <API>",
			Options:      map[string]any{"docExpansion": "none"},
		}))

		for _, p := range []string{"/openapi", "/openapi/", "/openapi/index.html"} {
			w := serveRequest(r, http.MethodGet, p)
			require.Equal(t, http.StatusOK, w.Code, p)
			assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

			body := w.Body.String()
			assert.Contains(t, body, `url: "/openapi/v1/openapi.json"`)
			assert.Contains(t, body, `"docExpansion": "none"`)
			assert.Contains(t, body, "<title>Widgets &lt;API&gt;</title>")
			assert.Contains(t, body, "swagger-ui-bundle.js")
		}
	})

	t.Run("default path and title", func(t *testing.T) {
		r := mux.NewRouter()
		require.NoError(t, UseSwaggerUI(r, SwaggerUIConfig{DocumentPath: "/swagger/v1/swagger.json"}))

		w := serveRequest(r, http.MethodGet, "/swagger")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "<title>Swagger UI</title>")
		assert.Contains(t, w.Body.String(), `url: "/swagger/v1/swagger.json"`)
	})

	t.Run("script values are encoded", func(t *testing.T) {
		r := mux.NewRouter()
		require.NoError(t, UseSwaggerUI(r, SwaggerUIConfig{
			DocumentPath: "/doc.json</script><script>alert(1)</script>",
			Options:      map[string]any{"</script>": "<b>"},
		}))

		body := serveRequest(r, http.MethodGet, "/swagger").Body.String()
		assert.NotContains(t, body, "<script>alert(1)")
		assert.Equal(t, 2, strings.Count(body, "</script>"))
		assert.Contains(t, body, `url: "/doc.json\u003c/script\u003e`)
		assert.Contains(t, body, `"\u003c/script\u003e": "\u003cb\u003e"`)
	})

	t.Run("requires document path", func(t *testing.T) {
		assert.ErrorIs(t, UseSwaggerUI(mux.NewRouter(), SwaggerUIConfig{Path: "/docs"}), ErrNoDocumentPath)
	})

	t.Run("rejects post", func(t *testing.T) {
		r := mux.NewRouter()
		require.NoError(t, UseSwaggerUI(r, SwaggerUIConfig{DocumentPath: "/doc.json"}))

		w := serveRequest(r, http.MethodPost, "/swagger")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestRequestBaseURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "localhost:5000"
	assert.Equal(t, "http://localhost:5000", RequestBaseURL(req))

	req.URL.Scheme = "https"
	assert.Equal(t, "https://localhost:5000", RequestBaseURL(req))
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Add(DocumentSettings{DocumentName: "a"}))
	require.NoError(t, registry.Add(DocumentSettings{DocumentName: "b"}))

	assert.ErrorIs(t, registry.Add(DocumentSettings{DocumentName: "a"}), ErrDuplicateDocument)
	assert.ErrorIs(t, registry.Add(DocumentSettings{}), ErrInvalidDocument)

	settings, err := registry.Get("b")
	require.NoError(t, err)
	assert.Equal(t, "b", settings.DocumentName)

	_, err = registry.Get("c")
	assert.ErrorIs(t, err, ErrUnknownDocument)

	assert.Equal(t, []string{"a", "b"}, registry.Names())
}

func TestDocumentKindString(t *testing.T) {
	assert.Equal(t, "openapi3", DocumentOpenAPI3.String())
	assert.Equal(t, "swagger2", DocumentSwagger2.String())
}

func TestToSwagger2(t *testing.T) {
	doc := NewSpec().Build(mux.NewRouter(), &DocumentSettings{Title: "Empty"}, "")
	require.Nil(t, doc.Components)

	doc2, err := ToSwagger2(doc)
	require.NoError(t, err)
	assert.Equal(t, "2.0", doc2.Swagger)
	assert.Equal(t, "Empty", doc2.Info.Title)
	assert.Empty(t, doc2.Paths)
}
