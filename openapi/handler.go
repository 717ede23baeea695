package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/vitalvas/webapi/mux"
	"gopkg.in/yaml.v3"
)

// ErrNoDocumentPath is returned by UseSwaggerUI without a DocumentPath.
var ErrNoDocumentPath = errors.New("openapi: swagger ui requires a document path")

// OpenAPIConfig configures the document endpoint registered by UseOpenAPI.
type OpenAPIConfig struct {
	// DocumentName selects the registered document.
	DocumentName string

	// Path is the route serving the document. Defaults to
	// "/swagger/<DocumentName>/swagger.json". Paths ending in .yaml or
	// .yml serve YAML, everything else JSON.
	Path string
}

// UseOpenAPI registers a GET endpoint serving the named document. The
// document is generated per request so its server entry matches the host
// and scheme the client used.
func UseOpenAPI(r *mux.Router, spec *Spec, registry *Registry, cfg OpenAPIConfig) (*mux.Route, error) {
	settings, err := registry.Get(cfg.DocumentName)
	if err != nil {
		return nil, err
	}

	docPath := cfg.Path
	if docPath == "" {
		docPath = "/swagger/" + settings.DocumentName + "/swagger.json"
	}

	asYAML := false
	switch strings.ToLower(path.Ext(docPath)) {
	case ".yaml", ".yml":
		asYAML = true
	}

	route := r.HandleFunc(docPath, func(w http.ResponseWriter, req *http.Request) {
		data, err := renderDocument(r, spec, settings, RequestBaseURL(req), asYAML)
		if err != nil {
			http.Error(w, "failed to generate OpenAPI document", http.StatusInternalServerError)
			return
		}

		if asYAML {
			w.Header().Set("Content-Type", "application/x-yaml")
		} else {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}).Methods(http.MethodGet, http.MethodHead)

	return route, route.GetError()
}

// RequestBaseURL returns scheme://host of the request. The scheme honours
// a scheme set by forwarded headers.
func RequestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.URL.Scheme, "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func renderDocument(r *mux.Router, spec *Spec, settings *DocumentSettings, baseURL string, asYAML bool) (data []byte, err error) {
	defer func() {
		if rv := recover(); rv != nil {
			err = fmt.Errorf("openapi: generating %q: %v", settings.DocumentName, rv)
		}
	}()

	doc := spec.Build(r, settings, baseURL)

	if asYAML {
		return MarshalYAML(doc, settings.Kind)
	}
	return MarshalJSON(doc, settings.Kind)
}

// MarshalJSON serializes the document in the wire form of kind.
func MarshalJSON(doc *Document, kind DocumentKind) ([]byte, error) {
	if kind == DocumentSwagger2 {
		doc2, err := ToSwagger2(doc)
		if err != nil {
			return nil, err
		}
		return json.MarshalIndent(doc2, "", "  ")
	}
	return json.MarshalIndent(doc, "", "  ")
}

// MarshalYAML serializes the document in the wire form of kind as YAML,
// keeping the JSON key order.
func MarshalYAML(doc *Document, kind DocumentKind) ([]byte, error) {
	data, err := MarshalJSON(doc, kind)
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("openapi: converting to yaml: %w", err)
	}
	clearNodeStyle(&node)

	return yaml.Marshal(&node)
}

// clearNodeStyle drops the flow and quoting styles the JSON input carries
// so the output reads as block YAML.
func clearNodeStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		clearNodeStyle(child)
	}
}

// ToSwagger2 converts an OpenAPI 3 document to Swagger 2.0. The first
// server becomes host, basePath and schemes.
func ToSwagger2(doc *Document) (*openapi2.T, error) {
	v3 := *doc
	v3.OpenAPI = "3.0.3"

	data, err := json.Marshal(&v3)
	if err != nil {
		return nil, fmt.Errorf("openapi: encoding document: %w", err)
	}

	doc3, err := openapi3.NewLoader().LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: loading document: %w", err)
	}
	if doc3.Components == nil {
		doc3.Components = &openapi3.Components{}
	}

	doc2, err := openapi2conv.FromV3(doc3)
	if err != nil {
		return nil, fmt.Errorf("openapi: converting to swagger 2.0: %w", err)
	}
	doc2.Swagger = "2.0"

	return doc2, nil
}

// SwaggerUIConfig configures the page registered by UseSwaggerUI.
type SwaggerUIConfig struct {
	// Path is the UI route. Defaults to "/swagger".
	Path string

	// DocumentPath is the URL of the document the UI loads.
	DocumentPath string

	// Title is the HTML page title. Defaults to "Swagger UI".
	Title string

	// Options are extra SwaggerUIBundle properties, for example
	// {"docExpansion": "none"}.
	//
	// See: https://swagger.io/docs/open-source-tools/swagger-ui/usage/configuration/
	Options map[string]any
}

// UseSwaggerUI registers the Swagger UI page at Path, Path/ and
// Path/index.html.
func UseSwaggerUI(r *mux.Router, cfg SwaggerUIConfig) error {
	if cfg.DocumentPath == "" {
		return ErrNoDocumentPath
	}

	base := strings.TrimRight(cfg.Path, "/")
	if cfg.Path == "" {
		base = "/swagger"
	}

	title := cfg.Title
	if title == "" {
		title = "Swagger UI"
	}

	rendered, err := swaggerUITemplate(title, cfg.DocumentPath, cfg.Options)
	if err != nil {
		return err
	}
	page := []byte(rendered)
	handler := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(page)
	}

	paths := []string{base, base + "/", base + "/index.html"}
	if base == "" {
		paths = []string{"/", "/index.html"}
	}

	for _, p := range paths {
		route := r.HandleFunc(p, handler).Methods(http.MethodGet, http.MethodHead)
		if err := route.GetError(); err != nil {
			return err
		}
	}

	return nil
}

// swaggerUITemplate renders the UI page. Values placed in the inline script
// are JSON encoded, which escapes <, > and &.
func swaggerUITemplate(title, specPath string, config map[string]any) (string, error) {
	url, err := json.Marshal(specPath)
	if err != nil {
		return "", err
	}

	var extra string
	if len(config) > 0 {
		keys := make([]string, 0, len(config))
		for k := range config {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf strings.Builder
		for _, k := range keys {
			key, _ := json.Marshal(k)
			v, err := json.Marshal(config[k])
			if err != nil {
				continue
			}
			fmt.Fprintf(&buf, ", %s: %s", key, v)
		}
		extra = buf.String()
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({url: %s, dom_id: "#swagger-ui"%s});
</script>
</body>
</html>`, html.EscapeString(title), url, extra), nil
}
