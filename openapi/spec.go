package openapi

import (
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/vitalvas/webapi/mux"
)

// macroTypeMap maps mux route macros to OpenAPI type and format.
var macroTypeMap = map[string][2]string{
	"uuid":     {"string", "uuid"},
	"int":      {"integer", ""},
	"float":    {"number", ""},
	"slug":     {"string", ""},
	"alpha":    {"string", ""},
	"alphanum": {"string", ""},
	"date":     {"string", "date"},
	"hex":      {"string", ""},
}

// pathVarRegexp matches route variables in the form {name} or {name:macro}.
var pathVarRegexp = regexp.MustCompile(`\{([^}]+)\}`)

// Spec collects OpenAPI metadata for routes. One Spec feeds every document
// of an application; each Build applies one DocumentSettings.
type Spec struct {
	mu              sync.RWMutex
	operations      map[string]*OperationBuilder     // keyed by route name
	routeOps        map[*mux.Route]*OperationBuilder // keyed by route pointer
	tags            []Tag
	securitySchemes map[string]*SecurityScheme
}

// NewSpec creates an empty spec.
func NewSpec() *Spec {
	return &Spec{
		operations: make(map[string]*OperationBuilder),
		routeOps:   make(map[*mux.Route]*OperationBuilder),
	}
}

// AddTag adds a tag with a description.
func (s *Spec) AddTag(tag Tag) *Spec {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tags = append(s.tags, tag)
	return s
}

// AddSecurityScheme registers a reusable security scheme in components.
func (s *Spec) AddSecurityScheme(name string, scheme *SecurityScheme) *Spec {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.securitySchemes == nil {
		s.securitySchemes = make(map[string]*SecurityScheme)
	}
	s.securitySchemes[name] = scheme
	return s
}

// Op returns the OperationBuilder for the named route, creating it on
// first use.
func (s *Spec) Op(routeName string) *OperationBuilder {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.operations[routeName]; ok {
		return b
	}
	b := newOperationBuilder()
	s.operations[routeName] = b
	return b
}

// Route attaches an OperationBuilder to an existing mux route.
func (s *Spec) Route(route *mux.Route) *OperationBuilder {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := newOperationBuilder()
	s.routeOps[route] = b
	return b
}

// Build walks the router and assembles the document described by
// settings. baseURL, when set, becomes the first server entry and is
// available to PostProcess through Document.BaseURL.
func (s *Spec) Build(r *mux.Router, settings *DocumentSettings, baseURL string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gen := NewSchemaGenerator(settings.Serializer, settings.TypeMappers...)

	version := settings.Version
	if version == "" {
		version = "1.0.0"
	}

	doc := &Document{
		OpenAPI: "3.1.0",
		Info: Info{
			Title:       settings.Title,
			Description: settings.Description,
			Version:     version,
		},
		Paths:   make(map[string]*PathItem),
		baseURL: baseURL,
	}
	if baseURL != "" {
		doc.Servers = []Server{{URL: baseURL}}
	}

	_ = r.Walk(func(route *mux.Route, _ *mux.Router) error {
		pathTpl, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}

		methods, err := route.GetMethods()
		if err != nil {
			return nil
		}

		builder, ok := s.routeOps[route]
		if !ok {
			builder, ok = s.operations[route.GetName()]
			if !ok {
				return nil
			}
		}

		if !settings.includesGroups(builder.meta.groups) {
			return nil
		}

		openAPIPath, pathParams := parsePath(pathTpl)

		pathItem, ok := doc.Paths[openAPIPath]
		if !ok {
			pathItem = &PathItem{}
			doc.Paths[openAPIPath] = pathItem
		}

		op := builder.buildOperation(gen, route.GetName(), pathParams)
		for _, method := range methods {
			assignOperation(pathItem, method, op)
		}

		return nil
	})

	if schemas := gen.Schemas(); len(schemas) > 0 || len(s.securitySchemes) > 0 {
		doc.Components = &Components{}
		if len(schemas) > 0 {
			doc.Components.Schemas = schemas
		}
		if len(s.securitySchemes) > 0 {
			doc.Components.SecuritySchemes = s.securitySchemes
		}
	}

	doc.Tags = s.collectTags(doc.Paths)

	if settings.PostProcess != nil {
		settings.PostProcess(doc)
	}

	return doc
}

// collectTags returns the tags used by the document's operations, sorted
// by name. Descriptions come from AddTag.
func (s *Spec) collectTags(paths map[string]*PathItem) []Tag {
	described := make(map[string]Tag, len(s.tags))
	for _, tag := range s.tags {
		described[tag.Name] = tag
	}

	seen := make(map[string]bool)
	var tags []Tag

	for _, pathItem := range paths {
		for _, op := range pathItem.operations() {
			for _, name := range op.Tags {
				if seen[name] {
					continue
				}
				seen[name] = true
				if tag, ok := described[name]; ok {
					tags = append(tags, tag)
				} else {
					tags = append(tags, Tag{Name: name})
				}
			}
		}
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})

	return tags
}

func assignOperation(pathItem *PathItem, method string, op *Operation) {
	switch method {
	case http.MethodGet:
		pathItem.Get = op
	case http.MethodPost:
		pathItem.Post = op
	case http.MethodPut:
		pathItem.Put = op
	case http.MethodDelete:
		pathItem.Delete = op
	case http.MethodPatch:
		pathItem.Patch = op
	case http.MethodHead:
		pathItem.Head = op
	case http.MethodOptions:
		pathItem.Options = op
	case http.MethodTrace:
		pathItem.Trace = op
	}
}

// parsePath converts a mux path template to OpenAPI form and returns the
// path parameters typed by their macros.
func parsePath(tpl string) (string, []*Parameter) {
	var params []*Parameter

	openAPIPath := pathVarRegexp.ReplaceAllStringFunc(tpl, func(match string) string {
		inner := match[1 : len(match)-1]
		varName, macroName, _ := strings.Cut(inner, ":")

		param := &Parameter{
			Name:     varName,
			In:       "path",
			Required: true,
			Schema:   &Schema{Type: TypeString("string")},
		}

		if typeInfo, ok := macroTypeMap[macroName]; ok {
			param.Schema = &Schema{Type: TypeString(typeInfo[0]), Format: typeInfo[1]}
		}

		params = append(params, param)
		return "{" + varName + "}"
	})

	return openAPIPath, params
}
