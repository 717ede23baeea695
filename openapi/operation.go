package openapi

import (
	"net/http"
	"strconv"
)

// operationMeta stores metadata collected via the fluent builder before a
// document is built.
type operationMeta struct {
	operationID string
	summary     string
	description string
	tags        []string
	groups      []string
	deprecated  bool
	parameters  []*Parameter
	security    []SecurityRequirement

	requestBody        any
	hasRequest         bool
	requestDescription string
	responses          map[string]any    // statusKey -> body, nil for no content
	responseDescs      map[string]string // statusKey -> custom description
	responseTypes      map[string]string // statusKey -> content type
}

// OperationBuilder provides a fluent API for attaching OpenAPI metadata
// to a route.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object
type OperationBuilder struct {
	meta *operationMeta
}

func newOperationBuilder() *OperationBuilder {
	return &OperationBuilder{
		meta: &operationMeta{
			responses: make(map[string]any),
		},
	}
}

// OperationID sets a custom operation ID, overriding the route name.
func (b *OperationBuilder) OperationID(id string) *OperationBuilder {
	b.meta.operationID = id
	return b
}

// Summary sets the operation summary.
func (b *OperationBuilder) Summary(s string) *OperationBuilder {
	b.meta.summary = s
	return b
}

// Description sets the operation description.
func (b *OperationBuilder) Description(d string) *OperationBuilder {
	b.meta.description = d
	return b
}

// Tags adds one or more tags to the operation.
func (b *OperationBuilder) Tags(tags ...string) *OperationBuilder {
	b.meta.tags = append(b.meta.tags, tags...)
	return b
}

// APIGroup adds the operation to a named API group. Documents with
// APIGroupNames only include operations of the listed groups.
func (b *OperationBuilder) APIGroup(names ...string) *OperationBuilder {
	b.meta.groups = append(b.meta.groups, names...)
	return b
}

// Groups returns the API groups the operation belongs to.
func (b *OperationBuilder) Groups() []string {
	return append([]string(nil), b.meta.groups...)
}

// Deprecated marks the operation as deprecated.
func (b *OperationBuilder) Deprecated() *OperationBuilder {
	b.meta.deprecated = true
	return b
}

// Request registers the application/json request body type.
func (b *OperationBuilder) Request(body any) *OperationBuilder {
	b.meta.requestBody = body
	b.meta.hasRequest = true
	return b
}

// RequestDescription sets the description for the request body.
func (b *OperationBuilder) RequestDescription(desc string) *OperationBuilder {
	b.meta.requestDescription = desc
	return b
}

// Response registers an application/json response type for the given HTTP
// status code. Pass nil body for responses with no content.
func (b *OperationBuilder) Response(statusCode int, body any) *OperationBuilder {
	b.meta.responses[strconv.Itoa(statusCode)] = body
	return b
}

// ResponseContent registers a response with a content type other than
// application/json, such as application/problem+json.
func (b *OperationBuilder) ResponseContent(statusCode int, contentType string, body any) *OperationBuilder {
	key := strconv.Itoa(statusCode)
	if b.meta.responseTypes == nil {
		b.meta.responseTypes = make(map[string]string)
	}
	b.meta.responses[key] = body
	b.meta.responseTypes[key] = contentType
	return b
}

// ResponseDescription overrides the status text description of a response.
func (b *OperationBuilder) ResponseDescription(statusCode int, desc string) *OperationBuilder {
	if b.meta.responseDescs == nil {
		b.meta.responseDescs = make(map[string]string)
	}
	b.meta.responseDescs[strconv.Itoa(statusCode)] = desc
	return b
}

// Parameter adds a custom parameter to the operation.
func (b *OperationBuilder) Parameter(param *Parameter) *OperationBuilder {
	b.meta.parameters = append(b.meta.parameters, param)
	return b
}

// Security sets operation-level security requirements.
func (b *OperationBuilder) Security(reqs ...SecurityRequirement) *OperationBuilder {
	if reqs == nil {
		reqs = []SecurityRequirement{}
	}
	b.meta.security = reqs
	return b
}

// mergeParameters combines path parameters with custom parameters. Custom
// parameters with the same name and location replace path parameters.
func mergeParameters(auto, custom []*Parameter) []*Parameter {
	if len(auto) == 0 && len(custom) == 0 {
		return nil
	}

	overrides := make(map[[2]string]struct{}, len(custom))
	for _, p := range custom {
		overrides[[2]string{p.Name, p.In}] = struct{}{}
	}

	var merged []*Parameter
	for _, p := range auto {
		if _, ok := overrides[[2]string{p.Name, p.In}]; !ok {
			merged = append(merged, p)
		}
	}

	return append(merged, custom...)
}

// resolveSchema returns body itself when it is a *Schema, otherwise the
// generated schema of its type.
func resolveSchema(gen *SchemaGenerator, body any) *Schema {
	if body == nil {
		return nil
	}
	if s, ok := body.(*Schema); ok {
		return s
	}
	return gen.Generate(body)
}

func responseDescription(key string) string {
	code, err := strconv.Atoi(key)
	if err == nil {
		if text := http.StatusText(code); text != "" {
			return text
		}
	}
	return key
}

// buildOperation converts the collected metadata into an Operation Object.
func (b *OperationBuilder) buildOperation(gen *SchemaGenerator, operationID string, pathParams []*Parameter) *Operation {
	if b.meta.operationID != "" {
		operationID = b.meta.operationID
	}
	op := &Operation{
		OperationID: operationID,
		Summary:     b.meta.summary,
		Description: b.meta.description,
		Tags:        b.meta.tags,
		Deprecated:  b.meta.deprecated,
		Security:    b.meta.security,
		Parameters:  mergeParameters(pathParams, b.meta.parameters),
	}

	if b.meta.hasRequest {
		mt := &MediaType{Schema: resolveSchema(gen, b.meta.requestBody)}
		op.RequestBody = &RequestBody{
			Description: b.meta.requestDescription,
			Required:    true,
			Content:     map[string]*MediaType{"application/json": mt},
		}
	}

	if len(b.meta.responses) > 0 {
		op.Responses = make(map[string]*Response, len(b.meta.responses))
		for key, body := range b.meta.responses {
			desc := responseDescription(key)
			if custom, ok := b.meta.responseDescs[key]; ok {
				desc = custom
			}

			resp := &Response{Description: desc}
			if body != nil {
				ct := "application/json"
				if custom, ok := b.meta.responseTypes[key]; ok {
					ct = custom
				}
				resp.Content = map[string]*MediaType{
					ct: {Schema: resolveSchema(gen, body)},
				}
			}
			op.Responses[key] = resp
		}
	}

	return op
}
