// Package openapi generates OpenAPI documents from mux routes using Go
// reflection and struct tags, and serves them together with Swagger UI.
//
// Documents are OpenAPI v3.1.0 with JSON Schema Draft 2020-12 schemas.
// Documents of kind DocumentSwagger2 are converted to Swagger 2.0 with
// kin-openapi before serialization.
//
// See: https://spec.openapis.org/oas/v3.1.0
//
// # Describing Routes
//
// A Spec collects operation metadata. Attach it to a route directly or to a
// named route:
//
//	spec := openapi.NewSpec()
//
//	spec.Route(r.HandleFunc("/users", listUsers).Methods(http.MethodGet)).
//	    Summary("List users").
//	    Tags("users").
//	    APIGroup("1").
//	    Response(http.StatusOK, []User{})
//
//	r.HandleFunc("/users", createUser).Methods(http.MethodPost).Name("createUser")
//	spec.Op("createUser").
//	    Request(CreateUserInput{}).
//	    Response(http.StatusCreated, User{})
//
// Path variables become path parameters typed by their macro:
// {id:uuid} is a string with format uuid, {n:int} an integer.
//
// # Documents
//
// A Registry holds one DocumentSettings per document. The settings choose
// the title, the API groups, the serializer conventions and type mappers
// the schemas follow, and an optional PostProcess hook:
//
//	registry := openapi.NewRegistry()
//	err := registry.Add(openapi.DocumentSettings{
//	    DocumentName:  "v1",
//	    Title:         "My API",
//	    APIGroupNames: []string{"1"},
//	    Serializer: openapi.SerializerSettings{
//	        EnumHandling:      openapi.EnumAsString,
//	        NullValueHandling: openapi.NullIgnore,
//	        PropertyNaming:    openapi.NamingCamelCase,
//	    },
//	    TypeMappers: []openapi.TypeMapper{
//	        openapi.PrimitiveTypeMapper[uuid.UUID](func(s *openapi.Schema) {
//	            s.Type = openapi.TypeString("string")
//	            s.Format = "uuid"
//	        }),
//	    },
//	    PostProcess: func(doc *openapi.Document) {
//	        doc.Info.Description = "Served from " + doc.BaseURL()
//	    },
//	})
//
// # Serving
//
// UseOpenAPI serves a registered document; the path extension picks JSON
// or YAML. UseSwaggerUI serves a Swagger UI page bound to a document URL:
//
//	openapi.UseOpenAPI(r, spec, registry, openapi.OpenAPIConfig{
//	    DocumentName: "v1",
//	    Path:         "/openapi/v1/openapi.json",
//	})
//	openapi.UseSwaggerUI(r, openapi.SwaggerUIConfig{
//	    Path:         "/openapi",
//	    DocumentPath: "/openapi/v1/openapi.json",
//	})
//
// Documents are generated per request, so the first server entry is the
// scheme and host the client reached.
//
// # Struct Tags
//
// The json tag names properties and marks omitempty fields optional. The
// openapi tag adds constraints:
//
//	type CreateUserInput struct {
//	    Name string `json:"name" openapi:"description=Display name,maxLength=64"`
//	    Age  int    `json:"age,omitempty" openapi:"minimum=0,maximum=150"`
//	}
//
// Supported keys: description, example, format, title, minimum, maximum,
// minLength, maxLength, pattern, minItems, maxItems, deprecated, readOnly,
// writeOnly.
//
// # Enums
//
// Types implementing Enum become component schemas whose values are the
// names (EnumAsString) or ordinals (EnumAsInteger).
package openapi
