package openapi

import (
	"reflect"
)

// DocumentKind selects the wire format of a generated document.
type DocumentKind int

const (
	// DocumentOpenAPI3 renders the document as OpenAPI 3.1.0.
	DocumentOpenAPI3 DocumentKind = iota
	// DocumentSwagger2 renders the document as Swagger 2.0.
	DocumentSwagger2
)

func (k DocumentKind) String() string {
	switch k {
	case DocumentOpenAPI3:
		return "openapi3"
	case DocumentSwagger2:
		return "swagger2"
	default:
		return "unknown"
	}
}

// EnumHandling controls how Enum types are described.
type EnumHandling int

const (
	// EnumAsInteger describes enums by their ordinal values.
	EnumAsInteger EnumHandling = iota
	// EnumAsString describes enums by their names.
	EnumAsString
)

// NullValueHandling controls how pointer fields are described.
type NullValueHandling int

const (
	// NullInclude describes pointer fields as nullable.
	NullInclude NullValueHandling = iota
	// NullIgnore describes pointer fields as optional and never null,
	// matching payloads that omit nil values.
	NullIgnore
)

// PropertyNaming controls the property name of fields without a json tag
// name.
type PropertyNaming int

const (
	// NamingDefault keeps the Go field name.
	NamingDefault PropertyNaming = iota
	// NamingCamelCase lower-cases the first rune of the Go field name.
	NamingCamelCase
)

// SerializerSettings describes the JSON conventions the generated schemas
// must agree with.
type SerializerSettings struct {
	EnumHandling      EnumHandling
	NullValueHandling NullValueHandling
	PropertyNaming    PropertyNaming
}

// Enum is implemented by named types with a closed set of values. Names
// are returned in ordinal order.
//
//	func (s Summary) OpenAPIEnum() []string {
//	    return []string{"Freezing", "Bracing", "Chilly"}
//	}
type Enum interface {
	OpenAPIEnum() []string
}

// TypeMapper overrides the generated schema of one Go type.
type TypeMapper interface {
	MappedType() reflect.Type
	MapSchema(schema *Schema)
}

type primitiveTypeMapper struct {
	typ reflect.Type
	fn  func(*Schema)
}

func (m primitiveTypeMapper) MappedType() reflect.Type { return m.typ }

func (m primitiveTypeMapper) MapSchema(schema *Schema) { m.fn(schema) }

// PrimitiveTypeMapper returns a TypeMapper that renders T inline with the
// schema populated by fn.
//
//	openapi.PrimitiveTypeMapper[uuid.UUID](func(s *openapi.Schema) {
//	    s.Type = openapi.TypeString("string")
//	    s.Format = "uuid"
//	})
func PrimitiveTypeMapper[T any](fn func(*Schema)) TypeMapper {
	return primitiveTypeMapper{
		typ: reflect.TypeFor[T](),
		fn:  fn,
	}
}

// DocumentSettings describes one generated document.
type DocumentSettings struct {
	// DocumentName is the unique key of the document in a Registry.
	DocumentName string

	// Kind selects OpenAPI 3.1.0 or Swagger 2.0 output.
	Kind DocumentKind

	// Title, Version and Description seed the info object.
	Title       string
	Version     string
	Description string

	// APIGroupNames restricts the document to operations in one of the
	// named groups. Empty includes every operation.
	APIGroupNames []string

	Serializer  SerializerSettings
	TypeMappers []TypeMapper

	// PostProcess runs on the generated document before serialization.
	PostProcess func(doc *Document)
}

// includesGroups reports whether an operation in the given groups belongs
// to the document.
func (s *DocumentSettings) includesGroups(groups []string) bool {
	if len(s.APIGroupNames) == 0 {
		return true
	}
	for _, want := range s.APIGroupNames {
		for _, g := range groups {
			if g == want {
				return true
			}
		}
	}
	return false
}
