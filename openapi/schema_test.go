package openapi

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLevel int

func (testLevel) OpenAPIEnum() []string {
	return []string{"Low", "Medium", "High"}
}

type testWidget struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name" openapi:"description=Display name,maxLength=64"`
	Level     testLevel `json:"level"`
	Note      *string   `json:"note,omitempty"`
	Parent    *testPart `json:"parent"`
	CreatedAt time.Time `json:"createdAt"`
	Count     int64     `json:"count,string"`
	Tags      []string  `json:"tags"`
	Labels    map[string]int
	URLValue  string
	Ignored   string     `json:"-"`
	Optional  *testLevel `json:"optional"`
}

type testPart struct {
	Value string `json:"value"`
}

func uuidMapper() TypeMapper {
	return PrimitiveTypeMapper[uuid.UUID](func(s *Schema) {
		s.Type = TypeString("string")
		s.Format = "uuid"
	})
}

func TestSchemaGenerator(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		gen := NewSchemaGenerator(SerializerSettings{})
		ref := gen.Generate(testWidget{})
		assert.Equal(t, "#/components/schemas/testWidget", ref.Ref)

		schema := gen.Schemas()["testWidget"]
		require.NotNil(t, schema)

		// uuid.UUID is a [16]byte without a mapper.
		assert.Equal(t, []string{"array"}, schema.Properties["id"].Type.Values())

		assert.Equal(t, "#/components/schemas/testLevel", schema.Properties["level"].Ref)
		assert.Equal(t, []any{0, 1, 2}, gen.Schemas()["testLevel"].Enum)
		assert.Equal(t, []string{"integer"}, gen.Schemas()["testLevel"].Type.Values())

		assert.Equal(t, []string{"string", "null"}, schema.Properties["note"].Type.Values())
		require.Len(t, schema.Properties["parent"].AnyOf, 2)

		assert.Contains(t, schema.Properties, "Labels")
		assert.Contains(t, schema.Properties, "URLValue")
		assert.NotContains(t, schema.Properties, "Ignored")

		assert.Contains(t, schema.Required, "parent")
		assert.NotContains(t, schema.Required, "note")
	})

	t.Run("string enums, ignored nulls and camel case", func(t *testing.T) {
		gen := NewSchemaGenerator(SerializerSettings{
			EnumHandling:      EnumAsString,
			NullValueHandling: NullIgnore,
			PropertyNaming:    NamingCamelCase,
		}, uuidMapper())
		gen.Generate(testWidget{})

		schema := gen.Schemas()["testWidget"]
		require.NotNil(t, schema)

		assert.Equal(t, []string{"string"}, schema.Properties["id"].Type.Values())
		assert.Equal(t, "uuid", schema.Properties["id"].Format)

		level := gen.Schemas()["testLevel"]
		assert.Equal(t, []string{"string"}, level.Type.Values())
		assert.Equal(t, []any{"Low", "Medium", "High"}, level.Enum)

		assert.Equal(t, []string{"string"}, schema.Properties["note"].Type.Values())
		assert.Equal(t, "#/components/schemas/testPart", schema.Properties["parent"].Ref)
		assert.Equal(t, "#/components/schemas/testLevel", schema.Properties["optional"].Ref)
		assert.NotContains(t, schema.Required, "parent")
		assert.NotContains(t, schema.Required, "optional")
		assert.Contains(t, schema.Required, "id")

		assert.Contains(t, schema.Properties, "labels")
		assert.Contains(t, schema.Properties, "urlValue")
		assert.Contains(t, schema.Properties, "createdAt")
	})

	t.Run("field details", func(t *testing.T) {
		gen := NewSchemaGenerator(SerializerSettings{})
		gen.Generate(testWidget{})
		schema := gen.Schemas()["testWidget"]

		name := schema.Properties["name"]
		assert.Equal(t, "Display name", name.Description)
		require.NotNil(t, name.MaxLength)
		assert.Equal(t, 64, *name.MaxLength)

		assert.Equal(t, "date-time", schema.Properties["createdAt"].Format)
		assert.Equal(t, []string{"string"}, schema.Properties["count"].Type.Values())
		assert.Equal(t, []string{"array"}, schema.Properties["tags"].Type.Values())
		assert.Equal(t, []string{"integer"}, schema.Properties["Labels"].AdditionalProperties.Type.Values())
	})

	t.Run("mapper applies to pointers", func(t *testing.T) {
		gen := NewSchemaGenerator(SerializerSettings{}, uuidMapper())
		schema := gen.Generate(&uuid.UUID{})
		assert.Equal(t, []string{"string", "null"}, schema.Type.Values())
		assert.Equal(t, "uuid", schema.Format)
	})

	t.Run("nil value", func(t *testing.T) {
		assert.Nil(t, NewSchemaGenerator(SerializerSettings{}).Generate(nil))
	})
}

func TestPrimitiveTypeMapper(t *testing.T) {
	m := uuidMapper()
	assert.Equal(t, reflect.TypeFor[uuid.UUID](), m.MappedType())

	s := &Schema{}
	m.MapSchema(s)
	assert.Equal(t, "uuid", s.Format)
}

func TestCamelCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"TemperatureC", "temperatureC"},
		{"ID", "id"},
		{"URLValue", "urlValue"},
		{"name", "name"},
		{"A", "a"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, camelCase(tt.in))
		})
	}
}

func TestSanitizeSchemaName(t *testing.T) {
	assert.Equal(t, "PageUser", sanitizeSchemaName("Page[example.com/pkg.User]"))
	assert.Equal(t, "PageUserList", sanitizeSchemaName("Page[[]example.com/pkg.User]"))
	assert.Equal(t, "User", sanitizeSchemaName("User"))
}
