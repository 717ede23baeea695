package startup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testService struct{ name string }

type testIface interface{ Name() string }

func (t *testService) Name() string { return t.name }

func TestServices(t *testing.T) {
	t.Run("add and resolve", func(t *testing.T) {
		s := NewServices()
		require.NoError(t, Add(s, &testService{name: "a"}))

		got, err := Resolve[*testService](s)
		require.NoError(t, err)
		assert.Equal(t, "a", got.name)
		assert.Equal(t, "a", MustResolve[*testService](s).name)
	})

	t.Run("keys by static type", func(t *testing.T) {
		s := NewServices()
		require.NoError(t, Add[testIface](s, &testService{name: "iface"}))

		_, ok := TryResolve[*testService](s)
		assert.False(t, ok)

		got, ok := TryResolve[testIface](s)
		require.True(t, ok)
		assert.Equal(t, "iface", got.Name())
	})

	t.Run("duplicate", func(t *testing.T) {
		s := NewServices()
		require.NoError(t, Add(s, 1))
		assert.ErrorIs(t, Add(s, 2), ErrServiceExists)
		assert.Equal(t, 1, MustResolve[int](s))
	})

	t.Run("missing", func(t *testing.T) {
		s := NewServices()

		_, err := Resolve[string](s)
		assert.ErrorIs(t, err, ErrServiceNotRegistered)
		assert.Panics(t, func() { MustResolve[string](s) })
	})

	t.Run("get or add", func(t *testing.T) {
		s := NewServices()
		calls := 0
		create := func() *testService {
			calls++
			return &testService{name: "created"}
		}

		first := GetOrAdd(s, create)
		second := GetOrAdd(s, create)
		assert.Same(t, first, second)
		assert.Equal(t, 1, calls)
	})

	t.Run("types in order", func(t *testing.T) {
		s := NewServices()
		require.NoError(t, Add(s, "x"))
		require.NoError(t, Add(s, 1))
		assert.Equal(t, []string{"string", "int"}, s.Types())
	})
}

func TestEnvironment(t *testing.T) {
	assert.True(t, Development.IsDevelopment())
	assert.False(t, Development.IsProduction())
	assert.True(t, Staging.IsStaging())
	assert.True(t, Production.IsProduction())
	assert.False(t, Environment("qa").IsDevelopment())
	assert.Equal(t, "production", Production.String())
}
