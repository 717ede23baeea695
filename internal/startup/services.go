package startup

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	// ErrServiceNotRegistered is returned when resolving an unknown type.
	ErrServiceNotRegistered = errors.New("startup: service not registered")

	// ErrServiceExists is returned when a type is registered twice.
	ErrServiceExists = errors.New("startup: service already registered")
)

// Services is a registry of singletons keyed by their static type.
type Services struct {
	mu    sync.RWMutex
	items map[reflect.Type]any
	order []reflect.Type
}

// NewServices returns an empty registry.
func NewServices() *Services {
	return &Services{items: make(map[reflect.Type]any)}
}

// Add registers v under type T.
func Add[T any](s *Services, v T) error {
	key := reflect.TypeFor[T]()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; ok {
		return fmt.Errorf("%w: %s", ErrServiceExists, key)
	}

	s.items[key] = v
	s.order = append(s.order, key)
	return nil
}

// Resolve returns the service registered under type T.
func Resolve[T any](s *Services) (T, error) {
	if v, ok := TryResolve[T](s); ok {
		return v, nil
	}

	var zero T
	return zero, fmt.Errorf("%w: %s", ErrServiceNotRegistered, reflect.TypeFor[T]())
}

// MustResolve is like Resolve but panics when T is not registered.
func MustResolve[T any](s *Services) T {
	v, err := Resolve[T](s)
	if err != nil {
		panic(err)
	}
	return v
}

// TryResolve returns the service registered under type T, if any.
func TryResolve[T any](s *Services) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.items[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// GetOrAdd returns the service registered under T, registering the result
// of create first when there is none.
func GetOrAdd[T any](s *Services, create func() T) T {
	key := reflect.TypeFor[T]()

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.items[key]; ok {
		return v.(T)
	}

	v := create()
	s.items[key] = v
	s.order = append(s.order, key)
	return v
}

// Types returns the registered type names in registration order.
func (s *Services) Types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.order))
	for _, t := range s.order {
		out = append(out, t.String())
	}
	return out
}
