package openapi

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrDuplicateDocument is returned when a document name is registered twice.
	ErrDuplicateDocument = errors.New("openapi: duplicate document name")

	// ErrUnknownDocument is returned when a document name was never registered.
	ErrUnknownDocument = errors.New("openapi: unknown document")

	// ErrInvalidDocument is returned for settings without a name.
	ErrInvalidDocument = errors.New("openapi: invalid document settings")
)

// Registry holds the document settings of an application keyed by name.
type Registry struct {
	mu        sync.RWMutex
	documents map[string]*DocumentSettings
	names     []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		documents: make(map[string]*DocumentSettings),
	}
}

// Add registers a document. Names must be non-empty and unique.
func (r *Registry) Add(settings DocumentSettings) error {
	if settings.DocumentName == "" {
		return fmt.Errorf("%w: empty document name", ErrInvalidDocument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.documents[settings.DocumentName]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateDocument, settings.DocumentName)
	}

	r.documents[settings.DocumentName] = &settings
	r.names = append(r.names, settings.DocumentName)
	return nil
}

// Get returns the settings registered under name.
func (r *Registry) Get(name string) (*DocumentSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	settings, ok := r.documents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDocument, name)
	}
	return settings, nil
}

// Names returns the registered document names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.names...)
}
