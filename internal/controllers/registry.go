// Package controllers holds the API controllers and the registry the
// bootstrap maps them from.
package controllers

import (
	"errors"
	"fmt"

	"github.com/vitalvas/webapi/mux"
	"github.com/vitalvas/webapi/openapi"
)

var (
	// ErrDuplicateController is returned when two controllers share a name.
	ErrDuplicateController = errors.New("controllers: duplicate controller")

	// ErrInvalidController is returned for nil or unnamed controllers.
	ErrInvalidController = errors.New("controllers: invalid controller")
)

// Controller registers a group of routes together with their OpenAPI
// metadata.
type Controller interface {
	// Name identifies the controller and is used as its OpenAPI tag.
	Name() string

	// MapRoutes registers the controller routes on r and describes them in
	// spec.
	MapRoutes(r *mux.Router, spec *openapi.Spec)
}

// Registry is the ordered set of controllers served by the API.
type Registry struct {
	controllers []Controller
	names       map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Add appends controllers in order.
func (reg *Registry) Add(controllers ...Controller) error {
	for _, c := range controllers {
		if c == nil || c.Name() == "" {
			return ErrInvalidController
		}
		if _, ok := reg.names[c.Name()]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateController, c.Name())
		}

		reg.names[c.Name()] = struct{}{}
		reg.controllers = append(reg.controllers, c)
	}
	return nil
}

// Controllers returns the registered controllers in registration order.
func (reg *Registry) Controllers() []Controller {
	out := make([]Controller, len(reg.controllers))
	copy(out, reg.controllers)
	return out
}

// MapControllers maps every controller and returns the first route
// registration error.
func (reg *Registry) MapControllers(r *mux.Router, spec *openapi.Spec) error {
	for _, c := range reg.controllers {
		c.MapRoutes(r, spec)
	}
	return r.Err()
}
