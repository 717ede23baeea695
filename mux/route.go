package mux

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
)

// Route stores information to match a request and the endpoint metadata
// attached to it.
type Route struct {
	handler     http.Handler
	path        *pathRegexp
	methods     []string
	name        string
	err         error
	namedRoutes map[string]*Route
	metadata    map[any]any

	staticCtxOnce sync.Once
	staticCtx     *routeContext
}

// Match matches this route against the request. A path match with a
// method mismatch records ErrMethodMismatch on the match.
func (r *Route) Match(req *http.Request, match *RouteMatch) bool {
	if r.err != nil || r.path == nil {
		return false
	}

	vars, ok := r.path.match(req.URL.Path)
	if !ok {
		return false
	}

	if len(r.methods) > 0 && !slices.Contains(r.methods, req.Method) {
		match.MatchErr = ErrMethodMismatch
		return false
	}

	match.Route = r
	match.Handler = r.handler
	match.Vars = vars
	match.MatchErr = nil
	return true
}

// Handler sets a handler for the route.
func (r *Route) Handler(handler http.Handler) *Route {
	if r.err == nil {
		r.handler = handler
	}
	return r
}

// HandlerFunc sets a handler function for the route.
func (r *Route) HandlerFunc(f func(http.ResponseWriter, *http.Request)) *Route {
	return r.Handler(http.HandlerFunc(f))
}

// GetHandler returns the handler for the route, if any.
func (r *Route) GetHandler() http.Handler {
	return r.handler
}

// Name sets the name for the route. Names are unique per router.
func (r *Route) Name(name string) *Route {
	if r.err != nil {
		return r
	}
	if r.name != "" {
		r.err = fmt.Errorf("mux: route already has name %q, can't set %q", r.name, name)
		return r
	}
	if existing, ok := r.namedRoutes[name]; ok && existing != r {
		r.err = fmt.Errorf("%w: %q", ErrDuplicateRouteName, name)
		return r
	}
	r.name = name
	if r.namedRoutes != nil {
		r.namedRoutes[name] = r
	}
	return r
}

// GetName returns the name for the route, if any.
func (r *Route) GetName() string {
	return r.name
}

// Path sets the path template for the route per RFC 3986 Section 3.3.
func (r *Route) Path(tpl string) *Route {
	if r.err != nil {
		return r
	}
	r.path, r.err = newPathRegexp(tpl)
	return r
}

// Methods restricts the route to the given request methods.
// Calling Methods again replaces the previous list.
func (r *Route) Methods(methods ...string) *Route {
	r.methods = make([]string, len(methods))
	for i, m := range methods {
		r.methods[i] = strings.ToUpper(m)
	}
	return r
}

// WithMetadata attaches an endpoint metadata value to the route.
// Middleware reads it after matching through CurrentRoute.
func (r *Route) WithMetadata(key, value any) *Route {
	if r.metadata == nil {
		r.metadata = make(map[any]any)
	}
	r.metadata[key] = value
	return r
}

// Metadata returns the metadata value stored under key.
func (r *Route) Metadata(key any) (any, bool) {
	v, ok := r.metadata[key]
	return v, ok
}

// GetPathTemplate returns the template for the route path, if defined.
func (r *Route) GetPathTemplate() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if r.path == nil {
		return "", errors.New("mux: route doesn't have a path")
	}
	return r.path.template, nil
}

// GetMethods returns the methods the route matches against.
func (r *Route) GetMethods() ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	if len(r.methods) == 0 {
		return nil, errors.New("mux: route doesn't have methods")
	}
	return slices.Clone(r.methods), nil
}

// GetVarNames returns the names of the path variables in template order.
func (r *Route) GetVarNames() ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.path == nil {
		return nil, nil
	}
	names := make([]string, len(r.path.vars))
	for i, v := range r.path.vars {
		names[i] = v.name
	}
	return names, nil
}

// GetError returns the first error that occurred while building the route.
func (r *Route) GetError() error {
	return r.err
}
