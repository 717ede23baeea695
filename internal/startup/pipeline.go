package startup

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vitalvas/webapi/mux"
	"github.com/vitalvas/webapi/muxhandlers"
	"github.com/vitalvas/webapi/openapi"
)

var (
	// ErrRoutingNotConfigured is returned when a stage that needs route
	// matching is added before UseRouting, or when Build runs without it.
	ErrRoutingNotConfigured = errors.New("startup: routing not configured")

	// ErrRoutingConfigured is returned when UseRouting is called twice.
	ErrRoutingConfigured = errors.New("startup: routing already configured")
)

// Stage names.
const (
	StageDeveloperExceptionPage = "developer-exception-page"
	StageHTTPSRedirection       = "https-redirection"
	StageRouting                = "routing"
	StageAuthorization          = "authorization"
	StageEndpoints              = "endpoints"
)

// Pipeline is the ordered request pipeline. Middleware added before
// UseRouting wraps the router and sees every request; middleware added
// after it runs only for matched routes and can read mux.CurrentRoute.
// Endpoint stages register routes and need UseRouting first.
//
// The first configuration error is kept and returned by Build.
type Pipeline struct {
	services *Services
	router   *mux.Router
	outer    []mux.MiddlewareFunc
	stages   []string
	routed   bool
	err      error
}

// NewPipeline returns an empty pipeline resolving its dependencies from
// services.
func NewPipeline(services *Services) *Pipeline {
	return &Pipeline{
		services: services,
		router:   mux.NewRouter(),
	}
}

// Services returns the registry the pipeline resolves from.
func (p *Pipeline) Services() *Services {
	return p.services
}

// Router returns the endpoint router.
func (p *Pipeline) Router() *mux.Router {
	return p.router
}

// Stages returns the stage names in configuration order.
func (p *Pipeline) Stages() []string {
	out := make([]string, len(p.stages))
	copy(out, p.stages)
	return out
}

// Err returns the first configuration error.
func (p *Pipeline) Err() error {
	return p.err
}

func (p *Pipeline) fail(stage string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("stage %s: %w", stage, err)
	}
}

// Use adds a named middleware stage.
func (p *Pipeline) Use(name string, mw mux.MiddlewareFunc) *Pipeline {
	p.stages = append(p.stages, name)

	if p.routed {
		p.router.Use(mw)
	} else {
		p.outer = append(p.outer, mw)
	}
	return p
}

// UseRouting marks the point where requests are matched to routes.
func (p *Pipeline) UseRouting() *Pipeline {
	p.stages = append(p.stages, StageRouting)

	if p.routed {
		p.fail(StageRouting, ErrRoutingConfigured)
		return p
	}
	p.routed = true
	return p
}

// UseEndpoints adds a stage registering routes on the router.
func (p *Pipeline) UseEndpoints(name string, register func(r *mux.Router) error) *Pipeline {
	p.stages = append(p.stages, name)

	if !p.routed {
		p.fail(name, ErrRoutingNotConfigured)
		return p
	}
	if err := register(p.router); err != nil {
		p.fail(name, err)
	}
	return p
}

// UseDeveloperExceptionPage renders panics as a detailed HTML page.
func (p *Pipeline) UseDeveloperExceptionPage(cfg muxhandlers.DeveloperExceptionConfig) *Pipeline {
	return p.Use(StageDeveloperExceptionPage, muxhandlers.DeveloperExceptionMiddleware(cfg))
}

// UseHTTPSRedirection redirects plain HTTP requests to HTTPS.
func (p *Pipeline) UseHTTPSRedirection(cfg muxhandlers.HTTPSRedirectConfig) *Pipeline {
	return p.Use(StageHTTPSRedirection, muxhandlers.HTTPSRedirectMiddleware(cfg))
}

// UseAuthorization enforces the policies of protected routes. It needs
// UseRouting first.
func (p *Pipeline) UseAuthorization(cfg muxhandlers.AuthorizationConfig) *Pipeline {
	if !p.routed {
		p.stages = append(p.stages, StageAuthorization)
		p.fail(StageAuthorization, ErrRoutingNotConfigured)
		return p
	}
	return p.Use(StageAuthorization, muxhandlers.AuthorizationMiddleware(cfg))
}

// UseOpenAPI serves a registered document. It resolves the *openapi.Spec
// and *openapi.Registry services.
func (p *Pipeline) UseOpenAPI(cfg openapi.OpenAPIConfig) *Pipeline {
	name := "openapi:" + cfg.DocumentName

	return p.UseEndpoints(name, func(r *mux.Router) error {
		spec, err := Resolve[*openapi.Spec](p.services)
		if err != nil {
			return err
		}
		documents, err := Resolve[*openapi.Registry](p.services)
		if err != nil {
			return err
		}

		_, err = openapi.UseOpenAPI(r, spec, documents, cfg)
		return err
	})
}

// UseSwaggerUI serves a Swagger UI page.
func (p *Pipeline) UseSwaggerUI(cfg openapi.SwaggerUIConfig) *Pipeline {
	path := cfg.Path
	if path == "" {
		path = "/swagger"
	}

	return p.UseEndpoints("swagger-ui:"+path, func(r *mux.Router) error {
		return openapi.UseSwaggerUI(r, cfg)
	})
}

// Build composes the pipeline into a handler. Stages added before routing
// wrap the router with the first stage outermost.
func (p *Pipeline) Build() (http.Handler, error) {
	if p.err != nil {
		return nil, p.err
	}
	if !p.routed {
		return nil, ErrRoutingNotConfigured
	}
	if err := p.router.Err(); err != nil {
		return nil, err
	}

	var handler http.Handler = p.router
	for i := len(p.outer) - 1; i >= 0; i-- {
		handler = p.outer[i](handler)
	}
	return handler, nil
}
