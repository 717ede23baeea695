// Package startup configures the API services and the request pipeline.
//
// A host creates a Startup with the loaded configuration, calls
// ConfigureServices on a fresh Services registry, then Configure on a
// Pipeline built over the same registry, and serves the handler returned by
// Pipeline.Build.
package startup

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vitalvas/webapi/internal/auth"
	"github.com/vitalvas/webapi/internal/config"
	"github.com/vitalvas/webapi/internal/controllers"
	"github.com/vitalvas/webapi/internal/logger"
	"github.com/vitalvas/webapi/mux"
	"github.com/vitalvas/webapi/muxhandlers"
	"github.com/vitalvas/webapi/openapi"
)

// Document names and paths.
const (
	SwaggerDocumentName = "swagger"
	SwaggerDocumentPath = "/swagger/v1/swagger.json"
	SwaggerUIPath       = "/swagger"

	OpenAPIDocumentName = "v1"
	OpenAPIDocumentPath = "/openapi/v1/openapi.json"
	OpenAPIUIPath       = "/openapi"

	// BearerSchemeName is the OpenAPI security scheme of protected
	// operations.
	BearerSchemeName = "Bearer"
)

// Document metadata.
const (
	SwaggerTitle        = "NSwag WebApi"
	SwaggerDescription  = "ASP.NET Core Web API "
	SwaggerLicenseName  = "NSwag Api licensee"
	SwaggerLicenseURL   = "https://github.com"
	OpenAPIInitialTitle = "NSwag Test API (openapi)"
	OpenAPITitle        = "NSwag Test (openapi)"
	OpenAPIDescription  = "ASP.NET Core Web API v1.0 OpenAPI "
	OpenAPIGroup        = "1"
)

const seedForecasts = 5

// DevelopmentSubject is the subject of the token logged in development
// when no signing secret is configured.
const DevelopmentSubject = "developer"

// ErrNoSigningSecret is returned by IssueToken without auth.jwt_secret.
var ErrNoSigningSecret = errors.New("startup: auth.jwt_secret is required to issue tokens")

// Startup configures the services and the pipeline of the API.
type Startup struct {
	cfg *config.Config
	log *logger.Logger
}

// New returns a Startup for cfg. A nil log discards output.
func New(cfg *config.Config, log *logger.Logger) *Startup {
	if log == nil {
		log = logger.Nop()
	}
	return &Startup{cfg: cfg, log: log.WithComponent("startup")}
}

// Configuration returns the configuration the Startup was created with.
func (s *Startup) Configuration() *config.Config {
	return s.cfg
}

// ConfigureServices registers the controllers, the forwarded headers
// options, the two API documents, the token service and the operation
// metadata collector.
func (s *Startup) ConfigureServices(services *Services) error {
	store := controllers.NewForecastStore(
		controllers.GenerateForecasts(seedForecasts, time.Now(), rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))...,
	)
	if err := AddControllers(services, controllers.NewWeatherForecast(store, BearerSchemeName)); err != nil {
		return err
	}

	if err := Add(services, muxhandlers.ForwardedHeadersConfig{
		Headers: muxhandlers.ForwardedFor | muxhandlers.ForwardedProto,
	}); err != nil {
		return err
	}

	serializer := openapi.SerializerSettings{
		EnumHandling:      openapi.EnumAsString,
		NullValueHandling: openapi.NullIgnore,
		PropertyNaming:    openapi.NamingCamelCase,
	}
	typeMappers := []openapi.TypeMapper{
		openapi.PrimitiveTypeMapper[uuid.UUID](func(schema *openapi.Schema) {
			schema.Type = openapi.TypeString("string")
			schema.Format = "uuid"
		}),
	}

	if err := AddOpenAPIDocument(services, openapi.DocumentSettings{
		DocumentName: SwaggerDocumentName,
		Kind:         openapi.DocumentSwagger2,
		Title:        SwaggerTitle,
		Serializer:   serializer,
		TypeMappers:  typeMappers,
		PostProcess: func(doc *openapi.Document) {
			doc.Info.Description = SwaggerDescription
			doc.Info.License = &openapi.License{Name: SwaggerLicenseName, URL: SwaggerLicenseURL}
		},
	}); err != nil {
		return err
	}

	if err := AddOpenAPIDocument(services, openapi.DocumentSettings{
		DocumentName:  OpenAPIDocumentName,
		Title:         OpenAPIInitialTitle,
		APIGroupNames: []string{OpenAPIGroup},
		Serializer:    serializer,
		TypeMappers:   typeMappers,
		PostProcess: func(doc *openapi.Document) {
			doc.Info.Title = OpenAPITitle
			doc.Info.Description = OpenAPIDescription + doc.BaseURL()
		},
	}); err != nil {
		return err
	}

	tokens, err := newTokenService(s.cfg.Auth)
	if err != nil {
		return err
	}
	if tokens.GeneratedSecret() {
		if err := s.warnGeneratedSecret(tokens); err != nil {
			return err
		}
	}
	if err := Add(services, tokens); err != nil {
		return err
	}

	spec := GetOrAdd(services, openapi.NewSpec)
	spec.AddSecurityScheme(BearerSchemeName, &openapi.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
		Description:  "JWT bearer token",
	})

	s.log.Debug("services configured", logger.Fields("services", services.Types()))
	return nil
}

// Configure adds the pipeline stages in order: the developer exception
// page (development only), HTTPS redirection, routing, authorization,
// controller endpoints, the two documents and the two Swagger UI pages.
// Errors surface from Pipeline.Build.
func (s *Startup) Configure(p *Pipeline, env Environment) {
	services := p.Services()

	if env.IsDevelopment() {
		p.UseDeveloperExceptionPage(muxhandlers.DeveloperExceptionConfig{
			LogFunc: s.logPanic,
		})
	}

	p.UseHTTPSRedirection(muxhandlers.HTTPSRedirectConfig{
		HTTPSPort: s.cfg.HTTP.HTTPSPort,
		LogFunc: func(msg string) {
			s.log.Warn(msg)
		},
	})

	p.UseRouting()

	authz := muxhandlers.AuthorizationConfig{
		LogFunc: func(r *http.Request, err error) {
			s.log.Info("request not authorized", logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				logger.FieldRequestID, muxhandlers.RequestIDFromContext(r.Context()),
				logger.FieldError, err,
			))
		},
	}
	if tokens, ok := TryResolve[*auth.Service](services); ok {
		authz.DefaultPolicy = tokens.BearerPolicy()
	}
	p.UseAuthorization(authz)

	p.UseEndpoints(StageEndpoints, func(r *mux.Router) error {
		return MapControllers(services, r)
	})

	p.UseOpenAPI(openapi.OpenAPIConfig{DocumentName: SwaggerDocumentName, Path: SwaggerDocumentPath})
	p.UseOpenAPI(openapi.OpenAPIConfig{DocumentName: OpenAPIDocumentName, Path: OpenAPIDocumentPath})

	p.UseSwaggerUI(openapi.SwaggerUIConfig{Path: SwaggerUIPath, DocumentPath: SwaggerDocumentPath})
	p.UseSwaggerUI(openapi.SwaggerUIConfig{Path: OpenAPIUIPath, DocumentPath: OpenAPIDocumentPath})
}

// warnGeneratedSecret reports the per-process key. In development it also
// logs a token signed with it, since no other process can issue one.
func (s *Startup) warnGeneratedSecret(tokens *auth.Service) error {
	if !s.cfg.App.IsDevelopment() {
		s.log.Warn("no jwt secret configured, using a random key")
		return nil
	}

	token, err := tokens.Generate(DevelopmentSubject)
	if err != nil {
		return err
	}
	s.log.Warn("no jwt secret configured, using a random key", logger.Fields(
		"subject", DevelopmentSubject,
		"token", token,
	))
	return nil
}

func (s *Startup) logPanic(r *http.Request, err any, stack []byte) {
	s.log.Error("unhandled panic", logger.Fields(
		"method", r.Method,
		"path", r.URL.Path,
		logger.FieldRequestID, muxhandlers.RequestIDFromContext(r.Context()),
		"panic", fmt.Sprint(err),
		"stack", string(stack),
	))
}

// AddControllers registers controllers in the *controllers.Registry
// service, creating it when needed.
func AddControllers(services *Services, ctrls ...controllers.Controller) error {
	return GetOrAdd(services, controllers.NewRegistry).Add(ctrls...)
}

// MapControllers maps the registered controllers on r and describes them in
// the *openapi.Spec service.
func MapControllers(services *Services, r *mux.Router) error {
	registry, err := Resolve[*controllers.Registry](services)
	if err != nil {
		return err
	}
	return registry.MapControllers(r, GetOrAdd(services, openapi.NewSpec))
}

// AddOpenAPIDocument registers a document in the *openapi.Registry
// service, creating it when needed. Document names must be unique.
func AddOpenAPIDocument(services *Services, settings openapi.DocumentSettings) error {
	return GetOrAdd(services, openapi.NewRegistry).Add(settings)
}

// IssueToken signs a bearer token with the configured secret. Instances
// sharing the configuration accept it.
func IssueToken(cfg *config.Config, subject string, scopes ...string) (string, error) {
	if cfg.Auth.JWTSecret == "" {
		return "", ErrNoSigningSecret
	}

	tokens, err := newTokenService(cfg.Auth)
	if err != nil {
		return "", err
	}
	return tokens.Generate(subject, scopes...)
}

func newTokenService(cfg config.AuthConfig) (*auth.Service, error) {
	return auth.New(auth.Config{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
		TokenTTL: cfg.TokenTTL,
	})
}
