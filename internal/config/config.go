// Package config loads the service configuration from defaults, an optional
// YAML file, an optional .env file and WEBAPI_ environment variables.
package config

import (
	"time"

	"github.com/vitalvas/webapi/internal/logger"
)

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Config is the root configuration.
type Config struct {
	App     AppConfig     `yaml:"app" mapstructure:"app"`
	HTTP    HTTPConfig    `yaml:"http" mapstructure:"http"`
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
	Auth    AuthConfig    `yaml:"auth" mapstructure:"auth"`
}

// AppConfig identifies the running service.
type AppConfig struct {
	Name        string `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string `yaml:"version" mapstructure:"version"`
}

// IsDevelopment reports whether the service runs in the development
// environment.
func (c AppConfig) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// HTTPConfig configures the listener and the host-level middleware.
type HTTPConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port" validate:"min=0,max=65535"`

	// HTTPSPort is the port HTTPS redirection targets. Zero disables
	// redirection.
	HTTPSPort int `yaml:"https_port" mapstructure:"https_port" validate:"min=0,max=65535"`

	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" validate:"gt=0"`

	// MaxBodyBytes caps request bodies. Zero selects the 30 MB default.
	MaxBodyBytes int64 `yaml:"max_body_bytes" mapstructure:"max_body_bytes" validate:"min=0"`

	// ServerName is sent in the Server response header when set.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`
}

// AuthConfig configures JWT bearer validation.
type AuthConfig struct {
	// JWTSecret is the HMAC signing key. When empty a random key is
	// generated at startup.
	JWTSecret string        `yaml:"jwt_secret" mapstructure:"jwt_secret" validate:"omitempty,min=32"`
	Issuer    string        `yaml:"issuer" mapstructure:"issuer"`
	Audience  string        `yaml:"audience" mapstructure:"audience"`
	TokenTTL  time.Duration `yaml:"token_ttl" mapstructure:"token_ttl" validate:"gt=0"`
}

func defaults() map[string]any {
	return map[string]any{
		"app.name":              "webapi",
		"app.environment":       EnvProduction,
		"app.version":           "1.0.0",
		"http.host":             "",
		"http.port":             8080,
		"http.https_port":       0,
		"http.read_timeout":     15 * time.Second,
		"http.write_timeout":    30 * time.Second,
		"http.idle_timeout":     120 * time.Second,
		"http.shutdown_timeout": 10 * time.Second,
		"http.max_body_bytes":   int64(30 << 20),
		"http.server_name":      "",
		"logging.level":         "info",
		"logging.format":        logger.FormatJSON,
		"logging.output":        "stdout",
		"logging.no_color":      false,
		"logging.timestamp":     true,
		"logging.caller":        false,
		"auth.jwt_secret":       "",
		"auth.issuer":           "",
		"auth.audience":         "",
		"auth.token_ttl":        time.Hour,
	}
}
