package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/webapi/internal/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "webapi", cfg.App.Name)
		assert.Equal(t, EnvProduction, cfg.App.Environment)
		assert.False(t, cfg.App.IsDevelopment())
		assert.Equal(t, 8080, cfg.HTTP.Port)
		assert.Zero(t, cfg.HTTP.HTTPSPort)
		assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
		assert.Equal(t, int64(30<<20), cfg.HTTP.MaxBodyBytes)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
		assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	})

	t.Run("yaml file", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		path := writeFile(t, dir, "custom.yml", `
app:
  environment: development
http:
  port: 9090
  https_port: 9443
  read_timeout: 5s
logging:
  level: debug
  format: console
`)

		cfg, err := Load(WithConfigFile(path))
		require.NoError(t, err)

		assert.True(t, cfg.App.IsDevelopment())
		assert.Equal(t, 9090, cfg.HTTP.Port)
		assert.Equal(t, 9443, cfg.HTTP.HTTPSPort)
		assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout)
		assert.Equal(t, 30*time.Second, cfg.HTTP.WriteTimeout)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "console", cfg.Logging.Format)
	})

	t.Run("config.yml is discovered", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		writeFile(t, dir, "config/config.yml", "app:\n  name: discovered\n")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "discovered", cfg.App.Name)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		path := writeFile(t, dir, "config.yml", "http:\n  port: 9090\n")

		t.Setenv("WEBAPI_HTTP_PORT", "7070")
		t.Setenv("WEBAPI_HTTP_HTTPS_PORT", "7443")
		t.Setenv("WEBAPI_AUTH_ISSUER", "https://issuer.example.com")

		cfg, err := Load(WithConfigFile(path))
		require.NoError(t, err)
		assert.Equal(t, 7070, cfg.HTTP.Port)
		assert.Equal(t, 7443, cfg.HTTP.HTTPSPort)
		assert.Equal(t, "https://issuer.example.com", cfg.Auth.Issuer)
	})

	t.Run("env file below process environment", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		writeFile(t, dir, ".env", "WEBAPI_APP_ENVIRONMENT=staging\nWEBAPI_HTTP_PORT=6060\nOTHER=ignored\n")

		t.Setenv("WEBAPI_HTTP_PORT", "5050")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, EnvStaging, cfg.App.Environment)
		assert.Equal(t, 5050, cfg.HTTP.Port)

		_, set := os.LookupEnv("WEBAPI_APP_ENVIRONMENT")
		assert.False(t, set)
	})

	t.Run("explicit env file", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		path := writeFile(t, dir, "local.env", "WEBAPI_LOGGING_LEVEL=warn\n")

		cfg, err := Load(WithEnvFile(path))
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})

	t.Run("missing explicit files", func(t *testing.T) {
		t.Chdir(t.TempDir())

		_, err := Load(WithConfigFile("nope.yml"))
		assert.ErrorIs(t, err, ErrConfigFile)

		_, err = Load(WithEnvFile("nope.env"))
		assert.ErrorIs(t, err, ErrConfigFile)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		path := writeFile(t, dir, "config.yml", "app: [unclosed\n")

		_, err := Load(WithConfigFile(path))
		assert.ErrorIs(t, err, ErrConfigFile)
	})

	t.Run("invalid environment", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("WEBAPI_APP_ENVIRONMENT", "qa")

		_, err := Load()
		require.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "app.environment: must be one of: development staging production")
	})

	t.Run("invalid logging", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("WEBAPI_LOGGING_FORMAT", "xml")

		_, err := Load()
		require.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "logging.format")
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			App:     AppConfig{Name: "webapi", Environment: EnvProduction},
			HTTP:    HTTPConfig{Port: 8080, ShutdownTimeout: time.Second},
			Logging: logger.Config{Level: "info", Format: logger.FormatJSON, Output: "stdout"},
			Auth:    AuthConfig{TokenTTL: time.Minute},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing name", func(c *Config) { c.App.Name = "" }, "app.name: is required"},
		{"port out of range", func(c *Config) { c.HTTP.Port = 70000 }, "http.port: must be at most 65535"},
		{"negative https port", func(c *Config) { c.HTTP.HTTPSPort = -1 }, "http.https_port: must be at least 0"},
		{"zero shutdown timeout", func(c *Config) { c.HTTP.ShutdownTimeout = 0 }, "http.shutdown_timeout"},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "auth.jwt_secret: must be at least 32"},
		{"long secret", func(c *Config) { c.Auth.JWTSecret = "0123456789abcdef0123456789abcdef" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "WEBAPI_HTTP_HTTPS_PORT", EnvName("http.https_port"))
	assert.Equal(t, "WEBAPI_APP_NAME", EnvName("app.name"))
}
