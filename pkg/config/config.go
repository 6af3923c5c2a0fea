package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration from environment variables.
type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Mock    MockConfig
	OTEL    OTELConfig
}

type AppConfig struct {
	LogLevel  string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"STOREFRONT_LOG_FORMAT" default:"console"`
}

type APIConfig struct {
	// BaseURL is the root of the backend REST API, without a trailing slash.
	BaseURL string        `envconfig:"STOREFRONT_API_BASE_URL" default:"http://localhost:8000"`
	Timeout time.Duration `envconfig:"STOREFRONT_API_TIMEOUT" default:"10s"`
}

type SessionConfig struct {
	// TokenPath is where the bearer token is persisted across runs.
	// Empty means "<user config dir>/pizza-storefront/token".
	TokenPath string `envconfig:"STOREFRONT_TOKEN_PATH"`
}

type MockConfig struct {
	Addr string `envconfig:"STOREFRONT_MOCK_ADDR" default:"127.0.0.1:8000"`
}

type OTELConfig struct {
	Enabled               bool   `envconfig:"OTEL_METRICS_ENABLED" default:"false"`
	ExporterOTLPEndpoint  string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4318"`
	ExporterOTLPHeaders   string `envconfig:"OTEL_EXPORTER_OTLP_HEADERS" default:""`
	ExporterOTLPInsecure  bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	ServiceName           string `envconfig:"OTEL_SERVICE_NAME" default:"pizza-storefront"`
	ServiceVersion        string `envconfig:"OTEL_SERVICE_VERSION" default:"1.0.0"`
	DeploymentEnvironment string `envconfig:"OTEL_DEPLOYMENT_ENVIRONMENT" default:"development"`
}

// Load reads .env (when present) and parses the environment into a Config.
func Load() (*Config, error) {
	// .env is optional; only a malformed file is worth surfacing.
	if err := godotenv.Load(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// ResolveTokenPath returns the configured token path, deriving the
// per-user default when none is set.
func (c *Config) ResolveTokenPath() (string, error) {
	if c.Session.TokenPath != "" {
		return c.Session.TokenPath, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(dir, "pizza-storefront", "token"), nil
}
