package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Storage StorageConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type APIConfig struct {
	// BaseURL is the fixed host/prefix all endpoint paths hang off of,
	// e.g. http://localhost:8000/auth/.
	BaseURL string `envconfig:"STOREFRONT_API_BASE_URL" required:"true"`

	// Timeout of zero keeps the transport's default behavior (no deadline).
	Timeout time.Duration `envconfig:"STOREFRONT_API_TIMEOUT" default:"0"`
}

func (a APIConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(a.BaseURL))
	if err != nil {
		return fmt.Errorf("invalid api base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("api base url must be absolute, got %q", a.BaseURL)
	}
	return nil
}

type StorageConfig struct {
	// Path locates the local durable-storage file that plays the role the
	// browser's localStorage plays for the hosted frontend.
	Path string `envconfig:"STOREFRONT_STORAGE_PATH" default:"storefront.db"`
}
