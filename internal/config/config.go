package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendRemote   = "remote"
)

// Config holds all application configuration.
type Config struct {
	Backend  string          `envconfig:"STORE_BACKEND" default:"postgres"`
	TaxRate  decimal.Decimal `envconfig:"TAX_RATE" default:"0.15"`
	Server   ServerConfig    `envconfig:"SERVER"`
	Database DatabaseConfig  `envconfig:"DB"`
	Logger   LoggerConfig    `envconfig:"LOG"`
	Remote   RemoteConfig    `envconfig:"API"`
	Checkout CheckoutConfig  `envconfig:"CHECKOUT"`
	Auth     AuthConfig      `envconfig:"AUTH"`
	S3       S3Config        `envconfig:"S3"`
	Catalog  CatalogConfig   `envconfig:"CATALOG"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string `envconfig:"HOST" default:"localhost"`
	Port            int    `envconfig:"PORT" default:"5432"`
	User            string `envconfig:"USER" default:"postgres"`
	Password        string `envconfig:"PASSWORD"`
	Database        string `envconfig:"NAME" default:"phonestore"`
	MaxConnections  int    `envconfig:"MAX_CONNECTIONS" default:"25"`
	MinConnections  int    `envconfig:"MIN_CONNECTIONS" default:"5"`
	MaxConnLifetime int    `envconfig:"MAX_CONN_LIFETIME" default:"300"` // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"` // "json" or "console"
}

// RemoteConfig points the service at the storefront REST backend.
type RemoteConfig struct {
	BaseURL string        `envconfig:"BASE_URL"`
	Token   string        `envconfig:"TOKEN"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"15s"`
}

// CheckoutConfig controls the checkout saga.
type CheckoutConfig struct {
	// Compensate rolls back applied steps when a checkout fails midway.
	Compensate bool `envconfig:"COMPENSATE" default:"true"`
}

// AuthConfig holds access guard configuration.
type AuthConfig struct {
	BackofficeRoles []string `envconfig:"BACKOFFICE_ROLES" default:"ADMIN"`
	LoginPath       string   `envconfig:"LOGIN_PATH" default:"/auth/login"`
	DashboardPath   string   `envconfig:"DASHBOARD_PATH" default:"/dashboard"`
	// JWTSecret enables HS256 signature checks. Without it tokens are only
	// decoded, and the storefront backend is trusted to reject bad ones.
	JWTSecret string `envconfig:"JWT_SECRET"`
}

// S3Config holds AWS S3 configuration for catalogue files.
type S3Config struct {
	Enabled bool   `envconfig:"ENABLED"`
	Bucket  string `envconfig:"BUCKET"`
	Region  string `envconfig:"REGION" default:"us-east-1"`
	Prefix  string `envconfig:"PREFIX" default:"catalog/"`
}

// CatalogConfig locates the catalogue seed file.
type CatalogConfig struct {
	File    string `envconfig:"FILE" default:"data/catalog.csv.gz"`
	Workers int    `envconfig:"WORKERS" default:"8"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Backend {
	case BackendPostgres:
		if err := c.Database.Validate(); err != nil {
			return err
		}
	case BackendRemote:
		if c.Remote.BaseURL == "" {
			return fmt.Errorf("API base URL is required for the remote backend")
		}
		u, err := url.Parse(c.Remote.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid API base URL: %s", c.Remote.BaseURL)
		}
	default:
		return fmt.Errorf("invalid store backend: %s (must be postgres or remote)", c.Backend)
	}

	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("invalid tax rate: %s (must be in [0, 1))", c.TaxRate)
	}

	if len(c.Auth.BackofficeRoles) == 0 {
		return fmt.Errorf("at least one back-office role is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Catalog.Workers < 1 {
		return fmt.Errorf("catalog workers must be at least 1")
	}

	return nil
}

// Validate checks the connection settings of the PostgreSQL backend.
func (c *DatabaseConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Port)
	}
	if c.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}
	if c.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}
	if c.MinConnections > c.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}
	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
