package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override file configuration.
const (
	EnvDBPath    = "QOBUZ_DB_PATH"
	EnvAuthToken = "QOBUZ_AUTH_TOKEN"
	EnvAppID     = "QOBUZ_APP_ID"
	EnvAPIBase   = "QOBUZ_API_BASE"
	EnvLogLevel  = "QBX_LOG_LEVEL"
)

// Config represents the application configuration loaded from a TOML file.
//
// It is built once in main and handed to constructors; nothing below cmd reads the environment.
type Config struct {
	Catalog  CatalogConfig  `toml:"catalog"`
	Database DatabaseConfig `toml:"database"`
	Sync     SyncConfig     `toml:"sync"`
	Log      LogConfig      `toml:"log"`
}

// CatalogConfig contains the catalog API endpoint, credentials, and client limits.
type CatalogConfig struct {
	APIBase        string  `toml:"api_base"`
	AppID          string  `toml:"app_id"`
	AuthToken      string  `toml:"auth_token"`
	UserAgent      string  `toml:"user_agent"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RateLimit      float64 `toml:"rate_limit"`
	MaxRetries     int     `toml:"max_retries"`
}

// Timeout returns the per-request timeout.
func (c CatalogConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RequireCredentials reports [ErrMissingCredentials] unless both the app id and auth token are set.
func (c CatalogConfig) RequireCredentials() error {
	if c.AppID == "" || c.AuthToken == "" {
		return fmt.Errorf("%w: set %s and %s", ErrMissingCredentials, EnvAppID, EnvAuthToken)
	}
	return nil
}

// Validate checks the catalog settings that do not depend on credentials.
func (c CatalogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.APIBase, validation.Required, is.URL),
		validation.Field(&c.TimeoutSeconds, validation.Required, validation.Min(1)),
		validation.Field(&c.RateLimit, validation.Required, validation.Min(0.1)),
		validation.Field(&c.MaxRetries, validation.Min(0), validation.Max(10)),
	)
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// Validate checks the database settings.
func (c DatabaseConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SyncConfig tunes the reconciliation run.
type SyncConfig struct {
	Workers         int  `toml:"workers"`
	RetryUnverified bool `toml:"retry_unverified"`
}

// Validate checks the sync settings.
func (c SyncConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Workers, validation.Required, validation.Min(1), validation.Max(16)),
	)
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Validate checks that the level is one charmbracelet/log understands.
func (c LogConfig) Validate() error {
	if _, err := log.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("level: %w", err)
	}
	return nil
}

// Validate validates every section and wraps failures with [ErrInvalidConfig].
func (c *Config) Validate() error {
	sections := []struct {
		name string
		v    validation.Validatable
	}{
		{"catalog", c.Catalog},
		{"database", c.Database},
		{"sync", c.Sync},
		{"log", c.Log},
	}
	for _, s := range sections {
		if err := s.v.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, s.name, err)
		}
	}
	return nil
}

// ApplyEnv overrides file values with any environment variables found through lookup.
//
// lookup is normally [os.LookupEnv]; tests pass a map-backed function.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDBPath); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := lookup(EnvAuthToken); ok && v != "" {
		c.Catalog.AuthToken = v
	}
	if v, ok := lookup(EnvAppID); ok && v != "" {
		c.Catalog.AppID = v
	}
	if v, ok := lookup(EnvAPIBase); ok && v != "" {
		c.Catalog.APIBase = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
}

// LogLevel returns the configured [log.Level], falling back to info.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// LoadConfig reads a TOML file on top of the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
