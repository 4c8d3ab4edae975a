// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.twindex/config.yaml or ./config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Main configuration categories:
//   - Profile: path to the source JSON profile document
//   - Storage: PostgreSQL connection (see storage.go)
//   - Vector: Upstash Vector REST endpoint and token
//   - Pipeline: batch size and retry policy for vector upserts
//   - Serve: listen address and CORS origins for the query API
//
// Security: sensitive data (postgres password, vector token) is never
// logged; see MarshalJSON. Validation is fail-fast with sentinel errors
// usable via errors.Is (validation.go).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidProfilePath indicates the profile document path is empty.
	ErrInvalidProfilePath = errors.New("invalid profile path")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")

	// ErrMissingVectorURL indicates the Upstash Vector REST URL is not set.
	ErrMissingVectorURL = errors.New("missing vector REST URL")

	// ErrMissingVectorToken indicates the Upstash Vector REST token is not set.
	ErrMissingVectorToken = errors.New("missing vector REST token")

	// ErrInvalidBatchSize indicates the vector upsert batch size is out of range.
	ErrInvalidBatchSize = errors.New("invalid batch size")

	// ErrInvalidRetryAttempts indicates the retry attempt count is out of range.
	ErrInvalidRetryAttempts = errors.New("invalid retry attempts")
)

const (
	// DefaultEmbeddingModel is the model label recorded on persisted chunks.
	// The Upstash index computes the embeddings server-side with this model.
	DefaultEmbeddingModel = "mixbread-large"

	// DefaultBatchSize is the number of chunks upserted per vector batch.
	DefaultBatchSize = 10

	// DefaultRetryAttempts is the total number of attempts per vector batch.
	DefaultRetryAttempts = 3

	// DefaultRetryDelay is the base delay between vector batch retries.
	// Actual delay grows linearly: DefaultRetryDelay * attempt number.
	DefaultRetryDelay = time.Second
)

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
// When adding new sensitive fields (passwords, tokens), update MarshalJSON.
type Config struct {
	// Profile document
	ProfilePath string `mapstructure:"profile_path" json:"profile_path"`

	// Storage configuration (see storage.go for DSN builders)
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// Upstash Vector configuration
	VectorURL   string `mapstructure:"vector_url" json:"vector_url"`
	VectorToken string `mapstructure:"vector_token" json:"vector_token"` // SENSITIVE: masked in MarshalJSON

	// Pipeline configuration
	EmbeddingModel string        `mapstructure:"embedding_model" json:"embedding_model"`
	BatchSize      int           `mapstructure:"batch_size" json:"batch_size"`
	RetryAttempts  int           `mapstructure:"retry_attempts" json:"retry_attempts"`
	RetryDelay     time.Duration `mapstructure:"retry_delay" json:"retry_delay"`
	ResetIndex     bool          `mapstructure:"reset_index" json:"reset_index"`

	// Serve configuration
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
	TrustProxy  bool     `mapstructure:"trust_proxy" json:"trust_proxy"` // Trust X-Real-IP/X-Forwarded-For (behind reverse proxy)
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	// Configuration directory: ~/.twindex/
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".twindex")

	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	setDefaults(v)
	bindEnvVariables(v)

	// Read configuration file (if exists)
	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL overrides individual postgres_* settings
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	// Fail fast on invalid base configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("profile_path", "data/mytwin.json")

	// PostgreSQL defaults (matching docker-compose.yml)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "twindex")
	v.SetDefault("postgres_password", "twindex_dev_password")
	v.SetDefault("postgres_db_name", "twindex")
	v.SetDefault("postgres_ssl_mode", "disable")

	// Pipeline defaults
	v.SetDefault("embedding_model", DefaultEmbeddingModel)
	v.SetDefault("batch_size", DefaultBatchSize)
	v.SetDefault("retry_attempts", DefaultRetryAttempts)
	v.SetDefault("retry_delay", DefaultRetryDelay)
	v.SetDefault("reset_index", true)

	// CORS defaults (Next.js dev server)
	v.SetDefault("cors_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})

	v.SetDefault("trust_proxy", false)
}

// bindEnvVariables binds environment variables explicitly.
// The Upstash variables keep the names the hosted service documents.
func bindEnvVariables(v *viper.Viper) {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail).
	// If this panics, it's a BUG in our code, not a runtime error.
	mustBind := func(key string, envVars ...string) {
		args := append([]string{key}, envVars...)
		if err := v.BindEnv(args...); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q: %v", key, err))
		}
	}

	mustBind("vector_url", "UPSTASH_VECTOR_REST_URL")
	mustBind("vector_token", "UPSTASH_VECTOR_REST_TOKEN")

	mustBind("profile_path", "TWINDEX_PROFILE_PATH")
	mustBind("cors_origins", "TWINDEX_CORS_ORIGINS")
	mustBind("trust_proxy", "TWINDEX_TRUST_PROXY")
	mustBind("reset_index", "TWINDEX_RESET_INDEX")

	// NOTE: DATABASE_URL is handled separately in parseDatabaseURL because it
	// expands into several postgres_* fields rather than mapping to one key.
}

// maskedValue is the placeholder for masked sensitive data.
// Full-width blocks avoid accidental substring matches against real secrets.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging.
// Secrets of 8 chars or fewer are fully masked; longer secrets keep the
// first and last two characters for debug utility.
//
// THREAT MODEL: this defends against accidental logging of real secrets.
// If logs are compromised, rotate secrets.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
//
// Sensitive fields masked:
//   - PostgresPassword
//   - VectorToken
//
// When adding new sensitive fields, update this method. The config tests
// will remind you when they fail.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.PostgresPassword = maskSecret(a.PostgresPassword)
	a.VectorToken = maskSecret(a.VectorToken)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
