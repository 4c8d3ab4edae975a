package config

import (
	"fmt"
	"strings"
)

// validSSLModes are the sslmode values accepted by libpq/pgx.
var validSSLModes = map[string]struct{}{
	"disable":     {},
	"allow":       {},
	"prefer":      {},
	"require":     {},
	"verify-ca":   {},
	"verify-full": {},
}

// Validate checks base configuration shared by every command.
// Returns sentinel errors wrapped with context; check with errors.Is.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if strings.TrimSpace(c.ProfilePath) == "" {
		return fmt.Errorf("%w: profile_path must not be empty", ErrInvalidProfilePath)
	}

	if strings.TrimSpace(c.PostgresHost) == "" {
		return fmt.Errorf("%w: postgres_host must not be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: postgres_port %d out of range [1, 65535]", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if strings.TrimSpace(c.PostgresDBName) == "" {
		return fmt.Errorf("%w: postgres_db_name must not be empty", ErrInvalidPostgresDBName)
	}
	if _, ok := validSSLModes[c.PostgresSSLMode]; !ok {
		return fmt.Errorf("%w: %q (expected one of disable, allow, prefer, require, verify-ca, verify-full)",
			ErrInvalidPostgresSSLMode, c.PostgresSSLMode)
	}

	if c.BatchSize < 1 || c.BatchSize > 1000 {
		return fmt.Errorf("%w: batch_size %d out of range [1, 1000]", ErrInvalidBatchSize, c.BatchSize)
	}
	if c.RetryAttempts < 1 || c.RetryAttempts > 10 {
		return fmt.Errorf("%w: retry_attempts %d out of range [1, 10]", ErrInvalidRetryAttempts, c.RetryAttempts)
	}

	return nil
}

// ValidateVector checks the Upstash Vector credentials.
// Required by the migrate and verify commands; the serve command runs the
// mock API without touching the vector index.
func (c *Config) ValidateVector() error {
	if c == nil {
		return ErrConfigNil
	}
	if strings.TrimSpace(c.VectorURL) == "" {
		return fmt.Errorf("%w: set UPSTASH_VECTOR_REST_URL or vector_url", ErrMissingVectorURL)
	}
	if strings.TrimSpace(c.VectorToken) == "" {
		return fmt.Errorf("%w: set UPSTASH_VECTOR_REST_TOKEN or vector_token", ErrMissingVectorToken)
	}
	return nil
}
