package jwt

import (
	"errors"
	"time"
)

// Config configures the token service. The secret is injected at construction
// time; nothing in this package reads process-wide state. Rotating the secret
// invalidates every outstanding token, which is acceptable because tokens are
// short-lived and there is no refresh mechanism.
type Config struct {
	// Secret is the HMAC-SHA256 signing key (required).
	Secret string `mapstructure:"secret"`

	// TTL is the token lifetime (default: 1h).
	TTL time.Duration `mapstructure:"ttl"`

	// Issuer is the "iss" claim (optional).
	Issuer string `mapstructure:"issuer"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.TTL == 0 {
		c.TTL = time.Hour
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("jwt: secret is required")
	}
	return nil
}
