package password

import "fmt"

// Config configures password hashing behavior.
type Config struct {
	// BcryptCost is the bcrypt cost parameter (default: 12, range: 4-31).
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost must be between 4 and 31 (got: %d)", c.BcryptCost)
	}
	return nil
}

// NewHasher creates a Hasher from configuration.
func NewHasher(cfg Config) Hasher {
	cfg.ApplyDefaults()
	return NewBcryptHasher(WithCost(cfg.BcryptCost))
}
