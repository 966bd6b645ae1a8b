// Package config loads the service configuration from an optional YAML file,
// an optional .env file, and TASKD_-prefixed environment variables, with the
// environment taking precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/taskd/internal/auth/jwt"
	"github.com/kbukum/taskd/internal/auth/password"
	"github.com/kbukum/taskd/internal/logger"
	"github.com/kbukum/taskd/internal/server"
	"github.com/kbukum/taskd/internal/store"
)

// Observability configures optional OTLP export. Tracing and metrics stay
// disabled while Endpoint is empty.
type Observability struct {
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// Config is the full service configuration.
type Config struct {
	Environment   string          `yaml:"environment" mapstructure:"environment"`
	Server        server.Config   `yaml:"server" mapstructure:"server"`
	Store         store.Config    `yaml:"store" mapstructure:"store"`
	JWT           jwt.Config      `yaml:"jwt" mapstructure:"jwt"`
	Password      password.Config `yaml:"password" mapstructure:"password"`
	Logging       logger.Config   `yaml:"logging" mapstructure:"logging"`
	Observability Observability   `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills unset fields across all sections.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	c.Server.ApplyDefaults()
	c.Store.ApplyDefaults()
	c.JWT.ApplyDefaults()
	c.Password.ApplyDefaults()
	c.Logging.ApplyDefaults()
	if c.Observability.SampleRate == 0 {
		c.Observability.SampleRate = 1.0
	}
}

// Validate checks every section. The JWT secret has no default: the service
// refuses to start without one rather than signing tokens with a known key.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.JWT.Validate(); err != nil {
		return err
	}
	if err := c.Password.Validate(); err != nil {
		return err
	}
	return nil
}

// Load reads configuration for the service. Resolution order, lowest to
// highest precedence: built-in defaults, config.yml (if present), .env file
// (if present), then TASKD_-prefixed environment variables.
func Load() (*Config, error) {
	// .env is a development convenience; absence is not an error.
	for _, path := range []string{".env", "cmd/taskd/.env"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return nil, fmt.Errorf("loading %s: %w", path, err)
			}
			break
		}
	}

	v := viper.New()
	v.SetEnvPrefix("TASKD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, path := range []string{"config.yml", "cmd/taskd/config.yml"} {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading %s: %w", path, err)
			}
			break
		}
	}

	bindEnvKeys(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindEnvKeys registers every config key with viper so AutomaticEnv finds the
// corresponding TASKD_ variable even when no config file supplies the key.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"environment",
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"store.dsn",
		"store.max_open_conns",
		"store.max_idle_conns",
		"store.max_retries",
		"store.log_level",
		"jwt.secret",
		"jwt.ttl",
		"jwt.issuer",
		"password.bcrypt_cost",
		"logging.level",
		"logging.format",
		"logging.output",
		"observability.endpoint",
		"observability.insecure",
		"observability.sample_rate",
	}
	for _, key := range keys {
		// BindEnv only fails on an empty key.
		_ = v.BindEnv(key)
	}
}
