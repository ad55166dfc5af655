package server

import (
	"fmt"
	"time"
)

// Config holds configuration of the health server.
type Config struct {
	Enabled       bool          `yaml:"enabled" mapstructure:"enabled"`
	Host          string        `yaml:"host" mapstructure:"host"`
	Port          int           `yaml:"port" mapstructure:"port"`
	ReadTimeout   int           `yaml:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout  int           `yaml:"write_timeout" mapstructure:"write_timeout"` // seconds
	IdleTimeout   int           `yaml:"idle_timeout" mapstructure:"idle_timeout"`   // seconds
	HealthTimeout time.Duration `yaml:"health_timeout" mapstructure:"health_timeout"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	if c.HealthTimeout == 0 {
		c.HealthTimeout = 5 * time.Second
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("server.read_timeout must be non-negative (got: %d)", c.ReadTimeout)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("server.write_timeout must be non-negative (got: %d)", c.WriteTimeout)
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("server.idle_timeout must be non-negative (got: %d)", c.IdleTimeout)
	}
	if c.HealthTimeout < 0 {
		return fmt.Errorf("server.health_timeout must be non-negative (got: %s)", c.HealthTimeout)
	}
	return nil
}
