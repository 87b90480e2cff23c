package queue

import (
	"fmt"
	"os"
	"time"
)

// Config holds Redis queue connection parameters.
type Config struct {
	URL         string `toml:"url"`
	Key         string `toml:"key"`
	PopTimeout  string `toml:"pop_timeout"`
	ConnTimeout string `toml:"conn_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	URL         string
	Key         string
	PopTimeout  string
	ConnTimeout string
}

// PopTimeoutDuration returns PopTimeout as a time.Duration.
func (c *Config) PopTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.PopTimeout)
	return d
}

// ConnTimeoutDuration returns ConnTimeout as a time.Duration.
func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.Key != "" {
		c.Key = overlay.Key
	}
	if overlay.PopTimeout != "" {
		c.PopTimeout = overlay.PopTimeout
	}
	if overlay.ConnTimeout != "" {
		c.ConnTimeout = overlay.ConnTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.URL == "" {
		c.URL = "redis://localhost:6379/0"
	}
	if c.Key == "" {
		c.Key = "taxa:jobs"
	}
	if c.PopTimeout == "" {
		c.PopTimeout = "5s"
	}
	if c.ConnTimeout == "" {
		c.ConnTimeout = "5s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.URL != "" {
		if v := os.Getenv(env.URL); v != "" {
			c.URL = v
		}
	}
	if env.Key != "" {
		if v := os.Getenv(env.Key); v != "" {
			c.Key = v
		}
	}
	if env.PopTimeout != "" {
		if v := os.Getenv(env.PopTimeout); v != "" {
			c.PopTimeout = v
		}
	}
	if env.ConnTimeout != "" {
		if v := os.Getenv(env.ConnTimeout); v != "" {
			c.ConnTimeout = v
		}
	}
}

func (c *Config) validate() error {
	if c.Key == "" {
		return fmt.Errorf("key required")
	}
	if _, err := time.ParseDuration(c.PopTimeout); err != nil {
		return fmt.Errorf("invalid pop_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.ConnTimeout); err != nil {
		return fmt.Errorf("invalid conn_timeout: %w", err)
	}
	return nil
}
