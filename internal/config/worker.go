package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvWorkerConcurrency = "TAXA_WORKER_CONCURRENCY"
	EnvWorkerEnabled     = "TAXA_WORKER_ENABLED"
)

// WorkerConfig holds queue consumer settings. Disabled turns the
// embedded consumer off so a deployment can run API-only instances
// alongside dedicated workers.
type WorkerConfig struct {
	Concurrency int  `toml:"concurrency"`
	Disabled    bool `toml:"disabled"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *WorkerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *WorkerConfig) Merge(overlay *WorkerConfig) {
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.Disabled {
		c.Disabled = true
	}
}

func (c *WorkerConfig) loadDefaults() {
	if c.Concurrency == 0 {
		c.Concurrency = 4
	}
}

func (c *WorkerConfig) loadEnv() {
	if v := os.Getenv(EnvWorkerConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency = n
		}
	}
	if v := os.Getenv(EnvWorkerEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Disabled = !enabled
		}
	}
}

func (c *WorkerConfig) validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("invalid concurrency: %d", c.Concurrency)
	}
	return nil
}
