package config

import (
	"fmt"
	"os"
	"time"
)

const EnvTagsCacheTTL = "TAXA_TAGS_CACHE_TTL"

// TagsConfig holds taxonomy cache settings.
type TagsConfig struct {
	CacheTTL string `toml:"cache_ttl"`
}

// CacheTTLDuration returns CacheTTL as a time.Duration.
func (c *TagsConfig) CacheTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.CacheTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *TagsConfig) Finalize() error {
	if c.CacheTTL == "" {
		c.CacheTTL = "5m"
	}
	if v := os.Getenv(EnvTagsCacheTTL); v != "" {
		c.CacheTTL = v
	}
	if _, err := time.ParseDuration(c.CacheTTL); err != nil {
		return fmt.Errorf("invalid cache_ttl: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *TagsConfig) Merge(overlay *TagsConfig) {
	if overlay.CacheTTL != "" {
		c.CacheTTL = overlay.CacheTTL
	}
}
