package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvAuthKeys        = "TAXA_AUTH_KEYS"
	EnvAuthAdminKeys   = "TAXA_AUTH_ADMIN_KEYS"
	EnvAuthRateLimit   = "TAXA_AUTH_RATE_LIMIT_PER_MINUTE"
	EnvAuthKeyCacheTTL = "TAXA_AUTH_KEY_CACHE_TTL"

	defaultRateLimit   = 60
	defaultKeyCacheTTL = "5m"
)

// AuthConfig holds API key authentication and rate limit settings.
// Keys and AdminKeys hold raw key values; they are hashed before use
// and never logged.
type AuthConfig struct {
	Keys               []string `toml:"keys"`
	AdminKeys          []string `toml:"admin_keys"`
	RateLimitPerMinute int      `toml:"rate_limit_per_minute"`
	KeyCacheTTL        string   `toml:"key_cache_ttl"`
}

// KeyCacheTTLDuration returns KeyCacheTTL as a time.Duration.
func (c *AuthConfig) KeyCacheTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.KeyCacheTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AuthConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *AuthConfig) Merge(overlay *AuthConfig) {
	if len(overlay.Keys) > 0 {
		c.Keys = overlay.Keys
	}
	if len(overlay.AdminKeys) > 0 {
		c.AdminKeys = overlay.AdminKeys
	}
	if overlay.RateLimitPerMinute != 0 {
		c.RateLimitPerMinute = overlay.RateLimitPerMinute
	}
	if overlay.KeyCacheTTL != "" {
		c.KeyCacheTTL = overlay.KeyCacheTTL
	}
}

func (c *AuthConfig) loadDefaults() {
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = defaultRateLimit
	}
	if c.KeyCacheTTL == "" {
		c.KeyCacheTTL = defaultKeyCacheTTL
	}
}

func (c *AuthConfig) loadEnv() {
	if v := os.Getenv(EnvAuthKeys); v != "" {
		c.Keys = splitKeys(v)
	}
	if v := os.Getenv(EnvAuthAdminKeys); v != "" {
		c.AdminKeys = splitKeys(v)
	}
	if v := os.Getenv(EnvAuthRateLimit); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv(EnvAuthKeyCacheTTL); v != "" {
		c.KeyCacheTTL = v
	}
}

func (c *AuthConfig) validate() error {
	if c.RateLimitPerMinute < 1 {
		return fmt.Errorf("invalid rate_limit_per_minute: %d", c.RateLimitPerMinute)
	}
	if _, err := time.ParseDuration(c.KeyCacheTTL); err != nil {
		return fmt.Errorf("invalid key_cache_ttl: %w", err)
	}
	return nil
}

func splitKeys(v string) []string {
	parts := strings.Split(v, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}
