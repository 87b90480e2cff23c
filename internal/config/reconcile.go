package config

import (
	"os"
)

const (
	EnvReconcileSourceURL   = "TAXA_RECONCILE_SOURCE_URL"
	EnvReconcileSourceToken = "TAXA_RECONCILE_SOURCE_TOKEN"
	EnvReconcileSourceName  = "TAXA_RECONCILE_SOURCE_NAME"
)

// ReconcileConfig holds external tag source settings. SourceURL may be
// empty, in which case the sync endpoint reports the source as
// unconfigured.
type ReconcileConfig struct {
	SourceURL   string `toml:"source_url"`
	SourceToken string `toml:"source_token"`
	SourceName  string `toml:"source_name"`
}

// Finalize applies defaults and environment variable overrides.
func (c *ReconcileConfig) Finalize() error {
	if c.SourceName == "" {
		c.SourceName = "taxonomy"
	}
	if v := os.Getenv(EnvReconcileSourceURL); v != "" {
		c.SourceURL = v
	}
	if v := os.Getenv(EnvReconcileSourceToken); v != "" {
		c.SourceToken = v
	}
	if v := os.Getenv(EnvReconcileSourceName); v != "" {
		c.SourceName = v
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *ReconcileConfig) Merge(overlay *ReconcileConfig) {
	if overlay.SourceURL != "" {
		c.SourceURL = overlay.SourceURL
	}
	if overlay.SourceToken != "" {
		c.SourceToken = overlay.SourceToken
	}
	if overlay.SourceName != "" {
		c.SourceName = overlay.SourceName
	}
}
