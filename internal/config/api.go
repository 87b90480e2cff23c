package config

import (
	"fmt"
	"os"

	"github.com/fathomline/taxa/pkg/formatting"
	"github.com/fathomline/taxa/pkg/middleware"
	"github.com/fathomline/taxa/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "TAXA_CORS_ENABLED",
	Origins:          "TAXA_CORS_ORIGINS",
	AllowedMethods:   "TAXA_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "TAXA_CORS_ALLOWED_HEADERS",
	AllowCredentials: "TAXA_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "TAXA_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "TAXA_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "TAXA_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, upload limits, CORS, and pagination
// settings. SyncMaxSize is the largest document the synchronous
// classify endpoint accepts; MaxUploadSize bounds async job uploads.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	SyncMaxSize   string                `toml:"sync_max_size"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
}

func (c *APIConfig) SyncMaxSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.SyncMaxSize)
	if err != nil {
		return 5 * 1024 * 1024
	}
	return size
}

func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 50 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.SyncMaxSize != "" {
		c.SyncMaxSize = overlay.SyncMaxSize
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.SyncMaxSize == "" {
		c.SyncMaxSize = "5MB"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("TAXA_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("TAXA_API_SYNC_MAX_SIZE"); v != "" {
		c.SyncMaxSize = v
	}
	if v := os.Getenv("TAXA_API_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
}

func (c *APIConfig) validate() error {
	if _, err := formatting.ParseBytes(c.SyncMaxSize); err != nil {
		return fmt.Errorf("invalid sync_max_size: %w", err)
	}
	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if c.SyncMaxSizeBytes() >= c.MaxUploadSizeBytes() {
		return fmt.Errorf("sync_max_size must be smaller than max_upload_size")
	}
	return nil
}
