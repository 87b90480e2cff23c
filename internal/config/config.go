// Package config provides layered TOML configuration: base file,
// environment overlay, environment variable overrides, then validation.
package config

import (
	"fmt"
	"os"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/pelletier/go-toml/v2"

	"github.com/fathomline/taxa/pkg/database"
	"github.com/fathomline/taxa/pkg/queue"
	"github.com/fathomline/taxa/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvTaxaEnv             = "TAXA_ENV"
	EnvTaxaShutdownTimeout = "TAXA_SHUTDOWN_TIMEOUT"
	EnvTaxaVersion         = "TAXA_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "TAXA_DB_HOST",
	Port:            "TAXA_DB_PORT",
	Name:            "TAXA_DB_NAME",
	User:            "TAXA_DB_USER",
	Password:        "TAXA_DB_PASSWORD",
	SSLMode:         "TAXA_DB_SSL_MODE",
	MaxOpenConns:    "TAXA_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "TAXA_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "TAXA_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "TAXA_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "TAXA_STORAGE_CONTAINER_NAME",
	ConnectionString: "TAXA_STORAGE_CONNECTION_STRING",
}

var queueEnv = &queue.Env{
	URL:         "TAXA_QUEUE_URL",
	Key:         "TAXA_QUEUE_KEY",
	PopTimeout:  "TAXA_QUEUE_POP_TIMEOUT",
	ConnTimeout: "TAXA_QUEUE_CONN_TIMEOUT",
}

// Config is the root configuration for the Taxa service.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	Database        database.Config      `toml:"database"`
	Storage         storage.Config       `toml:"storage"`
	Queue           queue.Config         `toml:"queue"`
	API             APIConfig            `toml:"api"`
	Auth            AuthConfig           `toml:"auth"`
	Agent           gaconfig.AgentConfig `toml:"agent"`
	Tags            TagsConfig           `toml:"tags"`
	Worker          WorkerConfig         `toml:"worker"`
	Reconcile       ReconcileConfig      `toml:"reconcile"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the TAXA_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvTaxaEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Queue.Merge(&overlay.Queue)
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Agent.Merge(&overlay.Agent)
	c.Tags.Merge(&overlay.Tags)
	c.Worker.Merge(&overlay.Worker)
	c.Reconcile.Merge(&overlay.Reconcile)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Queue.Finalize(queueEnv); err != nil {
		return fmt.Errorf("queue: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Auth.Finalize(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := FinalizeAgent(&c.Agent); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.Tags.Finalize(); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	if err := c.Worker.Finalize(); err != nil {
		return fmt.Errorf("worker: %w", err)
	}
	if err := c.Reconcile.Finalize(); err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvTaxaShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvTaxaVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvTaxaEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
