// Package config loads application configuration from a YAML file with
// environment variable overrides for deployment settings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all task-manage configuration.
type Config struct {
	// HTTP listen address, e.g. ":3000"
	Addr string `yaml:"addr"`

	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig selects the storage backend. The app runs on sqlite locally
// and on Postgres when DATABASE_URL is set, matching the deployment split.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite3 or postgres
	DSN    string `yaml:"dsn"`
}

// SessionConfig configures the cookie session store.
type SessionConfig struct {
	Secret string `yaml:"secret"`
	// MaxAge in seconds; default is one week.
	MaxAge int  `yaml:"max_age"`
	Secure bool `yaml:"secure"`
}

// AuthConfig configures credential handling.
type AuthConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Addr: ":3000",
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "./taskmanage.db",
		},
		Session: SessionConfig{
			Secret: "",
			MaxAge: 7 * 24 * 60 * 60,
			Secure: false,
		},
		Auth: AuthConfig{
			BcryptCost: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the config file at path, falling back to defaults when the file
// does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides lets deployment environment variables win over the file.
func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("TASKMANAGE_ADDR"); addr != "" {
		c.Addr = addr
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Addr = ":" + port
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Database.Driver = "postgres"
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		c.Session.Secret = secret
	}
}

// Validate checks that the configuration is usable for serving.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("session secret is required (set SESSION_SECRET)")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost %d out of range", c.Auth.BcryptCost)
	}
	return nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
