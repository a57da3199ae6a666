// Package config provides YAML-based configuration loading for DesignFlow.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "5m" or "168h" decode
// directly.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped standard duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the top-level DesignFlow configuration, loaded from config.yaml.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	GitHub   GitHubConfig   `yaml:"github"`
	Sync     SyncConfig     `yaml:"sync"`
	Notify   NotifyConfig   `yaml:"notify"`
	Server   ServerConfig   `yaml:"server"`
}

// DatabaseConfig holds connection settings for the record store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

// GitHubConfig holds API access settings. The GITHUB_TOKEN environment
// variable overrides the token field when set.
type GitHubConfig struct {
	Token string `yaml:"token"`
}

// SyncConfig controls the background sync cadence. Schedule is a cron
// expression and takes precedence over Interval when both are set.
type SyncConfig struct {
	Interval   Duration `yaml:"interval"`
	Schedule   string   `yaml:"schedule"`
	StaleAfter Duration `yaml:"stale_after"`
}

// NotifyConfig selects notification adapters. Threshold is the minimum
// attention priority that triggers a notification.
type NotifyConfig struct {
	Threshold      int                  `yaml:"threshold"`
	DesktopCommand string               `yaml:"desktop_command"`
	SlackWebhook   string               `yaml:"slack_webhook"`
	DiscordWebhook DiscordWebhookConfig `yaml:"discord_webhook"`
}

// DiscordWebhookConfig identifies one Discord webhook endpoint.
type DiscordWebhookConfig struct {
	ID    string `yaml:"id"`
	Token string `yaml:"token"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Load reads a YAML config file from path and returns a validated Config.
// A missing file yields the defaults rather than an error, since every
// setting has a workable default or an environment override.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Parse(nil)
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse: %w", err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Token returns the effective GitHub token, preferring the GITHUB_TOKEN
// environment variable over the config file.
func (c *Config) Token() string {
	if env := os.Getenv("GITHUB_TOKEN"); env != "" {
		return env
	}
	return c.GitHub.Token
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "designflow.db"
	}
	if c.Sync.Interval == 0 {
		c.Sync.Interval = Duration(5 * time.Minute)
	}
	if c.Sync.StaleAfter == 0 {
		c.Sync.StaleAfter = Duration(14 * 24 * time.Hour)
	}
	if c.Notify.Threshold == 0 {
		c.Notify.Threshold = 4
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8321
	}
}

// validate checks that all present fields are consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("unknown database driver %q", c.Database.Driver))
	}
	if c.Database.Driver == "mysql" && c.Database.DSN == "" {
		errs = append(errs, "database.dsn is required for the mysql driver")
	}
	if c.Sync.Interval < 0 {
		errs = append(errs, "sync.interval must be positive")
	}
	if c.Sync.StaleAfter < 0 {
		errs = append(errs, "sync.stale_after must be positive")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if (c.Notify.DiscordWebhook.ID == "") != (c.Notify.DiscordWebhook.Token == "") {
		errs = append(errs, "notify.discord_webhook needs both id and token")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
