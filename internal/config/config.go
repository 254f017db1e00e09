// Package config provides configuration loading for congresscal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Listen    string          `yaml:"listen"`
	Timezone  string          `yaml:"timezone"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Languages LanguagesConfig `yaml:"languages"`
	Invites   InvitesConfig   `yaml:"invites"`
}

// SnapshotConfig configures the raw event collection and localization table
// sources. URLs may be http(s) URLs or local file paths.
type SnapshotConfig struct {
	EventsURL   string        `yaml:"events_url"`
	StringsURL  string        `yaml:"strings_url"`
	RefreshCron string        `yaml:"refresh_cron"`
	Timeout     time.Duration `yaml:"timeout"`
}

// LanguagesConfig configures the closed set of supported display languages.
type LanguagesConfig struct {
	Default   string   `yaml:"default"`
	Supported []string `yaml:"supported"`
}

// InvitesConfig configures calendar-invite generation.
type InvitesConfig struct {
	ReminderDays []int `yaml:"reminder_days"`
}

// Load reads configuration from the default location
// (~/.config/congresscal/config.yaml).
func Load() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("get config dir: %w", err)
	}

	path := filepath.Join(configDir, "congresscal", "config.yaml")
	return LoadFrom(path)
}

// LoadFrom reads configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	path = expandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults sets default values for unspecified config options.
func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Snapshot.RefreshCron == "" {
		c.Snapshot.RefreshCron = "*/15 * * * *"
	}
	if c.Snapshot.Timeout == 0 {
		c.Snapshot.Timeout = 30 * time.Second
	}
	if c.Languages.Default == "" {
		c.Languages.Default = "en"
	}
	if len(c.Languages.Supported) == 0 {
		c.Languages.Supported = []string{c.Languages.Default}
	}
	if len(c.Invites.ReminderDays) == 0 {
		c.Invites.ReminderDays = []int{30, 7, 1}
	}
}

func (c *Config) validate() error {
	if c.Snapshot.EventsURL == "" {
		return fmt.Errorf("snapshot.events_url is required")
	}
	if c.Snapshot.StringsURL == "" {
		return fmt.Errorf("snapshot.strings_url is required")
	}
	for _, d := range c.Invites.ReminderDays {
		if d <= 0 {
			return fmt.Errorf("invites.reminder_days must be positive, got %d", d)
		}
	}
	return nil
}

// Location resolves the configured timezone, defaulting to the system local
// timezone. This is only the server-side fallback for "today"; viewers may
// send their own civil date per request.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// UnmarshalYAML implements custom unmarshaling for the snapshot section so
// the timeout can be written as a duration string.
func (c *SnapshotConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		EventsURL   string `yaml:"events_url"`
		StringsURL  string `yaml:"strings_url"`
		RefreshCron string `yaml:"refresh_cron"`
		Timeout     string `yaml:"timeout"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	c.EventsURL = raw.EventsURL
	c.StringsURL = raw.StringsURL
	c.RefreshCron = raw.RefreshCron

	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("parse snapshot timeout: %w", err)
		}
		c.Timeout = d
	}
	return nil
}
