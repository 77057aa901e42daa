// Package config reads kbmirror's runtime configuration from environment
// variables, validating each value against the same min/max bounds idiom
// used throughout the codebase for tunable limits.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidValue is returned when an environment variable holds a value
// outside its accepted bounds or format.
var ErrInvalidValue = errors.New("invalid config value")

// Defaults.
const (
	DefaultSyncCron       = "0 3 * * *"
	DefaultSyncTimezone   = "UTC"
	DefaultStalenessHours = 24
	DefaultSyncEnabled    = true
	DefaultAuthEnabled    = false
	DefaultLogLevel       = "info"
	DefaultStructuredLogs = false
)

// Validation bounds.
const (
	MinStalenessHours = 1
	MaxStalenessHours = 24 * 30 // one month - beyond this, "staleness" stops being a useful signal
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Config is the process-wide runtime configuration, resolved once at
// startup from the environment.
type Config struct {
	AuthEnabled bool
	AuthToken   string

	SyncCron       string
	SyncTimezone   string
	StalenessHours int
	SyncEnabled    bool

	LogLevel       string
	StructuredLogs bool
}

// Load reads and validates configuration from the environment, applying
// package defaults for anything unset.
func Load() (*Config, error) {
	c := &Config{
		AuthEnabled:    DefaultAuthEnabled,
		AuthToken:      os.Getenv("AUTH_TOKEN"),
		SyncCron:       DefaultSyncCron,
		SyncTimezone:   DefaultSyncTimezone,
		StalenessHours: DefaultStalenessHours,
		SyncEnabled:    DefaultSyncEnabled,
		LogLevel:       DefaultLogLevel,
		StructuredLogs: DefaultStructuredLogs,
	}

	if v, ok := os.LookupEnv("AUTH_ENABLED"); ok {
		b, err := parseBool("AUTH_ENABLED", v)
		if err != nil {
			return nil, err
		}
		c.AuthEnabled = b
	}
	if c.AuthEnabled && c.AuthToken == "" {
		return nil, fmt.Errorf("%w: AUTH_ENABLED=true requires AUTH_TOKEN", ErrInvalidValue)
	}

	if v, ok := os.LookupEnv("SYNC_CRON"); ok && v != "" {
		c.SyncCron = v
	}
	if v, ok := os.LookupEnv("SYNC_TIMEZONE"); ok && v != "" {
		c.SyncTimezone = v
	}
	if v, ok := os.LookupEnv("STALENESS_HOURS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < MinStalenessHours || n > MaxStalenessHours {
			return nil, fmt.Errorf("%w: STALENESS_HOURS must be between %d and %d, got %q",
				ErrInvalidValue, MinStalenessHours, MaxStalenessHours, v)
		}
		c.StalenessHours = n
	}
	if v, ok := os.LookupEnv("SYNC_ENABLED"); ok {
		b, err := parseBool("SYNC_ENABLED", v)
		if err != nil {
			return nil, err
		}
		c.SyncEnabled = b
	}

	if v, ok := os.LookupEnv("LOG_LEVEL"); ok && v != "" {
		level := strings.ToLower(v)
		if !validLogLevels[level] {
			return nil, fmt.Errorf("%w: LOG_LEVEL must be one of debug|info|warn|error, got %q", ErrInvalidValue, v)
		}
		c.LogLevel = level
	}
	if v, ok := os.LookupEnv("STRUCTURED_LOGS"); ok {
		b, err := parseBool("STRUCTURED_LOGS", v)
		if err != nil {
			return nil, err
		}
		c.StructuredLogs = b
	}

	return c, nil
}

// LoadWithFile is Load, but first seeds the environment from an optional
// YAML file of defaults (AUTH_ENABLED, SYNC_CRON, STALENESS_HOURS, ...) -
// local-development sugar, not the authoritative config source. Environment
// variables already set take precedence over the file. An empty path skips
// the file entirely.
func LoadWithFile(path string) (*Config, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		var defaults map[string]string
		if err := yaml.Unmarshal(data, &defaults); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		for k, v := range defaults {
			if _, set := os.LookupEnv(k); !set {
				os.Setenv(k, v)
			}
		}
	}
	return Load()
}

func parseBool(name, v string) (bool, error) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false, got %q", ErrInvalidValue, name, v)
	}
	return b, nil
}
