// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional except the store path; missing values use defaults.
// Numeric knobs are pointers so an explicit 0 in the file (e.g.
// "max_snapshot_count": 0 to disable the cap) survives the defaults merge.
type Config struct {
	// Paths
	StorePath string `json:"store_path,omitempty" validate:"required"`
	RulesPath string `json:"rules_path,omitempty"` // optional custom extraction rules

	// Browser
	BrowserURL         string `json:"browser_url,omitempty"`
	SettleDelaySeconds *int   `json:"settle_delay_seconds,omitempty" validate:"omitempty,min=0,max=120"`

	// Ingestion
	MinContentLength *int `json:"min_content_length,omitempty" validate:"omitempty,min=0"`

	// Retention. Zero disables the corresponding prune rule.
	SnapshotRetentionDays   *int `json:"snapshot_retention_days,omitempty" validate:"omitempty,min=0"`
	MaxSnapshotCount        *int `json:"max_snapshot_count,omitempty" validate:"omitempty,min=0"`
	RecordRetentionDays     *int `json:"record_retention_days,omitempty" validate:"omitempty,min=0"`
	IncompleteThresholdDays *int `json:"incomplete_threshold_days,omitempty" validate:"omitempty,min=0"`

	// Behavior
	APIKey  string `json:"api_key,omitempty"` // letter generation
	Verbose bool   `json:"verbose,omitempty"`
}

func intp(n int) *int { return &n }

func intOrZero(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		StorePath:               filepath.Join("data", "jobscout.db"),
		BrowserURL:              "http://127.0.0.1:9222",
		SettleDelaySeconds:      intp(3),
		MinContentLength:        intp(1000),
		SnapshotRetentionDays:   intp(30),
		MaxSnapshotCount:        intp(50),
		RecordRetentionDays:     intp(0), // keep records forever
		IncompleteThresholdDays: intp(7),
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// MergeWithDefaults returns a new Config with unset fields filled from
// defaults. A numeric field set to 0 in the file is present, not unset,
// and is kept.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.StorePath == "" {
		result.StorePath = defaults.StorePath
	}
	if result.RulesPath == "" {
		result.RulesPath = defaults.RulesPath
	}
	if result.BrowserURL == "" {
		result.BrowserURL = defaults.BrowserURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}

	// Numeric fields: use default only when absent
	if result.SettleDelaySeconds == nil {
		result.SettleDelaySeconds = defaults.SettleDelaySeconds
	}
	if result.MinContentLength == nil {
		result.MinContentLength = defaults.MinContentLength
	}
	if result.SnapshotRetentionDays == nil {
		result.SnapshotRetentionDays = defaults.SnapshotRetentionDays
	}
	if result.MaxSnapshotCount == nil {
		result.MaxSnapshotCount = defaults.MaxSnapshotCount
	}
	if result.RecordRetentionDays == nil {
		result.RecordRetentionDays = defaults.RecordRetentionDays
	}
	if result.IncompleteThresholdDays == nil {
		result.IncompleteThresholdDays = defaults.IncompleteThresholdDays
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv overlays JOBSCOUT_* environment variables onto the config.
// Environment values win over file values.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("JOBSCOUT_STORE_PATH"); v != "" {
		c.StorePath = v
	}
	if v := os.Getenv("JOBSCOUT_RULES_PATH"); v != "" {
		c.RulesPath = v
	}
	if v := os.Getenv("JOBSCOUT_BROWSER_URL"); v != "" {
		c.BrowserURL = v
	}
	if v := os.Getenv("JOBSCOUT_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("JOBSCOUT_SETTLE_DELAY_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SettleDelaySeconds = intp(n)
		}
	}
	if v := os.Getenv("JOBSCOUT_MIN_CONTENT_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MinContentLength = intp(n)
		}
	}
	if v := os.Getenv("JOBSCOUT_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Verbose = b
		}
	}
}

// Validate checks the configuration using the struct tags.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// SettleDelay returns the settle delay as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(intOrZero(c.SettleDelaySeconds)) * time.Second
}

// MinContent returns the minimum acceptable capture length.
func (c *Config) MinContent() int {
	return intOrZero(c.MinContentLength)
}

// SnapshotCap returns the snapshot count cap; zero disables it.
func (c *Config) SnapshotCap() int {
	return intOrZero(c.MaxSnapshotCount)
}

// SnapshotRetention returns the snapshot retention window.
func (c *Config) SnapshotRetention() time.Duration {
	return retentionDays(c.SnapshotRetentionDays)
}

// RecordRetention returns the record retention window; zero keeps forever.
func (c *Config) RecordRetention() time.Duration {
	return retentionDays(c.RecordRetentionDays)
}

// IncompleteThreshold returns the age after which a record with no snapshots
// and no artifacts is considered abandoned.
func (c *Config) IncompleteThreshold() time.Duration {
	return retentionDays(c.IncompleteThresholdDays)
}

func retentionDays(n *int) time.Duration {
	return time.Duration(intOrZero(n)) * 24 * time.Hour
}
