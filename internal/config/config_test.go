package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"store_path": "data/test.db",
		"browser_url": "http://127.0.0.1:9333",
		"settle_delay_seconds": 5,
		"max_snapshot_count": 10,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "data/test.db", cfg.StorePath)
	assert.Equal(t, "http://127.0.0.1:9333", cfg.BrowserURL)
	require.NotNil(t, cfg.SettleDelaySeconds)
	assert.Equal(t, 5, *cfg.SettleDelaySeconds)
	require.NotNil(t, cfg.MaxSnapshotCount)
	assert.Equal(t, 10, *cfg.MaxSnapshotCount)
	assert.Nil(t, cfg.SnapshotRetentionDays, "absent fields stay unset")
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{StorePath: "custom.db", SettleDelaySeconds: intp(10)}
	merged := cfg.MergeWithDefaults(DefaultConfig())

	assert.Equal(t, "custom.db", merged.StorePath, "explicit value wins")
	assert.Equal(t, 10, *merged.SettleDelaySeconds)
	assert.Equal(t, "http://127.0.0.1:9222", merged.BrowserURL)
	assert.Equal(t, 1000, *merged.MinContentLength)
	assert.Equal(t, 30, *merged.SnapshotRetentionDays)
	assert.Equal(t, 50, *merged.MaxSnapshotCount)
	assert.Equal(t, 0, *merged.RecordRetentionDays, "records kept forever by default")
	assert.Equal(t, 7, *merged.IncompleteThresholdDays)
}

func TestMergeWithDefaults_ExplicitZeroSurvives(t *testing.T) {
	cfg := Config{
		StorePath:             "custom.db",
		SnapshotRetentionDays: intp(0),
		MaxSnapshotCount:      intp(0),
	}
	merged := cfg.MergeWithDefaults(DefaultConfig())

	assert.Equal(t, 0, *merged.SnapshotRetentionDays, "explicit zero disables the rule")
	assert.Equal(t, 0, *merged.MaxSnapshotCount)
	assert.Equal(t, time.Duration(0), merged.SnapshotRetention())
	assert.Equal(t, 0, merged.SnapshotCap())
	assert.Equal(t, 7, *merged.IncompleteThresholdDays, "absent field still merged")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("JOBSCOUT_STORE_PATH", "/tmp/env.db")
	t.Setenv("JOBSCOUT_SETTLE_DELAY_SECONDS", "12")
	t.Setenv("JOBSCOUT_VERBOSE", "true")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	assert.Equal(t, "/tmp/env.db", cfg.StorePath)
	assert.Equal(t, 12, *cfg.SettleDelaySeconds)
	assert.True(t, cfg.Verbose)
}

func TestApplyEnv_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("JOBSCOUT_SETTLE_DELAY_SECONDS", "not-a-number")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	assert.Equal(t, 3, *cfg.SettleDelaySeconds)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "missing store path", mutate: func(c *Config) { c.StorePath = "" }, wantErr: true},
		{name: "settle delay too large", mutate: func(c *Config) { c.SettleDelaySeconds = intp(121) }, wantErr: true},
		{name: "settle delay upper bound", mutate: func(c *Config) { c.SettleDelaySeconds = intp(120) }},
		{name: "negative retention", mutate: func(c *Config) { c.SnapshotRetentionDays = intp(-1) }, wantErr: true},
		{name: "unset numerics are fine", mutate: func(c *Config) { c.SettleDelaySeconds = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3*time.Second, cfg.SettleDelay())
	assert.Equal(t, 30*24*time.Hour, cfg.SnapshotRetention())
	assert.Equal(t, time.Duration(0), cfg.RecordRetention())
	assert.Equal(t, 7*24*time.Hour, cfg.IncompleteThreshold())
	assert.Equal(t, 1000, cfg.MinContent())
	assert.Equal(t, 50, cfg.SnapshotCap())

	empty := Config{}
	assert.Equal(t, time.Duration(0), empty.SettleDelay(), "nil knobs read as zero")
	assert.Equal(t, 0, empty.MinContent())
}
