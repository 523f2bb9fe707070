package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	config := NewDefaultConfig()
	require.NoError(t, config.Validate())

	assert.Equal(t, 3, config.Orchestrator.Concurrency)
	assert.Equal(t, 5*time.Second, config.Orchestrator.BatchDelay)
	assert.Equal(t, 24, config.Orchestrator.MaxAgeHours)
	assert.Equal(t, 0.80, config.Credibility.TopTierThreshold)
	assert.Equal(t, 2.0, config.Evaluation.NoiseThresholdPct)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero concurrency", func(c *Config) { c.Orchestrator.Concurrency = 0 }},
		{"zero max age", func(c *Config) { c.Orchestrator.MaxAgeHours = 0 }},
		{"bad port", func(c *Config) { c.Server.Port = -1 }},
		{"blend weights off", func(c *Config) { c.Credibility.LifetimeWeight = 0.9 }},
		{"inverted tiers", func(c *Config) { c.Credibility.RisingThreshold = 0.9 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestLoadFromFilesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "veritas.toml")
	content := `
[server]
port = 9090

[orchestrator]
concurrency = 5

[credibility]
top_tier_threshold = 0.85
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, 5, config.Orchestrator.Concurrency)
	assert.Equal(t, 0.85, config.Credibility.TopTierThreshold)
	// Untouched values keep their defaults
	assert.Equal(t, 24, config.Orchestrator.MaxAgeHours)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VERITAS_SERVER_PORT", "7070")
	t.Setenv("VERITAS_ORCHESTRATOR_MAX_TICKERS", "10")
	t.Setenv("VERITAS_EODHD_API_KEY", "demo-key")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, 10, config.Orchestrator.MaxTickers)
	assert.Equal(t, "demo-key", config.EODHD.APIKey)
}
