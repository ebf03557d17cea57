package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPath_Defaults(t *testing.T) {
	cfg, err := LoadPath(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, cfg.Scoring.ComponentWeightSum(), 0.0001)
	assert.InDelta(t, 70.0, cfg.Alerts.MinScore, 0.001)
	assert.Equal(t, 15, cfg.Alerts.MaxPerDay)
	assert.True(t, cfg.ML.Enabled)
	assert.Equal(t, "https://api.rugcheck.xyz/v1", cfg.RugCheckAPI)
}

func TestLoadPath_YAMLOverridesKeepUnsetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scoring:
  security_weight: 0.40
  liquidity_weight: 0.10
alerts:
  min_score: 80
  categories:
    fast_sniper: false
`), 0o644))

	cfg, err := LoadPath(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.40, cfg.Scoring.SecurityWeight, 0.001)
	assert.InDelta(t, 0.10, cfg.Scoring.LiquidityWeight, 0.001)
	// Unset keys keep their defaults.
	assert.InDelta(t, 0.15, cfg.Scoring.HolderWeight, 0.001)
	assert.InDelta(t, 80.0, cfg.Alerts.MinScore, 0.001)
	assert.Equal(t, 15, cfg.Alerts.MaxPerDay)

	// Category keys are normalized to upper case.
	v, ok := cfg.Alerts.Categories["FAST_SNIPER"]
	assert.True(t, ok)
	assert.False(t, v)
}

func TestLoadPath_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scoring: [not a map"), 0o644))

	_, err := LoadPath(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{Scoring: DefaultScoring(), Alerts: DefaultAlerts()}
	}

	assert.NoError(t, base().Validate())

	cfg := base()
	cfg.Scoring.SecurityWeight = 0.5
	assert.Error(t, cfg.Validate(), "weights not summing to 1 must fail")

	cfg = base()
	cfg.Alerts.MaxPerDay = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Alerts.MinScore = 120
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.TelegramBotToken = "token"
	assert.Error(t, cfg.Validate(), "bot token without chat id must fail")
	cfg.TelegramChatID = "123"
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SCAN_INTERVAL", "45")
	t.Setenv("DB_PATH", "/tmp/custom.db")
	t.Setenv("ANALYZER_MAX_RETRIES", "5")

	cfg, err := LoadPath(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "45s", cfg.ScanInterval.String())
	assert.Equal(t, "/tmp/custom.db", cfg.DBPath)
	assert.Equal(t, 5, cfg.MaxRetries)
}

func TestNormalizeCategories(t *testing.T) {
	out := normalizeCategories(map[string]bool{" momentum ": true, "Safe": false})
	assert.Equal(t, map[string]bool{"MOMENTUM": true, "SAFE": false}, out)
	assert.Nil(t, normalizeCategories(nil))
}
