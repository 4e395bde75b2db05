package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 100000.0, cfg.Trading.MaxPositionValue)
	assert.Equal(t, 0.02, cfg.Trading.RiskPerTrade)
	assert.Equal(t, 5000.0, cfg.Trading.MaxDailyLoss)
	assert.Equal(t, "09:15", cfg.Trading.TradingHoursStart)
	assert.Equal(t, "15:30", cfg.Trading.TradingHoursEnd)
	assert.Equal(t, 50, cfg.Trading.LotSizes["NIFTY"])
	assert.Equal(t, 15, cfg.Trading.LotSizes["BANKNIFTY"])
	assert.Equal(t, time.Minute, cfg.Monitoring.WatchInterval)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MAX_POSITION_SIZE", "250000")
	t.Setenv("RISK_PER_TRADE", "0.01")
	t.Setenv("KITE_API_KEY", "key")
	t.Setenv("WATCH_INTERVAL", "30s")

	cfg := Load()

	assert.Equal(t, 250000.0, cfg.Trading.MaxPositionValue)
	assert.Equal(t, 0.01, cfg.Trading.RiskPerTrade)
	assert.Equal(t, "key", cfg.Kite.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Monitoring.WatchInterval)
}

func TestLoad_BadEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("MAX_DAILY_LOSS", "not-a-number")

	cfg := Load()
	assert.Equal(t, 5000.0, cfg.Trading.MaxDailyLoss)
}

func TestApplyRiskFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "risk.yaml")
	body := `
max_position_value: 200000
lot_sizes:
  NIFTY: 75
  RELIANCE: 1
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg := Load()
	require.NoError(t, cfg.ApplyRiskFile(path))

	assert.Equal(t, 200000.0, cfg.Trading.MaxPositionValue)
	assert.Equal(t, 0.02, cfg.Trading.RiskPerTrade, "unset field keeps default")
	assert.Equal(t, 75, cfg.Trading.LotSizes["NIFTY"])
	assert.Equal(t, 1, cfg.Trading.LotSizes["RELIANCE"])
	assert.Equal(t, 15, cfg.Trading.LotSizes["BANKNIFTY"], "unlisted symbols keep defaults")
}

func TestApplyRiskFile_Missing(t *testing.T) {
	cfg := Load()
	assert.Error(t, cfg.ApplyRiskFile(filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestRiskParameters_Copy(t *testing.T) {
	cfg := Load()
	params := cfg.RiskParameters()

	params.LotSizes["NIFTY"] = 1
	assert.Equal(t, 50, cfg.Trading.LotSizes["NIFTY"], "parameters hold an independent copy")
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.Kite.APIKey = "key"
	cfg.Kite.APISecret = "secret"
	require.NoError(t, cfg.Validate())

	cfg.Trading.RiskPerTrade = 1.5
	assert.Error(t, cfg.Validate())

	cfg.Trading.RiskPerTrade = 0.02
	cfg.Kite.APISecret = ""
	assert.Error(t, cfg.Validate())
}
