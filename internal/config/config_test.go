package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LevelSentinel/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PAIRS", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"kraken", "coinbase", "kucoin"}, cfg.Sources)
	assert.Equal(t, 0.02, cfg.Alert.Margin)
	assert.Equal(t, 0.03, cfg.Alert.ResetMargin)
	assert.Equal(t, 0, cfg.Alert.RecencyLimit)
	assert.Equal(t, 5*time.Minute, cfg.CycleInterval())
	assert.Equal(t, time.Second, cfg.PairDelay())
	assert.Equal(t, 30*time.Minute, cfg.PauseDuration())
	assert.Equal(t, 3, cfg.Pause.FailureThreshold)
	assert.Len(t, cfg.Timeframes, 3)
	assert.Equal(t, ":10000", cfg.Metrics.Addr)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: abc
  chat_id: "42"
sources: [bybit, kraken]
pairs: [BTC/USDT]
timeframes:
  - {label: 15m, minutes: 15}
alert:
  margin: 0.01
  reset_margin: 0.015
  recency_limit: 50
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.Telegram.BotToken)
	assert.Equal(t, []string{"bybit", "kraken"}, cfg.Sources)
	assert.Equal(t, []model.Timeframe{{Label: "15m", Minutes: 15}}, cfg.Timeframes)
	assert.Equal(t, 0.01, cfg.Alert.Margin)
	assert.Equal(t, 50, cfg.Alert.RecencyLimit)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "7")
	t.Setenv("PAIRS", "eth/usdt, SOL/USDT ,")
	t.Setenv("SOURCES", "coinbase")
	t.Setenv("ALERT_MARGIN", "0.005")
	t.Setenv("RESET_MARGIN", "0.01")
	t.Setenv("PORT", "8080")

	path := writeConfig(t, "telegram: {bot_token: from-file}\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Telegram.BotToken)
	assert.Equal(t, []string{"eth/usdt", "SOL/USDT"}, cfg.Pairs)
	assert.Equal(t, []string{"coinbase"}, cfg.Sources)
	assert.Equal(t, 0.005, cfg.Alert.Margin)
	assert.Equal(t, ":8080", cfg.Metrics.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadEnvNumber(t *testing.T) {
	t.Setenv("ALERT_MARGIN", "two percent")
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "pairs: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		cfg.Telegram.BotToken = "t"
		cfg.Telegram.ChatID = "c"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing token", func(c *Config) { c.Telegram.BotToken = "" }},
		{"missing chat", func(c *Config) { c.Telegram.ChatID = "" }},
		{"bad pair", func(c *Config) { c.Pairs = []string{"BTCUSDT"} }},
		{"no timeframes", func(c *Config) { c.Timeframes = nil }},
		{"zero minutes", func(c *Config) { c.Timeframes = []model.Timeframe{{Label: "x", Minutes: 0}} }},
		{"duplicate label", func(c *Config) {
			c.Timeframes = []model.Timeframe{{Label: "1h", Minutes: 60}, {Label: "1h", Minutes: 61}}
		}},
		{"unknown source", func(c *Config) { c.Sources = []string{"mtgox"} }},
		{"reset below margin", func(c *Config) { c.Alert.ResetMargin = 0.01 }},
		{"reset equals margin", func(c *Config) { c.Alert.ResetMargin = c.Alert.Margin }},
		{"negative margin", func(c *Config) { c.Alert.Margin = -0.01 }},
		{"negative recency", func(c *Config) { c.Alert.RecencyLimit = -5 }},
		{"zero threshold", func(c *Config) { c.Pause.FailureThreshold = 0 }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
