package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, 60, cfg.DataSource.LookbackDays)
	assert.Equal(t, "1d", cfg.DataSource.Interval)
	assert.Equal(t, 5, cfg.Indicators.TailRows)
	assert.False(t, cfg.Indicators.Extended)
	assert.Equal(t, 60, cfg.Agent.MaxTurns)
	assert.Equal(t, "outputs/technical_analysis.md", cfg.Agent.OutputFile)
	assert.NoError(t, cfg.Validate())
	assert.Error(t, cfg.ValidateTelegram())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid config", func(*Config) {}, ""},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }, "not supported"},
		{"rest without base url", func(c *Config) { c.DataSource.Provider = "rest" }, "data_source.base_url is required"},
		{"non-positive lookback", func(c *Config) { c.DataSource.LookbackDays = -1 }, "lookback_days must be positive"},
		{"non-positive tail", func(c *Config) { c.Indicators.TailRows = -5 }, "tail_rows must be positive"},
		{"empty watchlist", func(c *Config) { c.Watchlist.Symbols = nil }, "watchlist.symbols"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlData := `
data_source:
  provider: rest
  base_url: http://localhost:9000
  lookback_days: 120
indicators:
  tail_rows: 10
  extended: true
watchlist:
  symbols: [MSFT, NVDA]
telegram:
  bot_token: file-token
  chat_id: "42"
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o644))

	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("WATCHLIST", "aapl, tsla ,")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rest", cfg.DataSource.Provider)
	assert.Equal(t, "http://localhost:9000", cfg.DataSource.BaseURL)
	assert.Equal(t, 120, cfg.DataSource.LookbackDays)
	assert.Equal(t, 10, cfg.Indicators.TailRows)
	assert.True(t, cfg.Indicators.Extended)
	assert.Equal(t, []string{"AAPL", "TSLA"}, cfg.Watchlist.Symbols)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "1d", cfg.DataSource.Interval)
	assert.NoError(t, cfg.Validate())
	assert.NoError(t, cfg.ValidateTelegram())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.ListenAddr, cfg.Server.ListenAddr)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_source: [unclosed"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Watchlist.Symbols = []string{"GOOG"}
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"GOOG"}, loaded.Watchlist.Symbols)
	assert.Equal(t, cfg.Schedule.ReportCron, loaded.Schedule.ReportCron)
}
