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
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT", "XRPUSDT"}, cfg.Symbols)
	assert.Len(t, cfg.Exchanges, 3)
	assert.Equal(t, 60*time.Second, cfg.ScanInterval)
	assert.Equal(t, 0.5, cfg.ProfitThreshold)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 10, cfg.RecentLimit)
	assert.Equal(t, "5000", cfg.HTTPPort)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SYMBOLS", " btcusdt, SOLUSDT ,,BTCUSDT")
	t.Setenv("SCAN_INTERVAL_SECONDS", "30")
	t.Setenv("PROFIT_THRESHOLD_PERCENT", "0.75")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "2.5")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("KUCOIN_URL", "http://kucoin.test/level1?symbol={symbol}")
	t.Setenv("PORT", "8080")
	t.Setenv("RECENT_LIMIT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"BTCUSDT", "SOLUSDT"}, cfg.Symbols)
	assert.Equal(t, 30*time.Second, cfg.ScanInterval)
	assert.Equal(t, 0.75, cfg.ProfitThreshold)
	assert.Equal(t, 2500*time.Millisecond, cfg.FetchTimeout)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "http://kucoin.test/level1?symbol={symbol}", cfg.Exchanges["kucoin"])
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 10, cfg.RecentLimit)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
symbols: [btcusdt, ethusdt]
exchanges:
  binance: http://binance.test/price?symbol={symbol}
  bybit: http://bybit.test/tickers?symbol={}
threshold_percent: 1.25
scan_interval: 2m
fetch_timeout: 3s
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SCAN_INTERVAL_SECONDS", "90")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, cfg.Symbols)
	assert.Len(t, cfg.Exchanges, 2)
	assert.Equal(t, "http://bybit.test/tickers?symbol={}", cfg.Exchanges["bybit"])
	assert.Equal(t, 1.25, cfg.ProfitThreshold)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	// Environment wins over the file.
	assert.Equal(t, 90*time.Second, cfg.ScanInterval)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("scan_interval: soon\n"), 0o600))
		t.Setenv("CONFIG_FILE", path)
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unknown storage driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "sqlite")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("single exchange", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "one.yaml")
		require.NoError(t, os.WriteFile(path, []byte("exchanges:\n  binance: http://b\n"), 0o600))
		t.Setenv("CONFIG_FILE", path)
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("negative threshold", func(t *testing.T) {
		t.Setenv("PROFIT_THRESHOLD_PERCENT", "-1")
		_, err := Load()
		assert.Error(t, err)
	})
}
