package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paaavkata/crypto-arbitrage-scanner/internal/exchange"
	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/database"
	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/utils"
	"gopkg.in/yaml.v3"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type Config struct {
	Database             database.Config
	StorageDriver        string
	Redis                RedisConfig
	Symbols              []string
	Exchanges            map[string]string
	ScanInterval         time.Duration
	ProfitThreshold      float64
	FetchTimeout         time.Duration
	MaxConcurrentSymbols int
	RecentLimit          int
	HTTPPort             string
}

// fileConfig is the optional YAML document named by CONFIG_FILE.
type fileConfig struct {
	Symbols          []string          `yaml:"symbols"`
	Exchanges        map[string]string `yaml:"exchanges"`
	ThresholdPercent *float64          `yaml:"threshold_percent"`
	ScanInterval     string            `yaml:"scan_interval"`
	FetchTimeout     string            `yaml:"fetch_timeout"`
}

func defaults() *Config {
	return &Config{
		Database: database.Config{
			DbUri: "postgres://localhost:5432/arbitrage?sslmode=disable",
		},
		StorageDriver: StoragePostgres,
		Redis: RedisConfig{
			TTL: 120 * time.Second,
		},
		Symbols:              []string{"BTCUSDT", "ETHUSDT", "XRPUSDT"},
		Exchanges:            exchange.DefaultEndpoints(),
		ScanInterval:         60 * time.Second,
		ProfitThreshold:      0.5,
		FetchTimeout:         5 * time.Second,
		MaxConcurrentSymbols: 4,
		RecentLimit:          10,
		HTTPPort:             "5000",
	}
}

// Load builds the configuration from defaults, the optional CONFIG_FILE and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if len(fc.Symbols) > 0 {
		c.Symbols = normalizeSymbols(fc.Symbols)
	}
	if len(fc.Exchanges) > 0 {
		c.Exchanges = fc.Exchanges
	}
	if fc.ThresholdPercent != nil {
		c.ProfitThreshold = *fc.ThresholdPercent
	}
	if fc.ScanInterval != "" {
		if c.ScanInterval, err = time.ParseDuration(fc.ScanInterval); err != nil {
			return fmt.Errorf("invalid scan_interval: %w", err)
		}
	}
	if fc.FetchTimeout != "" {
		if c.FetchTimeout, err = time.ParseDuration(fc.FetchTimeout); err != nil {
			return fmt.Errorf("invalid fetch_timeout: %w", err)
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Database.DbUri = getEnv("DB_URI", c.Database.DbUri)
	c.StorageDriver = getEnv("STORAGE_DRIVER", c.StorageDriver)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)
	c.Redis.TTL = getEnvSeconds("QUOTE_CACHE_TTL_SECONDS", c.Redis.TTL)

	if value := os.Getenv("SYMBOLS"); value != "" {
		c.Symbols = normalizeSymbols(strings.Split(value, ","))
	}

	for name, key := range map[string]string{
		exchange.BinanceName: "BINANCE_URL",
		exchange.KuCoinName:  "KUCOIN_URL",
		exchange.BybitName:   "BYBIT_URL",
	} {
		if value := os.Getenv(key); value != "" {
			c.Exchanges[name] = value
		}
	}

	c.ScanInterval = getEnvSeconds("SCAN_INTERVAL_SECONDS", c.ScanInterval)
	c.ProfitThreshold = getEnvFloat("PROFIT_THRESHOLD_PERCENT", c.ProfitThreshold)
	c.FetchTimeout = getEnvSeconds("FETCH_TIMEOUT_SECONDS", c.FetchTimeout)
	c.MaxConcurrentSymbols = getEnvInt("MAX_CONCURRENT_SYMBOLS", c.MaxConcurrentSymbols)
	c.RecentLimit = getEnvInt("RECENT_LIMIT", c.RecentLimit)
	c.HTTPPort = getEnv("PORT", c.HTTPPort)
}

func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one symbol must be configured")
	}
	if len(c.Exchanges) < 2 {
		return fmt.Errorf("at least two exchanges are required, got %d", len(c.Exchanges))
	}
	if c.ScanInterval <= 0 {
		return fmt.Errorf("scan interval must be positive")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if c.ProfitThreshold < 0 {
		return fmt.Errorf("profit threshold must not be negative")
	}
	if c.MaxConcurrentSymbols <= 0 {
		return fmt.Errorf("max concurrent symbols must be positive")
	}
	if c.RecentLimit <= 0 {
		return fmt.Errorf("recent limit must be positive")
	}
	switch c.StorageDriver {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	return nil
}

func normalizeSymbols(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	symbols := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		symbols = append(symbols, s)
	}
	return symbols
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := utils.ParseFloat(value); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := utils.ParseFloat(value); err == nil {
			return time.Duration(seconds * float64(time.Second))
		}
	}
	return defaultValue
}
