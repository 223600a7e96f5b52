package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Wallet backend settings
	BackendURL   string
	SessionToken string
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// Quote settings
	QuoteProvider      string // "http" or "mock"
	QuotePollInterval  time.Duration
	DefaultSlippageBps int

	// Wallet settings
	WalletAccount string
	NativeSymbol  string

	// HTTP API settings
	ListenAddr string
	APIKey     string
	RateLimit  float64

	// Redis settings
	RedisAddr string

	// ClickHouse settings
	ClickHouseEnabled  bool
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// Dev mode relaxes auth and uses mock providers by default
	DevMode bool
}

func Load() *Config {
	dev := getBoolEnv("DEV_MODE", false)

	defaultProvider := "http"
	if dev {
		defaultProvider = "mock"
	}

	return &Config{
		// Backend
		BackendURL:   getEnv("BACKEND_URL", "http://localhost:8080"),
		SessionToken: getEnv("SESSION_TOKEN", ""),
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 3),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", 2*time.Second),

		// Quotes
		QuoteProvider:      getEnv("QUOTE_PROVIDER", defaultProvider),
		QuotePollInterval:  getDurationEnv("QUOTE_POLL_INTERVAL", 10*time.Second),
		DefaultSlippageBps: getIntEnv("DEFAULT_SLIPPAGE_BPS", 50),

		// Wallet
		WalletAccount: getEnv("WALLET_ACCOUNT", ""),
		NativeSymbol:  getEnv("NATIVE_SYMBOL", "SOL"),

		// API
		ListenAddr: getEnv("LISTEN_ADDR", ":8090"),
		APIKey:     getEnv("API_KEY", ""),
		RateLimit:  getFloatEnv("RATE_LIMIT", 20),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		// ClickHouse
		ClickHouseEnabled:  getBoolEnv("CLICKHOUSE_ENABLED", false),
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "swaps"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		DevMode: dev,
	}
}

// Validate catches configurations that cannot possibly work before anything
// connects out.
func (c *Config) Validate() error {
	switch c.QuoteProvider {
	case "http", "mock":
	default:
		return fmt.Errorf("invalid QUOTE_PROVIDER %q, want http or mock", c.QuoteProvider)
	}
	if c.QuoteProvider == "http" && c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL is required with the http quote provider")
	}
	if c.QuotePollInterval < time.Second {
		return fmt.Errorf("QUOTE_POLL_INTERVAL %s is below the 1s floor", c.QuotePollInterval)
	}
	if c.DefaultSlippageBps < 0 || c.DefaultSlippageBps >= 10000 {
		return fmt.Errorf("DEFAULT_SLIPPAGE_BPS %d out of range [0, 10000)", c.DefaultSlippageBps)
	}
	if c.WalletAccount == "" && !c.DevMode {
		return fmt.Errorf("WALLET_ACCOUNT is required outside dev mode")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
