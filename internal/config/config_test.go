package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "http://localhost:8080", cfg.BackendURL)
	assert.Equal(t, "http", cfg.QuoteProvider)
	assert.Equal(t, 10*time.Second, cfg.QuotePollInterval)
	assert.Equal(t, 50, cfg.DefaultSlippageBps)
	assert.Equal(t, "SOL", cfg.NativeSymbol)
	assert.Equal(t, ":8090", cfg.ListenAddr)
	assert.False(t, cfg.DevMode)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://wallet.example.com")
	t.Setenv("QUOTE_POLL_INTERVAL", "5s")
	t.Setenv("DEFAULT_SLIPPAGE_BPS", "200")
	t.Setenv("DEV_MODE", "true")

	cfg := Load()
	assert.Equal(t, "https://wallet.example.com", cfg.BackendURL)
	assert.Equal(t, 5*time.Second, cfg.QuotePollInterval)
	assert.Equal(t, 200, cfg.DefaultSlippageBps)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "mock", cfg.QuoteProvider, "dev mode defaults to the mock provider")
}

func TestValidate(t *testing.T) {
	t.Setenv("DEV_MODE", "true")
	base := Load()
	require.NoError(t, base.Validate())

	bad := *base
	bad.QuoteProvider = "grpc"
	assert.Error(t, bad.Validate())

	bad = *base
	bad.QuotePollInterval = 100 * time.Millisecond
	assert.Error(t, bad.Validate())

	bad = *base
	bad.DefaultSlippageBps = 10000
	assert.Error(t, bad.Validate())

	bad = *base
	bad.DevMode = false
	bad.WalletAccount = ""
	assert.Error(t, bad.Validate())
}
