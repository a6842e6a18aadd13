package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8082, cfg.Server.Port)
	assert.Equal(t, "https://api.hyperliquid.xyz", cfg.Hyperliquid.BaseURL)
	assert.Equal(t, 1200, cfg.Hyperliquid.MaxWeightPerMinute)
	assert.Equal(t, 30000, cfg.Hyperliquid.CacheTTLMillis)
	assert.Equal(t, 10000, cfg.Hyperliquid.MaxWaitMillis)
	assert.Equal(t, 2, cfg.Hyperliquid.RequestWeights["clearinghouseState"])
	assert.Equal(t, 60, cfg.Hyperliquid.RequestWeights["userRole"])
	assert.Equal(t, "@every 5m", cfg.Refresh.CronSpec)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("WALLET_TRACKER_SERVER_PORT", "9000")
	t.Setenv("WALLET_TRACKER_HYPERLIQUID_MAX_WEIGHT_PER_MINUTE", "600")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 600, cfg.Hyperliquid.MaxWeightPerMinute)
}

func TestLoadConfigRejectsInvalidPort(t *testing.T) {
	t.Setenv("WALLET_TRACKER_SERVER_PORT", "99999")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}

func TestLoadConfigRejectsInvalidLogLevel(t *testing.T) {
	t.Setenv("WALLET_TRACKER_LOGGING_LEVEL", "verbose")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid logging level")
}
