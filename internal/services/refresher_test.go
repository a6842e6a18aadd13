package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hyperfolio/wallet-tracker/internal/config"
	"github.com/hyperfolio/wallet-tracker/internal/hyperliquid"
	"github.com/hyperfolio/wallet-tracker/internal/temporal"
)

func newTestRefresher(cfg config.RefreshConfig) *Refresher {
	client := hyperliquid.NewClient(
		config.HyperliquidConfig{
			BaseURL:            "http://localhost:1",
			MaxWeightPerMinute: 1200,
			CacheTTLMillis:     30000,
			MaxWaitMillis:      10000,
			DefaultWeight:      20,
			WeightBatchSize:    20,
		},
		http.DefaultClient,
		temporal.NewClock(),
		zap.NewNop(),
	)
	return NewRefresher(cfg, client, nil, NewEventBus(), zap.NewNop())
}

func TestRefresherStartDisabled(t *testing.T) {
	r := newTestRefresher(config.RefreshConfig{Enabled: false})
	require.NoError(t, r.Start())
}

func TestRefresherStartRejectsBadCronSpec(t *testing.T) {
	r := newTestRefresher(config.RefreshConfig{Enabled: true, CronSpec: "not a cron spec"})

	err := r.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid refresh cron spec")
}

func TestRefresherStartAndStop(t *testing.T) {
	r := newTestRefresher(config.RefreshConfig{Enabled: true, CronSpec: "@every 1h", Timeout: 1})
	require.NoError(t, r.Start())
	r.Stop()
}
