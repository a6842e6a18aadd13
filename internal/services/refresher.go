package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hyperfolio/wallet-tracker/internal/config"
	"github.com/hyperfolio/wallet-tracker/internal/database"
	"github.com/hyperfolio/wallet-tracker/internal/hyperliquid"
)

// statsWindow is how far back the refresh looks when recomputing wallet
// headline stats.
const statsWindow = 30 * 24 * time.Hour

// WalletStore is the slice of the repository the refresher needs.
type WalletStore interface {
	ListWallets(ctx context.Context) ([]database.TrackedWallet, error)
	UpdateWalletStats(ctx context.Context, wallet *database.TrackedWallet) error
}

// Refresher periodically re-polls every tracked wallet through the API
// client, persists the refreshed headline numbers and publishes
// wallet_refreshed events. Polling through the client also keeps its
// response cache warm for the interactive endpoints.
type Refresher struct {
	cfg      config.RefreshConfig
	client   *hyperliquid.Client
	store    WalletStore
	eventBus *EventBus
	logger   *zap.Logger
	cron     *cron.Cron
}

// NewRefresher creates a refresher; call Start to begin the schedule.
func NewRefresher(
	cfg config.RefreshConfig,
	client *hyperliquid.Client,
	store WalletStore,
	eventBus *EventBus,
	logger *zap.Logger,
) *Refresher {
	return &Refresher{
		cfg:      cfg,
		client:   client,
		store:    store,
		eventBus: eventBus,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start registers the cron schedule and launches it.
func (r *Refresher) Start() error {
	if !r.cfg.Enabled {
		r.logger.Info("wallet refresh disabled")
		return nil
	}

	if _, err := r.cron.AddFunc(r.cfg.CronSpec, r.RefreshAll); err != nil {
		return fmt.Errorf("invalid refresh cron spec %q: %w", r.cfg.CronSpec, err)
	}

	r.cron.Start()
	r.logger.Info("wallet refresh scheduled", zap.String("cron", r.cfg.CronSpec))
	return nil
}

// Stop halts the schedule and waits for a running cycle to finish.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// RefreshAll runs one refresh cycle over every tracked wallet.
func (r *Refresher) RefreshAll() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Timeout)*time.Second)
	defer cancel()

	wallets, err := r.store.ListWallets(ctx)
	if err != nil {
		r.logger.Error("refresh cycle failed to list wallets", zap.Error(err))
		return
	}

	refreshed := 0
	for i := range wallets {
		wallet := &wallets[i]
		if !wallet.IsActive {
			continue
		}
		if err := r.refreshWallet(ctx, wallet); err != nil {
			r.logger.Warn("wallet refresh failed",
				zap.String("address", wallet.Address),
				zap.Error(err))
			r.eventBus.Publish(Event{
				Type: EventRefreshFailed,
				Data: map[string]interface{}{
					"address": wallet.Address,
					"error":   err.Error(),
				},
			})
			continue
		}
		refreshed++
	}

	r.logger.Info("refresh cycle completed",
		zap.Int("wallets", len(wallets)),
		zap.Int("refreshed", refreshed))
}

func (r *Refresher) refreshWallet(ctx context.Context, wallet *database.TrackedWallet) error {
	summary, err := r.client.AccountSummary(ctx, wallet.Address)
	if err != nil {
		return err
	}

	startTime := time.Now().Add(-statsWindow).UnixMilli()
	stats, err := r.client.TradingStats(ctx, wallet.Address, startTime)
	if err != nil {
		return err
	}

	wallet.TotalValue = summary.TotalValue
	wallet.WinRate = stats.WinRate
	wallet.TotalTrades = int64(stats.TotalTrades)
	wallet.AvgTradeSize = stats.AvgTrade
	wallet.TotalVolume = stats.TotalVolume
	wallet.OpenPositions = int64(stats.OpenOrders)

	if err := r.store.UpdateWalletStats(ctx, wallet); err != nil {
		return err
	}

	r.eventBus.Publish(Event{
		Type: EventWalletRefreshed,
		Data: map[string]interface{}{
			"address":      wallet.Address,
			"total_value":  summary.TotalValue.String(),
			"win_rate":     stats.WinRate,
			"total_trades": stats.TotalTrades,
		},
	})
	return nil
}
