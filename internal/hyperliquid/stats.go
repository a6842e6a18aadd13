package hyperliquid

import (
	"context"

	"github.com/shopspring/decimal"
)

// TradingStats derives win rate, average trade notional, total volume and
// the open-order count for address from the fill history starting at
// startTime (epoch millis).
func (c *Client) TradingStats(ctx context.Context, address string, startTime int64) (*TradingStats, error) {
	fills, err := c.UserFills(ctx, address, startTime)
	if err != nil {
		return nil, err
	}

	// Open orders are decorative here; a failure on that leg should not
	// sink the whole stats panel.
	openOrders := 0
	if orders, err := c.OpenOrders(ctx, address); err == nil {
		openOrders = len(orders)
	} else {
		c.logger.Warn("open orders unavailable for stats")
	}

	stats := &TradingStats{
		TotalTrades: len(fills),
		AvgTrade:    decimal.Zero,
		TotalVolume: decimal.Zero,
		OpenOrders:  openOrders,
	}

	for _, f := range fills {
		stats.TotalVolume = stats.TotalVolume.Add(f.Notional())
		if f.ClosedPnl != nil && f.ClosedPnl.IsPositive() {
			stats.WinningTrades++
		}
	}

	if stats.TotalTrades > 0 {
		stats.WinRate = float64(stats.WinningTrades) / float64(stats.TotalTrades) * 100
		stats.AvgTrade = stats.TotalVolume.Div(decimal.NewFromInt(int64(stats.TotalTrades)))
	}

	return stats, nil
}
