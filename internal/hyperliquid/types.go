package hyperliquid

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order side values as the upstream wire format encodes them.
const (
	SideBuy  = "B"
	SideSell = "A"
)

// infoRequest is the POST body accepted by the /info endpoint.
type infoRequest struct {
	Type      string `json:"type"`
	User      string `json:"user,omitempty"`
	StartTime int64  `json:"startTime,omitempty"`
}

// Fill is one executed trade record as returned by the userFills query.
// Immutable once retrieved.
type Fill struct {
	Coin      string           `json:"coin"`
	Side      string           `json:"side"`
	Size      decimal.Decimal  `json:"sz"`
	Price     decimal.Decimal  `json:"px"`
	Time      int64            `json:"time"` // epoch millis
	ClosedPnl *decimal.Decimal `json:"closedPnl,omitempty"`
	Hash      string           `json:"hash,omitempty"`
	OrderID   int64            `json:"oid,omitempty"`
}

// Notional returns price x size.
func (f Fill) Notional() decimal.Decimal {
	return f.Price.Mul(f.Size)
}

// RealizedPnl returns the fill's realized PnL, falling back to the signed
// notional when the upstream omitted closedPnl.
func (f Fill) RealizedPnl() decimal.Decimal {
	if f.ClosedPnl != nil {
		return *f.ClosedPnl
	}
	if f.Side == SideSell {
		return f.Notional().Neg()
	}
	return f.Notional()
}

// Timestamp returns the fill's execution time.
func (f Fill) Timestamp() time.Time {
	return time.UnixMilli(f.Time).UTC()
}

// MarginSummary is the margin section of a clearinghouseState response.
type MarginSummary struct {
	AccountValue    decimal.Decimal `json:"accountValue"`
	TotalMarginUsed decimal.Decimal `json:"totalMarginUsed"`
	TotalNtlPos     decimal.Decimal `json:"totalNtlPos"`
	TotalRawUsd     decimal.Decimal `json:"totalRawUsd"`
}

// ClearinghouseState is the raw account state returned by the upstream.
type ClearinghouseState struct {
	MarginSummary      MarginSummary   `json:"marginSummary"`
	CrossMarginSummary MarginSummary   `json:"crossMarginSummary"`
	Withdrawable       decimal.Decimal `json:"withdrawable"`
	Time               int64           `json:"time"`
}

// OpenOrder is one resting order from the openOrders query.
type OpenOrder struct {
	Coin      string          `json:"coin"`
	Side      string          `json:"side"`
	LimitPx   decimal.Decimal `json:"limitPx"`
	Size      decimal.Decimal `json:"sz"`
	OrderID   int64           `json:"oid"`
	Timestamp int64           `json:"timestamp"`
}

// AccountSummary is the derived account view served to consumers.
type AccountSummary struct {
	Address            string          `json:"address"`
	TotalValue         decimal.Decimal `json:"total_value"`
	MarginUsed         decimal.Decimal `json:"margin_used"`
	SpotValue          decimal.Decimal `json:"spot_value"`
	PositionNotional   decimal.Decimal `json:"position_notional"`
	Withdrawable       decimal.Decimal `json:"withdrawable"`
	Leverage           decimal.Decimal `json:"leverage"`
	MarginUsagePercent decimal.Decimal `json:"margin_usage_percent"`
}

// EquityPoint is one day of the reconstructed PnL trajectory. Pnl is
// normalized so the series ends at zero; RawPnl keeps the un-normalized
// running total for consumers that want the absolute trajectory.
type EquityPoint struct {
	Date   string          `json:"date"` // YYYY-MM-DD
	Pnl    decimal.Decimal `json:"pnl"`
	RawPnl decimal.Decimal `json:"raw_pnl"`
}

// TradingStats aggregates fills and open orders into headline numbers.
type TradingStats struct {
	TotalTrades   int             `json:"total_trades"`
	WinningTrades int             `json:"winning_trades"`
	WinRate       float64         `json:"win_rate"` // percent
	AvgTrade      decimal.Decimal `json:"avg_trade"`
	TotalVolume   decimal.Decimal `json:"total_volume"`
	OpenOrders    int             `json:"open_orders"`
}
