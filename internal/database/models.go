package database

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TrackedWallet represents a followed wallet together with the last
// refreshed headline numbers. The cached stats exist so the wallet list
// renders without one upstream round-trip per row; the detail endpoints
// always go through the live client.
type TrackedWallet struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	Address       string          `db:"address" json:"address"`
	Name          string          `db:"name" json:"name"`
	Description   string          `db:"description" json:"description"`
	IsFollowing   bool            `db:"is_following" json:"is_following"`
	IsActive      bool            `db:"is_active" json:"is_active"`
	TotalValue    decimal.Decimal `db:"total_value" json:"total_value"`
	WinRate       float64         `db:"win_rate" json:"win_rate"`
	TotalTrades   int64           `db:"total_trades" json:"total_trades"`
	AvgTradeSize  decimal.Decimal `db:"avg_trade_size" json:"avg_trade_size"`
	TotalVolume   decimal.Decimal `db:"total_volume" json:"total_volume"`
	OpenPositions int64           `db:"open_positions" json:"open_positions"`
	LastRefreshed *time.Time      `db:"last_refreshed" json:"last_refreshed,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
	DeletedAt     *time.Time      `db:"deleted_at" json:"deleted_at,omitempty"`
}

// UserWalletSettings represents the user's connected wallet and its
// copy-trading configuration. One row per user.
type UserWalletSettings struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	UserID           string          `db:"user_id" json:"user_id"`
	WalletAddress    *string         `db:"wallet_address" json:"wallet_address,omitempty"`
	MaxTradeSize     decimal.Decimal `db:"max_trade_size" json:"max_trade_size"`
	RiskPercentage   decimal.Decimal `db:"risk_percentage" json:"risk_percentage"`
	MaxOpenPositions int             `db:"max_open_positions" json:"max_open_positions"`
	AutoCopyEnabled  bool            `db:"auto_copy_enabled" json:"auto_copy_enabled"`
	StopLossEnabled  bool            `db:"stop_loss_enabled" json:"stop_loss_enabled"`
	MarketOverrides  MarketOverrides `db:"market_overrides" json:"market_overrides"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// MarketOverride tunes copy-trading for a single market.
type MarketOverride struct {
	Enabled      bool             `json:"enabled"`
	MaxTradeSize *decimal.Decimal `json:"max_trade_size,omitempty"`
}

// MarketOverrides maps market symbol to its override.
type MarketOverrides map[string]MarketOverride

// Value implements driver.Valuer for database storage
func (m MarketOverrides) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(map[string]MarketOverride{})
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for database retrieval
func (m *MarketOverrides) Scan(value interface{}) error {
	if value == nil {
		*m = make(MarketOverrides)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, m)
}
