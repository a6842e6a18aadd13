package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	oneHundred = decimal.NewFromInt(100)
	one        = decimal.NewFromInt(1)
)

// AccountState fetches the raw clearinghouse state for address.
func (c *Client) AccountState(ctx context.Context, address string) (*ClearinghouseState, error) {
	if !c.ValidateAddress(address) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}

	payload, err := c.request(ctx, infoEndpoint, &infoRequest{
		Type: "clearinghouseState",
		User: address,
	})
	if err != nil {
		return nil, err
	}
	if isEmptyPayload(payload) {
		return nil, fmt.Errorf("account state for %s: %w", address, ErrNoData)
	}

	var state ClearinghouseState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("decoding account state: %w", err)}
	}
	return &state, nil
}

// AccountSummary fetches the account state and derives margin usage and a
// simplified leverage figure for dashboard consumption.
func (c *Client) AccountSummary(ctx context.Context, address string) (*AccountSummary, error) {
	state, err := c.AccountState(ctx, address)
	if err != nil {
		return nil, err
	}

	total := state.MarginSummary.AccountValue
	marginUsed := state.MarginSummary.TotalMarginUsed

	leverage := one
	if marginUsed.IsPositive() {
		leverage = total.Div(marginUsed)
	}

	marginUsage := decimal.Zero
	if total.IsPositive() {
		marginUsage = marginUsed.Div(total).Mul(oneHundred)
	}

	return &AccountSummary{
		Address:            address,
		TotalValue:         total,
		MarginUsed:         marginUsed,
		SpotValue:          total.Sub(marginUsed),
		PositionNotional:   state.MarginSummary.TotalNtlPos,
		Withdrawable:       state.Withdrawable,
		Leverage:           leverage,
		MarginUsagePercent: marginUsage,
	}, nil
}

// isEmptyPayload reports whether a well-formed response carries no data.
func isEmptyPayload(payload json.RawMessage) bool {
	switch string(payload) {
	case "", "null", "{}", "[]":
		return true
	}
	return false
}
