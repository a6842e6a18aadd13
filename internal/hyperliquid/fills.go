package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
)

// UserFills fetches the trade history for address from startTime (epoch
// millis) onward. The fill sequence is returned as the upstream delivered
// it; an empty history is not an error.
func (c *Client) UserFills(ctx context.Context, address string, startTime int64) ([]Fill, error) {
	if !c.ValidateAddress(address) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}

	payload, err := c.request(ctx, infoEndpoint, &infoRequest{
		Type:      "userFills",
		User:      address,
		StartTime: startTime,
	})
	if err != nil {
		return nil, err
	}
	if string(payload) == "null" {
		return nil, fmt.Errorf("fills for %s: %w", address, ErrNoData)
	}

	var fills []Fill
	if err := json.Unmarshal(payload, &fills); err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("decoding fills: %w", err)}
	}
	return fills, nil
}

// OpenOrders fetches the resting orders for address.
func (c *Client) OpenOrders(ctx context.Context, address string) ([]OpenOrder, error) {
	if !c.ValidateAddress(address) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}

	payload, err := c.request(ctx, infoEndpoint, &infoRequest{
		Type: "openOrders",
		User: address,
	})
	if err != nil {
		return nil, err
	}
	if string(payload) == "null" {
		return nil, fmt.Errorf("open orders for %s: %w", address, ErrNoData)
	}

	var orders []OpenOrder
	if err := json.Unmarshal(payload, &orders); err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("decoding open orders: %w", err)}
	}
	return orders, nil
}
