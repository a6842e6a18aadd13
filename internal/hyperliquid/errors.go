package hyperliquid

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimited is returned when the upstream answers 429 and no prior
	// response is cached for the request.
	ErrRateLimited = errors.New("rate limited by upstream and no cached data available")

	// ErrNoData is returned when the upstream answered successfully but the
	// payload was empty or missing where data was expected.
	ErrNoData = errors.New("no data available")

	// ErrInvalidAddress is returned for addresses that are not 0x-prefixed
	// 20-byte hex strings.
	ErrInvalidAddress = errors.New("invalid wallet address")
)

// HTTPError represents a non-2xx, non-429 upstream response.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream HTTP error: status %d", e.Status)
}

// NetworkError wraps a transport or decode failure that could not be masked
// by a cached response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("upstream network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
