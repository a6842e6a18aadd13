package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/hyperfolio/wallet-tracker/internal/config"
	"github.com/hyperfolio/wallet-tracker/internal/temporal"
)

const infoEndpoint = "/info"

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the single choke point for calls to the Hyperliquid public API.
// It serves fresh responses from an in-memory cache, enforces a rolling
// per-minute weight budget on outbound calls, and falls back to stale cache
// entries when the upstream throttles or the transport fails.
//
// A Client is safe for concurrent use. Construct one per process and share
// it; cache and weight state live only in memory and reset on restart.
type Client struct {
	cfg    config.HyperliquidConfig
	http   Doer
	clock  temporal.Clock
	logger *zap.Logger

	cache  *responseCache
	window *weightWindow
	group  singleflight.Group
}

// NewClient creates a client against cfg.BaseURL using the given transport.
func NewClient(cfg config.HyperliquidConfig, httpClient Doer, clock temporal.Clock, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		clock:  clock,
		logger: logger,
		cache:  newResponseCache(),
		window: newWeightWindow(time.Minute, cfg.MaxWeightPerMinute, time.Duration(cfg.MaxWaitMillis)*time.Millisecond),
	}
}

// ValidateAddress reports whether address is a well-formed wallet address.
func (c *Client) ValidateAddress(address string) bool {
	return common.IsHexAddress(address)
}

// ClearCache evicts cached responses mentioning address, or everything when
// address is empty.
func (c *Client) ClearCache(address string) {
	removed := c.cache.Evict(address)
	c.logger.Info("cache cleared",
		zap.String("address", address),
		zap.Int("removed", removed))
}

// request executes one call against the upstream, going through the cache
// and the weight window. It is the only method that touches the network.
func (c *Client) request(ctx context.Context, endpoint string, body *infoRequest) (json.RawMessage, error) {
	key := c.cacheKey(endpoint, body)

	if payload, ok := c.cache.Get(key, c.clock.Now()); ok {
		c.logger.Debug("cache hit", zap.String("key", key))
		return payload, nil
	}

	// Collapse concurrent identical misses into one upstream flight.
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.fetch(ctx, endpoint, body, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

func (c *Client) fetch(ctx context.Context, endpoint string, body *infoRequest, key string) (json.RawMessage, error) {
	now := c.clock.Now()
	weight := c.requestWeight(body, now)

	if wait := c.window.Delay(weight, now); wait > 0 {
		c.logger.Warn("weight budget exhausted, delaying request",
			zap.String("type", requestType(body)),
			zap.Int("weight", weight),
			zap.Int("used", c.window.Used(now)),
			zap.Duration("wait", wait))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.clock.After(wait):
		}
	}

	resp, err := c.do(ctx, endpoint, body)
	if err != nil {
		if payload, ok := c.cache.GetStale(key); ok {
			c.logger.Warn("transport failure, serving stale cache",
				zap.String("key", key), zap.Error(err))
			return payload, nil
		}
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		if payload, ok := c.cache.GetStale(key); ok {
			c.logger.Warn("upstream rate limited, serving stale cache",
				zap.String("key", key))
			return payload, nil
		}
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{Status: resp.StatusCode}
	}

	payload, err := io.ReadAll(resp.Body)
	if err == nil && !json.Valid(payload) {
		err = fmt.Errorf("invalid JSON in upstream response")
	}
	if err != nil {
		if cached, ok := c.cache.GetStale(key); ok {
			c.logger.Warn("unreadable upstream response, serving stale cache",
				zap.String("key", key), zap.Error(err))
			return cached, nil
		}
		return nil, &NetworkError{Err: err}
	}

	stored := c.clock.Now()
	c.window.Record(weight, stored)
	c.cache.Set(key, payload, stored, time.Duration(c.cfg.CacheTTLMillis)*time.Millisecond)

	c.logger.Debug("upstream request completed",
		zap.String("type", requestType(body)),
		zap.Int("weight", weight),
		zap.Int("bytes", len(payload)))

	return payload, nil
}

// do issues the HTTP call: GET without a body, POST with a JSON body.
func (c *Client) do(ctx context.Context, endpoint string, body *infoRequest) (*http.Response, error) {
	url := c.cfg.BaseURL + endpoint

	var req *http.Request
	var err error
	if body == nil {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	} else {
		var encoded []byte
		encoded, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.http.Do(req)
}

// requestWeight resolves the request's cost against the weight table. Bulk
// fill queries carry a surcharge estimated from the requested time range:
// the upstream bills per returned batch, so assume TradesPerDay fills per
// day, capped at MaxEstimatedItems.
func (c *Client) requestWeight(body *infoRequest, now time.Time) int {
	if body == nil {
		return c.cfg.DefaultWeight
	}

	weight, ok := c.cfg.RequestWeights[body.Type]
	if !ok {
		weight = c.cfg.DefaultWeight
	}

	if body.Type == "userFills" && body.StartTime > 0 {
		days := now.Sub(time.UnixMilli(body.StartTime)).Hours() / 24
		if days < 0 {
			days = 0
		}
		estimated := days * float64(c.cfg.TradesPerDay)
		if limit := float64(c.cfg.MaxEstimatedItems); estimated > limit {
			estimated = limit
		}
		weight += int(estimated) / c.cfg.WeightBatchSize
	}

	return weight
}

// cacheKey builds the deterministic cache key for a request. Struct field
// order makes the serialization stable.
func (c *Client) cacheKey(endpoint string, body *infoRequest) string {
	if body == nil {
		return endpoint + "_{}"
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return endpoint + "_{}"
	}
	return endpoint + "_" + string(encoded)
}

func requestType(body *infoRequest) string {
	if body == nil {
		return "default"
	}
	return body.Type
}
