package hyperliquid_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/hyperfolio/wallet-tracker/internal/config"
	"github.com/hyperfolio/wallet-tracker/internal/hyperliquid"
)

const (
	testAddress  = "0x1234567890abcdef1234567890abcdef12345678"
	otherAddress = "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"

	stateJSON = `{
		"marginSummary": {"accountValue": "1000", "totalMarginUsed": "250", "totalNtlPos": "500", "totalRawUsd": "1000"},
		"crossMarginSummary": {"accountValue": "1000", "totalMarginUsed": "250", "totalNtlPos": "500", "totalRawUsd": "1000"},
		"withdrawable": "750",
		"time": 1700000000000
	}`

	fillsJSON = `[
		{"coin": "BTC", "side": "B", "sz": "1", "px": "100", "time": 1764547200000, "closedPnl": "50"},
		{"coin": "BTC", "side": "A", "sz": "1", "px": "120", "time": 1764633600000, "closedPnl": "-20"},
		{"coin": "ETH", "side": "B", "sz": "2", "px": "3000", "time": 1764633700000}
	]`

	ordersJSON = `[{"coin": "BTC", "side": "B", "limitPx": "95", "sz": "1", "oid": 77, "timestamp": 1764633600000}]`
)

// stubUpstream plays the /info endpoint, keyed by the request's type field.
type stubUpstream struct {
	mu        sync.Mutex
	calls     map[string]int
	status    int
	responses map[string]string
}

func newStubUpstream() *stubUpstream {
	return &stubUpstream{
		calls: make(map[string]int),
		responses: map[string]string{
			"clearinghouseState": stateJSON,
			"userFills":          fillsJSON,
			"openOrders":         ordersJSON,
		},
	}
}

func (s *stubUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type string `json:"type"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	s.calls[body.Type]++
	status := s.status
	response, ok := s.responses[body.Type]
	s.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if !ok {
		response = "null"
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(response))
}

func (s *stubUpstream) Calls(requestType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[requestType]
}

func (s *stubUpstream) SetStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// flakyDoer injects transport failures in front of the real test server.
type flakyDoer struct {
	inner hyperliquid.Doer
	fail  atomic.Bool
}

func (d *flakyDoer) Do(req *http.Request) (*http.Response, error) {
	if d.fail.Load() {
		return nil, errors.New("connection reset by peer")
	}
	return d.inner.Do(req)
}

var _ = Describe("Client", func() {
	var (
		upstream *stubUpstream
		server   *httptest.Server
		doer     *flakyDoer
		clock    *fakeClock
		client   *hyperliquid.Client
		cfg      config.HyperliquidConfig
		ctx      context.Context
	)

	newClient := func() *hyperliquid.Client {
		return hyperliquid.NewClient(cfg, doer, clock, zap.NewNop())
	}

	BeforeEach(func() {
		ctx = context.Background()
		upstream = newStubUpstream()
		server = httptest.NewServer(upstream)
		DeferCleanup(server.Close)

		doer = &flakyDoer{inner: server.Client()}
		clock = newFakeClock(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))

		cfg = config.HyperliquidConfig{
			BaseURL:            server.URL,
			RequestTimeout:     5,
			MaxWeightPerMinute: 1200,
			CacheTTLMillis:     30000,
			MaxWaitMillis:      10000,
			DefaultWeight:      20,
			RequestWeights: map[string]int{
				"clearinghouseState": 2,
				"openOrders":         20,
				"userFills":          20,
				"userRole":           60,
			},
			TradesPerDay:      10,
			MaxEstimatedItems: 1000,
			WeightBatchSize:   20,
		}
		client = newClient()
	})

	Describe("caching", func() {
		It("serves a repeated call within TTL from cache without a network hit", func() {
			first, err := client.UserFills(ctx, testAddress, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(upstream.Calls("userFills")).To(Equal(1))

			clock.Advance(10 * time.Second)

			second, err := client.UserFills(ctx, testAddress, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(upstream.Calls("userFills")).To(Equal(1), "second call must not hit the network")
			Expect(second).To(Equal(first))
		})

		It("refetches once the entry has gone stale", func() {
			_, err := client.UserFills(ctx, testAddress, 0)
			Expect(err).ToNot(HaveOccurred())

			clock.Advance(31 * time.Second)

			_, err = client.UserFills(ctx, testAddress, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(upstream.Calls("userFills")).To(Equal(2))
		})

		It("keys the cache per address", func() {
			_, err := client.UserFills(ctx, testAddress, 0)
			Expect(err).ToNot(HaveOccurred())

			_, err = client.UserFills(ctx, otherAddress, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(upstream.Calls("userFills")).To(Equal(2))
		})

		It("refetches after ClearCache evicts the address", func() {
			_, err := client.UserFills(ctx, testAddress, 0)
			Expect(err).ToNot(HaveOccurred())

			client.ClearCache(testAddress)

			_, err = client.UserFills(ctx, testAddress, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(upstream.Calls("userFills")).To(Equal(2))
		})
	})

	Describe("failure handling", func() {
		It("returns the stale cache entry when the upstream answers 429", func() {
			fresh, err := client.UserFills(ctx, testAddress, 0)
			Expect(err).ToNot(HaveOccurred())

			clock.Advance(time.Minute) // entry is now stale
			upstream.SetStatus(http.StatusTooManyRequests)

			fills, err := client.UserFills(ctx, testAddress, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(fills).To(Equal(fresh))
		})

		It("fails with ErrRateLimited on 429 with a cold cache", func() {
			upstream.SetStatus(http.StatusTooManyRequests)

			_, err := client.UserFills(ctx, testAddress, 0)
			Expect(errors.Is(err, hyperliquid.ErrRateLimited)).To(BeTrue())
		})

		It("returns the stale cache entry when the transport fails", func() {
			fresh, err := client.UserFills(ctx, testAddress, 0)
			Expect(err).ToNot(HaveOccurred())

			clock.Advance(time.Minute)
			doer.fail.Store(true)

			fills, err := client.UserFills(ctx, testAddress, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(fills).To(Equal(fresh))
		})

		It("fails with a NetworkError when the transport fails cold", func() {
			doer.fail.Store(true)

			_, err := client.UserFills(ctx, testAddress, 0)
			var netErr *hyperliquid.NetworkError
			Expect(errors.As(err, &netErr)).To(BeTrue())
		})

		It("surfaces other HTTP statuses as HTTPError", func() {
			upstream.SetStatus(http.StatusBadGateway)

			_, err := client.UserFills(ctx, testAddress, 0)
			var httpErr *hyperliquid.HTTPError
			Expect(errors.As(err, &httpErr)).To(BeTrue())
			Expect(httpErr.Status).To(Equal(http.StatusBadGateway))
		})

		It("maps a null account state to ErrNoData", func() {
			upstream.responses["clearinghouseState"] = "null"

			_, err := client.AccountState(ctx, testAddress)
			Expect(errors.Is(err, hyperliquid.ErrNoData)).To(BeTrue())
		})

		It("rejects malformed addresses without touching the network", func() {
			_, err := client.UserFills(ctx, "not-an-address", 0)
			Expect(errors.Is(err, hyperliquid.ErrInvalidAddress)).To(BeTrue())
			Expect(upstream.Calls("userFills")).To(BeZero())
		})
	})

	Describe("rate limiting", func() {
		It("never delays cheap status queries", func() {
			for i, addr := range []string{
				"0x0000000000000000000000000000000000000001",
				"0x0000000000000000000000000000000000000002",
				"0x0000000000000000000000000000000000000003",
				"0x0000000000000000000000000000000000000004",
				"0x0000000000000000000000000000000000000005",
				"0x0000000000000000000000000000000000000006",
				"0x0000000000000000000000000000000000000007",
				"0x0000000000000000000000000000000000000008",
				"0x0000000000000000000000000000000000000009",
				"0x000000000000000000000000000000000000000a",
			} {
				_, err := client.AccountState(ctx, addr)
				Expect(err).ToNot(HaveOccurred(), "call %d", i)
			}

			Expect(clock.Waits()).To(BeEmpty())
			Expect(upstream.Calls("clearinghouseState")).To(Equal(10))
		})

		It("waits at most the configured cap when the budget is exhausted", func() {
			cfg.MaxWeightPerMinute = 30
			client = newClient()

			_, err := client.UserFills(ctx, testAddress, 0) // weight 20
			Expect(err).ToNot(HaveOccurred())

			_, err = client.OpenOrders(ctx, testAddress) // 20 + 20 > 30
			Expect(err).ToNot(HaveOccurred())

			waits := clock.Waits()
			Expect(waits).To(HaveLen(1))
			Expect(waits[0]).To(Equal(10 * time.Second))
		})

		It("adds a time-range surcharge to bulk fill queries", func() {
			cfg.MaxWeightPerMinute = 30
			client = newClient()

			// 20 days back at 10 trades/day estimates 200 items, so the
			// request weighs 20 + 200/20 = 30 and just fits the budget.
			startTime := clock.Now().AddDate(0, 0, -20).UnixMilli()
			_, err := client.UserFills(ctx, testAddress, startTime)
			Expect(err).ToNot(HaveOccurred())
			Expect(clock.Waits()).To(BeEmpty())

			// The next fills query cannot fit and must be delayed.
			_, err = client.UserFills(ctx, otherAddress, startTime)
			Expect(err).ToNot(HaveOccurred())
			Expect(clock.Waits()).To(HaveLen(1))
		})
	})

	Describe("derived queries", func() {
		It("derives margin usage and leverage from the account state", func() {
			summary, err := client.AccountSummary(ctx, testAddress)
			Expect(err).ToNot(HaveOccurred())

			Expect(summary.TotalValue.String()).To(Equal("1000"))
			Expect(summary.MarginUsed.String()).To(Equal("250"))
			Expect(summary.SpotValue.String()).To(Equal("750"))
			Expect(summary.Leverage.String()).To(Equal("4"))
			Expect(summary.MarginUsagePercent.String()).To(Equal("25"))
			Expect(summary.Withdrawable.String()).To(Equal("750"))
		})

		It("computes trading statistics from fills and open orders", func() {
			stats, err := client.TradingStats(ctx, testAddress, 0)
			Expect(err).ToNot(HaveOccurred())

			Expect(stats.TotalTrades).To(Equal(3))
			Expect(stats.WinningTrades).To(Equal(1))
			Expect(stats.WinRate).To(BeNumerically("~", 33.33, 0.01))
			// 1x100 + 1x120 + 2x3000
			Expect(stats.TotalVolume.String()).To(Equal("6220"))
			Expect(stats.OpenOrders).To(Equal(1))
		})

		It("reconstructs an equity series that ends at zero", func() {
			points, err := client.EquityHistory(ctx, testAddress, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(points).ToNot(BeEmpty())
			Expect(points[len(points)-1].Pnl.IsZero()).To(BeTrue())

			for i := 1; i < len(points); i++ {
				prev, _ := time.Parse("2006-01-02", points[i-1].Date)
				cur, _ := time.Parse("2006-01-02", points[i].Date)
				Expect(cur.Sub(prev)).To(Equal(24 * time.Hour))
			}
		})
	})
})
