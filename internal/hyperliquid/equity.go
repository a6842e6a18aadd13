package hyperliquid

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// EquityHistory reconstructs a daily PnL trajectory for address from its
// fill history, since the upstream has no historical-balance endpoint. The
// series is normalized so it ends at exactly zero: it represents PnL
// relative to now, not absolute historical equity. Each point also carries
// the un-normalized running total.
//
// A wallet with no fills in the window yields an empty series.
func (c *Client) EquityHistory(ctx context.Context, address string, startTime int64) ([]EquityPoint, error) {
	// The current account value anchors the chart header and keeps the
	// state cache warm for the summary endpoint.
	if _, err := c.AccountState(ctx, address); err != nil {
		return nil, err
	}

	fills, err := c.UserFills(ctx, address, startTime)
	if err != nil {
		return nil, err
	}

	return buildEquityHistory(fills, c.clock.Now()), nil
}

// buildEquityHistory walks fills chronologically, accumulating realized PnL
// into one value per calendar day, then:
//
//   - seeds a zero point one day before the first fill,
//   - normalizes every point by the final cumulative value,
//   - appends a point for today when the last fill predates it,
//   - fills calendar gaps with flat carry-forward,
//
// so every day between the seed and the end has exactly one point.
func buildEquityHistory(fills []Fill, now time.Time) []EquityPoint {
	if len(fills) == 0 {
		return []EquityPoint{}
	}

	sorted := make([]Fill, len(fills))
	copy(sorted, fills)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})

	seedDay := dayOf(sorted[0].Timestamp()).AddDate(0, 0, -1)
	raw := map[string]decimal.Decimal{
		dateKey(seedDay): decimal.Zero,
	}

	cumulative := decimal.Zero
	for _, f := range sorted {
		cumulative = cumulative.Add(f.RealizedPnl())
		raw[dateKey(dayOf(f.Timestamp()))] = cumulative
	}
	final := cumulative

	end := dayOf(sorted[len(sorted)-1].Timestamp())
	if today := dayOf(now.UTC()); today.After(end) {
		raw[dateKey(today)] = final
		end = today
	}

	points := make([]EquityPoint, 0, int(end.Sub(seedDay).Hours()/24)+1)
	carry := decimal.Zero
	for d := seedDay; !d.After(end); d = d.AddDate(0, 0, 1) {
		if v, ok := raw[dateKey(d)]; ok {
			carry = v
		}
		points = append(points, EquityPoint{
			Date:   dateKey(d),
			Pnl:    carry.Sub(final),
			RawPnl: carry,
		})
	}
	return points
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
