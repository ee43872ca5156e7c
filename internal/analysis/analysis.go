// Package analysis computes post-run market statistics from collected
// trades, snapshots and agent samples.
package analysis

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
)

// VWAP returns the volume-weighted average trade price. Notional is summed
// in exact decimal so long runs do not lose precision to float accumulation.
// Returns zero for an empty tape.
func VWAP(trades []book.Trade) decimal.Decimal {
	if len(trades) == 0 {
		return decimal.Zero
	}
	notional := decimal.Zero
	volume := decimal.Zero
	for _, t := range trades {
		p := decimal.NewFromInt(int64(t.Price))
		q := decimal.NewFromInt(int64(t.Quantity))
		notional = notional.Add(p.Mul(q))
		volume = volume.Add(q)
	}
	if volume.IsZero() {
		return decimal.Zero
	}
	return notional.Div(volume)
}

// TWAP returns the time-weighted average mid price over the snapshot series,
// weighting each mid by the interval until the next snapshot. Snapshots with
// a one-sided or empty book are skipped. Returns zero if no interval has a
// valid mid.
func TWAP(snapshots []book.MarketSnapshot) decimal.Decimal {
	if len(snapshots) < 2 {
		if len(snapshots) == 1 {
			if mid := snapshots[0].MidPrice(); mid > 0 {
				return decimal.NewFromInt(int64(mid))
			}
		}
		return decimal.Zero
	}
	weighted := decimal.Zero
	total := decimal.Zero
	for i := 0; i+1 < len(snapshots); i++ {
		mid := snapshots[i].MidPrice()
		if mid <= 0 {
			continue
		}
		dt := snapshots[i+1].Timestamp - snapshots[i].Timestamp
		if dt <= 0 {
			continue
		}
		w := decimal.NewFromInt(int64(dt))
		weighted = weighted.Add(decimal.NewFromInt(int64(mid)).Mul(w))
		total = total.Add(w)
	}
	if total.IsZero() {
		return decimal.Zero
	}
	return weighted.Div(total)
}

// Volatility returns the standard deviation of log returns over consecutive
// valid mid prices in the snapshot series. Returns 0 with fewer than two
// valid mids.
func Volatility(snapshots []book.MarketSnapshot) float64 {
	var returns []float64
	prev := 0.0
	for _, s := range snapshots {
		mid := s.MidPrice()
		if mid <= 0 {
			continue
		}
		cur := float64(mid)
		if prev > 0 {
			returns = append(returns, math.Log(cur/prev))
		}
		prev = cur
	}
	return stddev(returns)
}

// SpreadStats summarises the bid-ask spread across snapshots with a
// two-sided book.
type SpreadStats struct {
	Mean   float64
	Median float64
	Min    book.Price
	Max    book.Price
	StdDev float64
	// Samples is how many snapshots had a two-sided book.
	Samples int
}

// ComputeSpreadStats collects spread statistics over the snapshot series.
func ComputeSpreadStats(snapshots []book.MarketSnapshot) SpreadStats {
	var spreads []float64
	stats := SpreadStats{Min: math.MaxInt64}
	for _, s := range snapshots {
		if s.BestBid <= 0 || s.BestAsk <= 0 {
			continue
		}
		sp := s.Spread()
		spreads = append(spreads, float64(sp))
		if sp < stats.Min {
			stats.Min = sp
		}
		if sp > stats.Max {
			stats.Max = sp
		}
	}
	stats.Samples = len(spreads)
	if stats.Samples == 0 {
		return SpreadStats{}
	}
	stats.Mean = mean(spreads)
	stats.Median = median(spreads)
	stats.StdDev = stddev(spreads)
	return stats
}

// AgentPerformance summarises one agent's PnL path.
type AgentPerformance struct {
	AgentID     book.AgentID
	FinalPnL    float64
	MaxDrawdown float64
	// Sharpe is the annualisation-free ratio of mean to stddev of per-sample
	// PnL changes; 0 when the path never moves.
	Sharpe  float64
	Samples int
}

// PnLPoint is one observation of an agent's PnL path.
type PnLPoint struct {
	AgentID book.AgentID
	PnL     float64
}

// ComputeAgentPerformance derives per-agent performance from the sampled PnL
// paths, returned in ascending agent id order. Points must be in capture
// order, which the collector guarantees.
func ComputeAgentPerformance(points []PnLPoint) []AgentPerformance {
	byAgent := make(map[book.AgentID][]float64)
	for _, p := range points {
		byAgent[p.AgentID] = append(byAgent[p.AgentID], p.PnL)
	}

	ids := make([]book.AgentID, 0, len(byAgent))
	for id := range byAgent {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]AgentPerformance, 0, len(ids))
	for _, id := range ids {
		path := byAgent[id]
		out = append(out, AgentPerformance{
			AgentID:     id,
			FinalPnL:    path[len(path)-1],
			MaxDrawdown: maxDrawdown(path),
			Sharpe:      sharpe(path),
			Samples:     len(path),
		})
	}
	return out
}

// maxDrawdown returns the largest peak-to-trough PnL decline along the path.
func maxDrawdown(path []float64) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, v := range path {
		if v > peak {
			peak = v
		}
		if dd := peak - v; dd > worst {
			worst = dd
		}
	}
	return worst
}

func sharpe(path []float64) float64 {
	if len(path) < 2 {
		return 0
	}
	diffs := make([]float64, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		diffs = append(diffs, path[i]-path[i-1])
	}
	sd := stddev(diffs)
	if sd == 0 {
		return 0
	}
	return mean(diffs) / sd
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// stddev is the sample standard deviation; 0 for fewer than two points.
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
