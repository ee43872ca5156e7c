package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
)

func TestVWAP(t *testing.T) {
	trades := []book.Trade{
		{Price: 100, Quantity: 10},
		{Price: 102, Quantity: 30},
	}
	// (100*10 + 102*30) / 40 = 101.5
	assert.Equal(t, "101.5", VWAP(trades).String())

	assert.True(t, VWAP(nil).IsZero())
}

func TestTWAP(t *testing.T) {
	snaps := []book.MarketSnapshot{
		{BestBid: 99, BestAsk: 101, Timestamp: 0},    // mid 100, weight 10
		{BestBid: 109, BestAsk: 111, Timestamp: 10},  // mid 110, weight 30
		{BestBid: 119, BestAsk: 121, Timestamp: 40},  // terminal, unweighted
	}
	// (100*10 + 110*30) / 40 = 107.5
	assert.Equal(t, "107.5", TWAP(snaps).String())
}

func TestTWAPSkipsOneSided(t *testing.T) {
	snaps := []book.MarketSnapshot{
		{BestBid: 99, BestAsk: 101, Timestamp: 0},
		{BestBid: 0, BestAsk: 101, Timestamp: 10}, // one-sided, skipped
		{BestBid: 99, BestAsk: 101, Timestamp: 20},
	}
	assert.Equal(t, "100", TWAP(snaps).String())

	assert.True(t, TWAP(nil).IsZero())
	assert.True(t, TWAP([]book.MarketSnapshot{{BestBid: 0, BestAsk: 101}}).IsZero())

	single := []book.MarketSnapshot{{BestBid: 99, BestAsk: 101, Timestamp: 0}}
	assert.Equal(t, "100", TWAP(single).String())
}

func TestVolatility(t *testing.T) {
	flat := []book.MarketSnapshot{
		{BestBid: 99, BestAsk: 101, Timestamp: 0},
		{BestBid: 99, BestAsk: 101, Timestamp: 10},
		{BestBid: 99, BestAsk: 101, Timestamp: 20},
	}
	assert.Zero(t, Volatility(flat))

	moving := []book.MarketSnapshot{
		{BestBid: 99, BestAsk: 101, Timestamp: 0},
		{BestBid: 109, BestAsk: 111, Timestamp: 10},
		{BestBid: 99, BestAsk: 101, Timestamp: 20},
	}
	got := Volatility(moving)
	// Two log returns: +ln(1.1), -ln(1.1); sample stddev is ln(1.1)*sqrt(2)
	want := math.Log(1.1) * math.Sqrt2
	assert.InDelta(t, want, got, 1e-12)

	assert.Zero(t, Volatility(nil))
}

func TestComputeSpreadStats(t *testing.T) {
	snaps := []book.MarketSnapshot{
		{BestBid: 100, BestAsk: 102},            // spread 2
		{BestBid: 100, BestAsk: 104},            // spread 4
		{BestBid: 100, BestAsk: 106},            // spread 6
		{BestBid: 0, BestAsk: 106},              // one-sided, skipped
	}
	stats := ComputeSpreadStats(snaps)

	assert.Equal(t, 3, stats.Samples)
	assert.Equal(t, 4.0, stats.Mean)
	assert.Equal(t, 4.0, stats.Median)
	assert.Equal(t, book.Price(2), stats.Min)
	assert.Equal(t, book.Price(6), stats.Max)
	assert.Equal(t, 2.0, stats.StdDev)
}

func TestComputeSpreadStatsEmpty(t *testing.T) {
	assert.Equal(t, SpreadStats{}, ComputeSpreadStats(nil))
	assert.Equal(t, SpreadStats{}, ComputeSpreadStats([]book.MarketSnapshot{{BestBid: 100}}))
}

func TestComputeAgentPerformance(t *testing.T) {
	points := []PnLPoint{
		{AgentID: 2, PnL: 0},
		{AgentID: 1, PnL: 0},
		{AgentID: 2, PnL: 10},
		{AgentID: 1, PnL: -5},
		{AgentID: 2, PnL: 4},
		{AgentID: 1, PnL: -2},
	}

	perf := ComputeAgentPerformance(points)
	require.Len(t, perf, 2)

	// Ascending agent id order
	assert.Equal(t, book.AgentID(1), perf[0].AgentID)
	assert.Equal(t, book.AgentID(2), perf[1].AgentID)

	assert.Equal(t, -2.0, perf[0].FinalPnL)
	assert.Equal(t, 5.0, perf[0].MaxDrawdown) // peak 0, trough -5
	assert.Equal(t, 3, perf[0].Samples)

	assert.Equal(t, 4.0, perf[1].FinalPnL)
	assert.Equal(t, 6.0, perf[1].MaxDrawdown) // peak 10, trough 4
}

func TestComputeAgentPerformanceSharpe(t *testing.T) {
	// Steady +1 per sample: zero stddev of diffs means Sharpe 0 by convention
	steady := []PnLPoint{
		{AgentID: 1, PnL: 0}, {AgentID: 1, PnL: 1}, {AgentID: 1, PnL: 2},
	}
	perf := ComputeAgentPerformance(steady)
	require.Len(t, perf, 1)
	assert.Zero(t, perf[0].Sharpe)

	// Diffs +3, +1: mean 2, sample stddev sqrt(2)
	varied := []PnLPoint{
		{AgentID: 1, PnL: 0}, {AgentID: 1, PnL: 3}, {AgentID: 1, PnL: 4},
	}
	perf = ComputeAgentPerformance(varied)
	require.Len(t, perf, 1)
	assert.InDelta(t, 2/math.Sqrt2, perf[0].Sharpe, 1e-12)

	assert.Empty(t, ComputeAgentPerformance(nil))
}
