// Command mms-bench measures engine throughput on synthetic workloads:
// insert-only flow, insert/cancel churn, crossing flow, and the full agent
// simulation.
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/engine"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/mmrand"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/sim"
)

func main() {
	events := flag.Int("n", 1_000_000, "events per workload")
	steps := flag.Int("steps", 500_000, "steps for the simulation workload")
	seed := flag.Uint64("seed", 42, "RNG seed")
	flag.Parse()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "workload\tevents\ttrades\telapsed\tevents/sec")

	report(w, "insert", benchInsert(*events, *seed))
	report(w, "insert+cancel", benchInsertCancel(*events, *seed))
	report(w, "crossing", benchCrossing(*events, *seed))
	report(w, "simulation", benchSimulation(*steps, *seed))

	w.Flush()
}

type benchResult struct {
	events  int
	trades  int
	elapsed time.Duration
}

func report(w *tabwriter.Writer, name string, r benchResult) {
	perSec := 0.0
	if secs := r.elapsed.Seconds(); secs > 0 {
		perSec = float64(r.events) / secs
	}
	fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%.0f\n", name, r.events, r.trades, r.elapsed, perSec)
}

// benchInsert fills the book with non-crossing limit orders.
func benchInsert(n int, seed uint64) benchResult {
	rng := mmrand.New(seed)
	e := engine.NewMatchingEngine()

	start := time.Now()
	for i := 0; i < n; i++ {
		side := book.SideSell
		price := book.Price(10_001 + rng.UniformInt(0, 99))
		if i%2 == 0 {
			side = book.SideBuy
			price = book.Price(10_000 - rng.UniformInt(0, 99))
		}
		e.ProcessEvent(engine.LimitEvent(book.OrderID(i+1), side, price, 10, book.Timestamp(i), 0))
	}
	return benchResult{events: n, trades: e.TradeCount(), elapsed: time.Since(start)}
}

// benchInsertCancel alternates inserts with cancels of random live orders.
func benchInsertCancel(n int, seed uint64) benchResult {
	rng := mmrand.New(seed)
	e := engine.NewMatchingEngine()
	var live []book.OrderID

	start := time.Now()
	for i := 0; i < n; i++ {
		if i%3 == 2 && len(live) > 0 {
			idx := int(rng.UniformInt(0, int64(len(live)-1)))
			e.ProcessEvent(engine.CancelEvent(live[idx], book.Timestamp(i), 0))
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]
			continue
		}
		side := book.SideSell
		price := book.Price(10_001 + rng.UniformInt(0, 99))
		if i%2 == 0 {
			side = book.SideBuy
			price = book.Price(10_000 - rng.UniformInt(0, 99))
		}
		id := book.OrderID(i + 1)
		e.ProcessEvent(engine.LimitEvent(id, side, price, 10, book.Timestamp(i), 0))
		live = append(live, id)
	}
	return benchResult{events: n, trades: e.TradeCount(), elapsed: time.Since(start)}
}

// benchCrossing interleaves resting liquidity with marketable flow.
func benchCrossing(n int, seed uint64) benchResult {
	rng := mmrand.New(seed)
	e := engine.NewMatchingEngine()

	start := time.Now()
	for i := 0; i < n; i++ {
		id := book.OrderID(i + 1)
		ts := book.Timestamp(i)
		switch i % 4 {
		case 0:
			e.ProcessEvent(engine.LimitEvent(id, book.SideBuy, book.Price(9_990+rng.UniformInt(0, 9)), 20, ts, 0))
		case 1:
			e.ProcessEvent(engine.LimitEvent(id, book.SideSell, book.Price(10_001+rng.UniformInt(0, 9)), 20, ts, 0))
		case 2:
			e.ProcessEvent(engine.MarketEvent(id, book.SideBuy, 15, ts, 0))
		default:
			e.ProcessEvent(engine.MarketEvent(id, book.SideSell, 15, ts, 0))
		}
	}
	return benchResult{events: n, trades: e.TradeCount(), elapsed: time.Since(start)}
}

// benchSimulation runs the canonical three-agent loop.
func benchSimulation(steps int, seed uint64) benchResult {
	cfg := sim.DefaultConfig()
	cfg.Seed = seed
	simulator := sim.New(cfg)

	result, err := simulator.Run(steps)
	if err != nil {
		fmt.Fprintln(os.Stderr, "simulation workload:", err)
		os.Exit(1)
	}
	return benchResult{
		events:  result.EventsProcessed,
		trades:  result.TradeCount,
		elapsed: result.WallTime,
	}
}
