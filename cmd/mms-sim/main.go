// Command mms-sim runs a headless market simulation and writes the collected
// trades, snapshots and agent samples to CSV. Configuration comes from the
// environment (and .env); flags override it.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/analysis"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/config"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/sim"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mms-sim:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	steps := flag.Int("steps", cfg.Steps, "simulation steps to run")
	seed := flag.Uint64("seed", cfg.Sim.Seed, "RNG seed")
	output := flag.String("output", cfg.Sim.OutputDir, "CSV output directory (empty disables)")
	logLevel := flag.String("log-level", cfg.Logging.Level, "log level")
	flag.Parse()

	cfg.Sim.Seed = *seed
	cfg.Sim.OutputDir = *output
	cfg.Logging.Level = *logLevel

	log, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	simulator := sim.New(cfg.Sim)
	simulator.SetLogger(log)

	result, err := simulator.Run(*steps)
	if err != nil {
		return err
	}

	printSummary(log, simulator, result)
	return nil
}

func printSummary(log *zap.Logger, simulator *sim.Simulator, result sim.RunResult) {
	trades := simulator.Collector().Trades()
	snapshots := simulator.Collector().Snapshots()

	vwap := analysis.VWAP(trades)
	twap := analysis.TWAP(snapshots)
	vol := analysis.Volatility(snapshots)
	spread := analysis.ComputeSpreadStats(snapshots)

	log.Info("summary",
		zap.Int("steps", result.Steps),
		zap.Int("events", result.EventsProcessed),
		zap.Int("trades", result.TradeCount),
		zap.Int64("volume", int64(result.TotalVolume)),
		zap.String("vwap", vwap.StringFixed(2)),
		zap.String("twap", twap.StringFixed(2)),
		zap.Float64("volatility", vol),
		zap.Float64("mean_spread", spread.Mean),
		zap.Float64("events_per_sec", result.EventsPerSecond),
		zap.Duration("wall", result.WallTime),
	)
	for _, st := range result.AgentStats {
		log.Info("agent",
			zap.Uint64("id", uint64(st.ID)),
			zap.String("name", st.Name),
			zap.Float64("pnl", st.PnL),
			zap.Int64("inventory", int64(st.Inventory)),
		)
	}
}
