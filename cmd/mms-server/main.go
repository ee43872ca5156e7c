// Command mms-server runs the simulation behind an HTTP server: JSON market
// state, WebSocket trade and book streams, and Prometheus metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/config"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/server"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/sim"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mms-server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	addr := flag.String("addr", cfg.Server.Addr, "listen address")
	seed := flag.Uint64("seed", cfg.Sim.Seed, "RNG seed")
	logLevel := flag.String("log-level", cfg.Logging.Level, "log level")
	flag.Parse()

	cfg.Server.Addr = *addr
	cfg.Sim.Seed = *seed
	cfg.Logging.Level = *logLevel
	// The server streams state live; CSV dumps are the headless runner's job.
	cfg.Sim.OutputDir = ""

	log, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	simulator := sim.New(cfg.Sim)
	simulator.SetLogger(log)

	opts := server.DefaultOptions()
	opts.Addr = cfg.Server.Addr
	opts.DepthLimit = cfg.Server.DepthLimit
	srv := server.New(simulator, log, opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
