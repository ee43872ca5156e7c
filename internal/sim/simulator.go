// Package sim runs the event loop that drives agents against the matching
// engine on a deterministic logical clock, and collects the trades, market
// snapshots and agent samples a run produces.
package sim

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/agent"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/analysis"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/engine"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/mmrand"
)

// Canonical agent ids used by Run.
const (
	MarketMakerAgentID book.AgentID = 1
	TakerAgentID       book.AgentID = 2
	NoiseTraderAgentID book.AgentID = 3
)

// RunResult summarises a completed run.
type RunResult struct {
	Steps           int
	EventsProcessed int
	TradeCount      int
	TotalVolume     book.Qty
	FinalSnapshot   book.MarketSnapshot
	AgentStats      []agent.Stats

	// SimulatedDuration is logical time elapsed, in nanoseconds.
	SimulatedDuration book.Timestamp
	WallTime          time.Duration
	EventsPerSecond   float64
}

// Simulator owns one market: an engine, a set of agents stepping on a shared
// logical clock, and a collector. Runs with the same config and agent set are
// bit-for-bit reproducible.
type Simulator struct {
	cfg       Config
	rng       *mmrand.RNG
	ids       *agent.IDSource
	engine    *engine.MatchingEngine
	manager   *agent.Manager
	collector *Collector
	log       *zap.Logger

	currentTime     book.Timestamp
	currentStep     int
	eventsProcessed int
	wallTime        time.Duration
}

// New creates a simulator with no agents installed. Use Run for the canonical
// maker/taker/noise population or AddAgent plus RunSteps for a custom one.
func New(cfg Config) *Simulator {
	cfg = cfg.withDefaults()
	return &Simulator{
		cfg:         cfg,
		rng:         mmrand.New(cfg.Seed),
		ids:         agent.NewIDSource(0),
		engine:      engine.NewMatchingEngine(),
		manager:     agent.NewManager(),
		collector:   NewCollector(),
		log:         zap.NewNop(),
		currentTime: cfg.StartTime,
	}
}

// SetLogger installs a logger for run progress. The default discards.
func (s *Simulator) SetLogger(log *zap.Logger) {
	if log != nil {
		s.log = log
	}
}

// Engine exposes the matching engine, e.g. as a MarketReader for agents.
func (s *Simulator) Engine() *engine.MatchingEngine { return s.engine }

// RNG exposes the shared agent RNG.
func (s *Simulator) RNG() *mmrand.RNG { return s.rng }

// IDs exposes the shared order id source.
func (s *Simulator) IDs() *agent.IDSource { return s.ids }

// Collector exposes the run's collected data.
func (s *Simulator) Collector() *Collector { return s.collector }

// Agents exposes the agent manager.
func (s *Simulator) Agents() *agent.Manager { return s.manager }

// CurrentTime returns the logical clock.
func (s *Simulator) CurrentTime() book.Timestamp { return s.currentTime }

// CurrentStep returns the number of steps executed so far.
func (s *Simulator) CurrentStep() int { return s.currentStep }

// EventsProcessed returns the number of agent events fed to the engine.
func (s *Simulator) EventsProcessed() int { return s.eventsProcessed }

// AddAgent installs an agent. Step order follows insertion order.
func (s *Simulator) AddAgent(a agent.Agent) { s.manager.Add(a) }

// Run installs the canonical three-agent population, if none is installed
// yet, and executes the given number of steps.
func (s *Simulator) Run(steps int) (RunResult, error) {
	s.InstallDefaultAgents()
	return s.RunSteps(steps)
}

// InstallDefaultAgents installs the canonical maker/taker/noise population.
// It is a no-op when agents are already installed.
func (s *Simulator) InstallDefaultAgents() {
	if len(s.manager.Agents()) > 0 {
		return
	}
	s.manager.Add(agent.NewMarketMaker(MarketMakerAgentID, "market_maker", s.cfg.Maker, s.rng, s.ids, s.engine))
	s.manager.Add(agent.NewTaker(TakerAgentID, "taker", s.cfg.Taker, s.rng, s.ids, s.engine))
	s.manager.Add(agent.NewNoiseTrader(NoiseTraderAgentID, "noise_trader", s.cfg.Noise, s.rng, s.ids, s.engine))
}

// RunWithAgents installs the given agents and executes steps. Use instead of
// Run for a custom population.
func (s *Simulator) RunWithAgents(steps int, agents []agent.Agent) (RunResult, error) {
	for _, a := range agents {
		s.manager.Add(a)
	}
	return s.RunSteps(steps)
}

// RunSteps executes steps ticks of the loop: collect agent events, feed them
// through the engine, fan out trades, and sample the market on the configured
// intervals. It can be called repeatedly; the clock carries across calls.
func (s *Simulator) RunSteps(steps int) (RunResult, error) {
	start := time.Now()
	s.log.Info("run starting",
		zap.Int("steps", steps),
		zap.Uint64("seed", s.cfg.Seed),
		zap.Int("agents", len(s.manager.Agents())),
	)

	for i := 0; i < steps; i++ {
		s.Step()
	}

	wall := time.Since(start)
	s.wallTime += wall
	result := RunResult{
		Steps:             steps,
		EventsProcessed:   s.eventsProcessed,
		TradeCount:        s.engine.TradeCount(),
		TotalVolume:       s.engine.TotalVolume(),
		FinalSnapshot:     s.engine.MarketSnapshot(s.currentTime),
		AgentStats:        s.manager.GetStats(),
		SimulatedDuration: s.currentTime - s.cfg.StartTime,
		WallTime:          wall,
	}
	if secs := wall.Seconds(); secs > 0 {
		result.EventsPerSecond = float64(s.eventsProcessed) / secs
	}

	s.log.Info("run finished",
		zap.Int("events", result.EventsProcessed),
		zap.Int("trades", result.TradeCount),
		zap.Int64("volume", int64(result.TotalVolume)),
		zap.Duration("wall", wall),
	)

	if s.cfg.OutputDir != "" {
		if err := s.collector.WriteCSV(s.cfg.OutputDir); err != nil {
			return result, fmt.Errorf("write output: %w", err)
		}
		s.log.Info("output written", zap.String("dir", s.cfg.OutputDir))
	}
	return result, nil
}

// Step advances the clock one tick and runs every agent against the engine.
// Callers driving the loop themselves (the server, the TUI) use this
// directly; batch runs go through RunSteps.
func (s *Simulator) Step() {
	ts := s.currentTime

	events := s.manager.Step(ts)
	trades := s.engine.ProcessEvents(events)
	s.eventsProcessed += len(events)

	for _, t := range trades {
		s.collector.RecordTrade(t)
		s.manager.NotifyTrade(t)
	}

	if s.currentStep%s.cfg.SnapshotInterval == 0 {
		s.collector.RecordSnapshot(s.engine.MarketSnapshot(ts))
	}
	if s.currentStep%s.cfg.AgentSampleInterval == 0 {
		for _, st := range s.manager.GetStats() {
			s.collector.RecordAgentSample(AgentSample{
				AgentID:   st.ID,
				Timestamp: ts,
				PnL:       st.PnL,
				Inventory: st.Inventory,
			})
		}
	}

	s.currentStep++
	s.currentTime += s.cfg.TimeStep
}

// Reset rewinds the simulator so the next run reproduces the last one: the
// book and trade list are cleared, agents reset, the RNG is reseeded and the
// id sequence restarts.
func (s *Simulator) Reset() {
	s.engine.Clear()
	s.manager.Reset()
	s.collector.Clear()
	s.rng.Seed(s.cfg.Seed)
	s.ids.Reset(0)
	s.currentTime = s.cfg.StartTime
	s.currentStep = 0
	s.eventsProcessed = 0
	s.wallTime = 0
}

// Stats summarises market quality for the run so far, computed over the
// collected snapshots. EventsPerSecond covers time spent inside RunSteps.
type Stats struct {
	AverageSpread   float64
	Volatility      float64
	EventsPerSecond float64
}

// Stats computes run statistics from the collector.
func (s *Simulator) Stats() Stats {
	snaps := s.collector.Snapshots()
	st := Stats{
		AverageSpread: analysis.ComputeSpreadStats(snaps).Mean,
		Volatility:    analysis.Volatility(snaps),
	}
	if s.wallTime > 0 {
		st.EventsPerSecond = float64(s.eventsProcessed) / s.wallTime.Seconds()
	}
	return st
}
