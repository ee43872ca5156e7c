package sim

import (
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/agent"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
)

// Config drives a simulation run.
type Config struct {
	// Seed seeds the shared agent RNG.
	Seed uint64
	// StartTime is the logical time of step 0, in nanoseconds.
	StartTime book.Timestamp
	// TimeStep is the logical time advanced per step, in nanoseconds.
	TimeStep book.Timestamp
	// SnapshotInterval is how many steps pass between market snapshots.
	SnapshotInterval int
	// AgentSampleInterval is how many steps pass between PnL samples.
	AgentSampleInterval int
	// OutputDir receives the CSV dumps after a run; empty disables them.
	OutputDir string

	// Canonical agent parameters, used by Run.
	Maker agent.MarketMakerConfig
	Taker agent.TakerConfig
	Noise agent.NoiseTraderConfig
}

// DefaultConfig returns the standard simulation parameters.
func DefaultConfig() Config {
	return Config{
		Seed:                42,
		StartTime:           0,
		TimeStep:            1000,
		SnapshotInterval:    100,
		AgentSampleInterval: 1000,
		Maker:               agent.DefaultMarketMakerConfig(),
		Taker:               agent.DefaultTakerConfig(),
		Noise:               agent.DefaultNoiseTraderConfig(),
	}
}

func (c Config) withDefaults() Config {
	if c.TimeStep <= 0 {
		c.TimeStep = DefaultConfig().TimeStep
	}
	if c.SnapshotInterval <= 0 {
		c.SnapshotInterval = DefaultConfig().SnapshotInterval
	}
	if c.AgentSampleInterval <= 0 {
		c.AgentSampleInterval = DefaultConfig().AgentSampleInterval
	}
	return c
}
