package sim

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/agent"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
)

func TestRunWithAgentsAndStats(t *testing.T) {
	cfg := DefaultConfig()
	s := New(cfg)
	agents := []agent.Agent{
		agent.NewMarketMaker(1, "mm", cfg.Maker, s.RNG(), s.IDs(), s.Engine()),
		agent.NewTaker(2, "taker", cfg.Taker, s.RNG(), s.IDs(), s.Engine()),
	}

	result, err := s.RunWithAgents(20_000, agents)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TradeCount == 0 {
		t.Error("expected trades between maker and taker")
	}
	if len(result.AgentStats) != 2 {
		t.Errorf("expected 2 agents, got %d", len(result.AgentStats))
	}

	stats := s.Stats()
	if stats.AverageSpread <= 0 {
		t.Errorf("expected positive average spread, got %f", stats.AverageSpread)
	}
	if stats.EventsPerSecond <= 0 {
		t.Errorf("expected positive events/sec, got %f", stats.EventsPerSecond)
	}
}

func TestRunProducesActivity(t *testing.T) {
	cfg := DefaultConfig()
	s := New(cfg)

	result, err := s.Run(20_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.EventsProcessed == 0 {
		t.Error("expected events to be processed")
	}
	if result.TradeCount == 0 {
		t.Error("expected trades with the canonical agents")
	}
	if result.TotalVolume == 0 {
		t.Error("expected traded volume")
	}
	if result.SimulatedDuration != 20_000*cfg.TimeStep {
		t.Errorf("expected simulated duration %d, got %d", 20_000*cfg.TimeStep, result.SimulatedDuration)
	}
	if len(result.AgentStats) != 3 {
		t.Errorf("expected 3 agents, got %d", len(result.AgentStats))
	}
	if len(s.Collector().Trades()) != result.TradeCount {
		t.Errorf("expected collector to hold all %d trades, got %d",
			result.TradeCount, len(s.Collector().Trades()))
	}
}

func TestSamplingCadence(t *testing.T) {
	cfg := DefaultConfig()
	s := New(cfg)

	steps := 1_000
	if _, err := s.Run(steps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Snapshots fire on steps 0, 100, ... 900
	wantSnaps := steps / cfg.SnapshotInterval
	if got := len(s.Collector().Snapshots()); got != wantSnaps {
		t.Errorf("expected %d snapshots, got %d", wantSnaps, got)
	}

	// Agent samples fire on step 0 only within 1000 steps, one per agent
	wantSamples := (steps / cfg.AgentSampleInterval) * 3
	if got := len(s.Collector().AgentSamples()); got != wantSamples {
		t.Errorf("expected %d agent samples, got %d", wantSamples, got)
	}
}

func TestDeterminismAcrossInstances(t *testing.T) {
	run := func() []string {
		s := New(DefaultConfig())
		if _, err := s.Run(5_000); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		trades := s.Collector().Trades()
		out := make([]string, 0, len(trades))
		for _, tr := range trades {
			out = append(out, tradeKey(tr))
		}
		return out
	}

	a := run()
	b := run()
	if len(a) != len(b) {
		t.Fatalf("expected equal trade counts, got %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("trade %d differs: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestResetReproducesRun(t *testing.T) {
	s := New(DefaultConfig())
	if _, err := s.Run(5_000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := append([]string(nil), tradeKeys(s)...)

	s.Reset()
	if s.CurrentStep() != 0 || s.CurrentTime() != 0 || s.EventsProcessed() != 0 {
		t.Fatal("expected reset to rewind clock and counters")
	}
	if len(s.Collector().Trades()) != 0 {
		t.Fatal("expected reset to clear collected trades")
	}

	if _, err := s.Run(5_000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := tradeKeys(s)

	if len(first) != len(second) {
		t.Fatalf("expected identical trade counts, got %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("trade %d differs after reset: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	cfgA := DefaultConfig()
	cfgB := DefaultConfig()
	cfgB.Seed = 1234

	a := New(cfgA)
	b := New(cfgB)
	if _, err := a.Run(5_000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := b.Run(5_000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ka, kb := tradeKeys(a), tradeKeys(b)
	if len(ka) == len(kb) {
		same := true
		for i := range ka {
			if ka[i] != kb[i] {
				same = false
				break
			}
		}
		if same {
			t.Error("expected different seeds to produce different runs")
		}
	}
}

func TestWriteCSV(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutputDir = t.TempDir()
	s := New(cfg)
	if _, err := s.Run(10_000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		file   string
		header []string
	}{
		{"trades.csv", []string{"timestamp", "maker_id", "taker_id", "price", "quantity"}},
		{"market_snapshots.csv", []string{"timestamp", "best_bid", "best_ask", "best_bid_qty", "best_ask_qty", "last_trade_price"}},
		{"agent_pnl.csv", []string{"timestamp", "agent_id", "pnl", "inventory"}},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			f, err := os.Open(filepath.Join(cfg.OutputDir, tt.file))
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer f.Close()

			records, err := csv.NewReader(f).ReadAll()
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if len(records) < 2 {
				t.Fatalf("expected header plus data rows, got %d rows", len(records))
			}
			for i, col := range tt.header {
				if records[0][i] != col {
					t.Errorf("header column %d: expected %s, got %s", i, col, records[0][i])
				}
			}
		})
	}
}

func tradeKey(tr book.Trade) string {
	return fmt.Sprintf("%d/%d/%d/%d/%d", tr.Timestamp, tr.MakerID, tr.TakerID, tr.Price, tr.Quantity)
}

func tradeKeys(s *Simulator) []string {
	trades := s.Collector().Trades()
	out := make([]string, 0, len(trades))
	for _, tr := range trades {
		out = append(out, tradeKey(tr))
	}
	return out
}
