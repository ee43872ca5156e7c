// Command mms-tui runs the simulation behind a live terminal dashboard.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/config"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/sim"
	"github.com/TanmayRanaware/market-microstructure-simulator/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "mms-tui:", err)
		os.Exit(1)
	}

	seed := flag.Uint64("seed", cfg.Sim.Seed, "RNG seed")
	stepsPerTick := flag.Int("speed", 100, "simulation steps per refresh tick")
	flag.Parse()

	cfg.Sim.Seed = *seed
	// The dashboard renders live; CSV dumps are the headless runner's job.
	cfg.Sim.OutputDir = ""

	simulator := sim.New(cfg.Sim)
	simulator.InstallDefaultAgents()

	model := tui.NewModel(simulator, *stepsPerTick)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "mms-tui:", err)
		os.Exit(1)
	}
}
