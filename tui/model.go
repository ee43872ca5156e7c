// Package tui is the terminal dashboard: a live view of the book ladder,
// trade tape, market statistics and agent PnL while the simulation runs.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/sim"
	"github.com/TanmayRanaware/market-microstructure-simulator/tui/panels"
	"github.com/TanmayRanaware/market-microstructure-simulator/tui/styles"
)

// PanelFocus represents which panel is currently focused.
type PanelFocus int

const (
	FocusDepth  PanelFocus = 0
	FocusTape   PanelFocus = 1
	FocusStats  PanelFocus = 2
	FocusAgents PanelFocus = 3

	panelCount = 4
)

const (
	tapeCapacity    = 256
	depthLevels     = 10
	minStepsPerTick = 10
	maxStepsPerTick = 10_000
)

// keyMap holds the dashboard's key bindings.
type keyMap struct {
	Quit      key.Binding
	NextPanel key.Binding
	PrevPanel key.Binding
	Pause     key.Binding
	Faster    key.Binding
	Slower    key.Binding
}

var keys = keyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c")),
	NextPanel: key.NewBinding(key.WithKeys("tab")),
	PrevPanel: key.NewBinding(key.WithKeys("shift+tab")),
	Pause:     key.NewBinding(key.WithKeys(" ")),
	Faster:    key.NewBinding(key.WithKeys("+", "=")),
	Slower:    key.NewBinding(key.WithKeys("-")),
}

// Model is the main TUI application model. It owns the simulator and advances
// it from the refresh tick, so all simulation access stays on the bubbletea
// goroutine.
type Model struct {
	simulator    *sim.Simulator
	stepsPerTick int
	paused       bool

	// Running VWAP accumulators, updated from the trade observer.
	notional decimal.Decimal
	volume   decimal.Decimal

	depthPanel  *panels.DepthPanel
	tapePanel   *panels.TapePanel
	statsPanel  *panels.StatsPanel
	agentsPanel *panels.AgentsPanel

	focusedPanel PanelFocus

	width  int
	height int

	statusMsg string
	ready     bool
}

// NewModel creates a TUI model around a simulator. Agents must already be
// installed; the model only steps and renders.
func NewModel(simulator *sim.Simulator, stepsPerTick int) *Model {
	if stepsPerTick <= 0 {
		stepsPerTick = 100
	}
	m := &Model{
		simulator:    simulator,
		stepsPerTick: stepsPerTick,
		notional:     decimal.Zero,
		volume:       decimal.Zero,
		depthPanel:   panels.NewDepthPanel(),
		tapePanel:    panels.NewTapePanel(tapeCapacity),
		statsPanel:   panels.NewStatsPanel(),
		agentsPanel:  panels.NewAgentsPanel(),
		focusedPanel: FocusDepth,
	}

	simulator.Engine().SetTradeObserver(func(t book.Trade) {
		m.tapePanel.AddTrade(t)
		p := decimal.NewFromInt(int64(t.Price))
		q := decimal.NewFromInt(int64(t.Quantity))
		m.notional = m.notional.Add(p.Mul(q))
		m.volume = m.volume.Add(q)
	})
	return m
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.depthPanel.Init(),
		m.tapePanel.Init(),
		m.statsPanel.Init(),
		m.agentsPanel.Init(),
		m.tickRefresh(),
	)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.NextPanel):
			m.focusedPanel = (m.focusedPanel + 1) % panelCount

		case key.Matches(msg, keys.PrevPanel):
			m.focusedPanel--
			if m.focusedPanel < 0 {
				m.focusedPanel = panelCount - 1
			}

		case key.Matches(msg, keys.Pause):
			m.paused = !m.paused
			if m.paused {
				m.statusMsg = "paused"
			} else {
				m.statusMsg = ""
			}

		case key.Matches(msg, keys.Faster):
			if m.stepsPerTick*2 <= maxStepsPerTick {
				m.stepsPerTick *= 2
			}
		case key.Matches(msg, keys.Slower):
			if m.stepsPerTick/2 >= minStepsPerTick {
				m.stepsPerTick /= 2
			}

		default:
			switch msg.String() {
			case "f1":
				m.focusedPanel = FocusDepth
			case "f2":
				m.focusedPanel = FocusTape
			case "f3":
				m.focusedPanel = FocusStats
			case "f4":
				m.focusedPanel = FocusAgents
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case tickMsg:
		if !m.paused {
			for i := 0; i < m.stepsPerTick; i++ {
				m.simulator.Step()
			}
		}
		m.refreshPanels()
		cmds = append(cmds, m.tickRefresh())
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) refreshPanels() {
	eng := m.simulator.Engine()
	ts := m.simulator.CurrentTime()

	m.depthPanel.SetDepth(eng.Depth(depthLevels))

	vwap := "-"
	if !m.volume.IsZero() {
		vwap = m.notional.Div(m.volume).StringFixed(2)
	}
	m.statsPanel.SetStats(panels.MarketStats{
		Snapshot: eng.MarketSnapshot(ts),
		Step:     m.simulator.CurrentStep(),
		Events:   m.simulator.EventsProcessed(),
		Trades:   eng.TradeCount(),
		Volume:   eng.TotalVolume(),
		VWAP:     vwap,
		Orders:   eng.OrderCount(),
	})

	m.agentsPanel.SetStats(m.simulator.Agents().GetStats())
}

// View renders the UI.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	m.depthPanel.SetFocus(m.focusedPanel == FocusDepth)
	m.tapePanel.SetFocus(m.focusedPanel == FocusTape)
	m.statsPanel.SetFocus(m.focusedPanel == FocusStats)
	m.agentsPanel.SetFocus(m.focusedPanel == FocusAgents)

	// Layout:
	// ┌───────────────────┬─────────────┐
	// │       Depth       │   Trades    │
	// ├─────────┬─────────┴─────────────┤
	// │ Market  │        Agents         │
	// └─────────┴───────────────────────┘

	leftWidth := m.width * 3 / 5
	rightWidth := m.width - leftWidth

	topHeight := (m.height - 3) * 3 / 5
	bottomHeight := m.height - topHeight - 3

	m.depthPanel.SetSize(leftWidth, topHeight)
	m.tapePanel.SetSize(rightWidth, topHeight)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.depthPanel.View(),
		m.tapePanel.View(),
	)

	statsWidth := m.width * 2 / 5
	m.statsPanel.SetSize(statsWidth, bottomHeight)
	m.agentsPanel.SetSize(m.width-statsWidth, bottomHeight)

	bottomRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.statsPanel.View(),
		m.agentsPanel.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, topRow, bottomRow, m.renderStatusBar())
}

func (m *Model) renderStatusBar() string {
	help := []string{
		styles.StatusBarKeyStyle.Render("F1-F4") + styles.StatusBarDescStyle.Render(" panels"),
		styles.StatusBarKeyStyle.Render("space") + styles.StatusBarDescStyle.Render(" pause"),
		styles.StatusBarKeyStyle.Render("+/-") + styles.StatusBarDescStyle.Render(" speed"),
		styles.StatusBarKeyStyle.Render("q") + styles.StatusBarDescStyle.Render(" quit"),
	}

	helpStr := lipgloss.JoinHorizontal(lipgloss.Center, help[0], " │ ", help[1], " │ ", help[2], " │ ", help[3])

	status := ""
	if m.statusMsg != "" {
		status = " │ " + m.statusMsg
	}

	return styles.StatusBarStyle.Width(m.width).Render(helpStr + status)
}

// tickMsg is sent periodically to advance the simulation and refresh data.
type tickMsg struct{}

func (m *Model) tickRefresh() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}
