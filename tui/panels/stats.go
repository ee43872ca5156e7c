package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
	"github.com/TanmayRanaware/market-microstructure-simulator/tui/styles"
)

// MarketStats is the summary the stats panel displays.
type MarketStats struct {
	Snapshot book.MarketSnapshot
	Step     int
	Events   int
	Trades   int
	Volume   book.Qty
	VWAP     string
	Orders   int
}

// StatsPanel displays run-level market statistics.
type StatsPanel struct {
	stats   MarketStats
	focused bool
	width   int
	height  int
}

// NewStatsPanel creates a new stats panel.
func NewStatsPanel() *StatsPanel {
	return &StatsPanel{}
}

// Init initializes the panel.
func (p *StatsPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *StatsPanel) Update(msg tea.Msg) (*StatsPanel, tea.Cmd) {
	return p, nil
}

// SetStats installs the latest summary.
func (p *StatsPanel) SetStats(stats MarketStats) { p.stats = stats }

// View renders the panel.
func (p *StatsPanel) View() string {
	var content strings.Builder
	s := p.stats
	snap := s.Snapshot

	row := func(label, value string) {
		content.WriteString(styles.HeaderStyle.Render(fmt.Sprintf("%-10s", label)))
		content.WriteString(styles.ValueStyle.Render(value))
		content.WriteString("\n")
	}

	row("Step", fmt.Sprintf("%d", s.Step))
	row("Mid", fmt.Sprintf("%d", snap.MidPrice()))
	row("Spread", fmt.Sprintf("%d", snap.Spread()))
	row("Last", fmt.Sprintf("%d", snap.LastTradePrice))
	row("VWAP", s.VWAP)
	row("Orders", fmt.Sprintf("%d", s.Orders))
	row("Events", fmt.Sprintf("%d", s.Events))
	row("Trades", fmt.Sprintf("%d", s.Trades))
	row("Volume", fmt.Sprintf("%d", s.Volume))

	title := styles.RenderTitle("Market", p.focused)
	body := lipgloss.JoinVertical(lipgloss.Left, title, content.String())
	return p.frame().Width(p.width - 2).Height(p.height - 2).Render(body)
}

// SetFocus sets the focus state.
func (p *StatsPanel) SetFocus(focused bool) { p.focused = focused }

// SetSize sets the panel dimensions.
func (p *StatsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

func (p *StatsPanel) frame() lipgloss.Style {
	if p.focused {
		return styles.FocusedPanelStyle
	}
	return styles.PanelStyle
}
