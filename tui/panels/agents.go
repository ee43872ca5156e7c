package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/agent"
	"github.com/TanmayRanaware/market-microstructure-simulator/tui/styles"
)

// AgentsPanel displays per-agent PnL and inventory.
type AgentsPanel struct {
	stats   []agent.Stats
	focused bool
	width   int
	height  int
}

// NewAgentsPanel creates a new agents panel.
func NewAgentsPanel() *AgentsPanel {
	return &AgentsPanel{}
}

// Init initializes the panel.
func (p *AgentsPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *AgentsPanel) Update(msg tea.Msg) (*AgentsPanel, tea.Cmd) {
	return p, nil
}

// SetStats installs the latest per-agent summaries.
func (p *AgentsPanel) SetStats(stats []agent.Stats) { p.stats = stats }

// View renders the panel.
func (p *AgentsPanel) View() string {
	var content strings.Builder

	header := fmt.Sprintf("%-14s %14s %10s", "Agent", "PnL", "Inv")
	content.WriteString(styles.HeaderStyle.Render(header))
	content.WriteString("\n")

	for _, st := range p.stats {
		style := styles.PriceUpStyle
		if st.PnL < 0 {
			style = styles.PriceDownStyle
		}
		line := fmt.Sprintf("%-14s %14.2f %10d", st.Name, st.PnL, st.Inventory)
		content.WriteString(style.Render(line))
		content.WriteString("\n")
	}
	if len(p.stats) == 0 {
		content.WriteString(styles.TimeStyle.Render("no agents"))
		content.WriteString("\n")
	}

	title := styles.RenderTitle("Agents", p.focused)
	body := lipgloss.JoinVertical(lipgloss.Left, title, content.String())
	return p.frame().Width(p.width - 2).Height(p.height - 2).Render(body)
}

// SetFocus sets the focus state.
func (p *AgentsPanel) SetFocus(focused bool) { p.focused = focused }

// SetSize sets the panel dimensions.
func (p *AgentsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

func (p *AgentsPanel) frame() lipgloss.Style {
	if p.focused {
		return styles.FocusedPanelStyle
	}
	return styles.PanelStyle
}
