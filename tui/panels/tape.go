package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/engine"
	"github.com/TanmayRanaware/market-microstructure-simulator/tui/styles"
)

// TapePanel displays the most recent trades, newest first.
type TapePanel struct {
	tape    *engine.TradeTape
	focused bool
	width   int
	height  int
}

// NewTapePanel creates a tape panel retaining the last capacity trades.
func NewTapePanel(capacity int) *TapePanel {
	return &TapePanel{tape: engine.NewTradeTape(capacity)}
}

// Init initializes the panel.
func (p *TapePanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *TapePanel) Update(msg tea.Msg) (*TapePanel, tea.Cmd) {
	return p, nil
}

// AddTrade appends a trade to the tape.
func (p *TapePanel) AddTrade(t book.Trade) {
	p.tape.Append(t)
}

// View renders the panel.
func (p *TapePanel) View() string {
	var content strings.Builder

	header := fmt.Sprintf("%12s %8s %8s", "Time", "Price", "Qty")
	content.WriteString(styles.HeaderStyle.Render(header))
	content.WriteString("\n")

	rows := p.height - 4
	if rows < 1 {
		rows = 1
	}
	// One extra so the oldest shown row still has a predecessor to tick
	// against.
	trades := p.tape.Last(rows + 1)
	first := 0
	if len(trades) > rows {
		first = 1
	}

	for i := len(trades) - 1; i >= first; i-- {
		t := trades[i]
		style := styles.PriceStyle
		if i > 0 {
			if t.Price > trades[i-1].Price {
				style = styles.PriceUpStyle
			} else if t.Price < trades[i-1].Price {
				style = styles.PriceDownStyle
			}
		}
		line := fmt.Sprintf("%12d %8d %8d", t.Timestamp, t.Price, t.Quantity)
		content.WriteString(style.Render(line))
		content.WriteString("\n")
	}
	if len(trades) == 0 {
		content.WriteString(styles.TimeStyle.Render("no trades yet"))
		content.WriteString("\n")
	}

	title := styles.RenderTitle("Trades", p.focused)
	body := lipgloss.JoinVertical(lipgloss.Left, title, content.String())
	return p.frame().Width(p.width - 2).Height(p.height - 2).Render(body)
}

// SetFocus sets the focus state.
func (p *TapePanel) SetFocus(focused bool) { p.focused = focused }

// SetSize sets the panel dimensions.
func (p *TapePanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

func (p *TapePanel) frame() lipgloss.Style {
	if p.focused {
		return styles.FocusedPanelStyle
	}
	return styles.PanelStyle
}
