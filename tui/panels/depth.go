package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
	"github.com/TanmayRanaware/market-microstructure-simulator/tui/styles"
)

// DepthPanel displays the aggregated book ladder, bids and asks side by side.
type DepthPanel struct {
	bids      []book.PriceLevelSnapshot
	asks      []book.PriceLevelSnapshot
	focused   bool
	width     int
	height    int
	maxLevels int
}

// NewDepthPanel creates a new depth panel.
func NewDepthPanel() *DepthPanel {
	return &DepthPanel{maxLevels: 10}
}

// Init initializes the panel.
func (p *DepthPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *DepthPanel) Update(msg tea.Msg) (*DepthPanel, tea.Cmd) {
	return p, nil
}

// SetDepth installs the ladder rows. Rows carry exactly one populated side;
// this splits them back out, best first on each side.
func (p *DepthPanel) SetDepth(rows []book.PriceLevelSnapshot) {
	p.bids = p.bids[:0]
	p.asks = p.asks[:0]
	for _, row := range rows {
		if row.BidQuantity > 0 {
			p.bids = append(p.bids, row)
		} else {
			p.asks = append(p.asks, row)
		}
	}
}

// View renders the panel.
func (p *DepthPanel) View() string {
	var content strings.Builder

	availableHeight := p.height - 4
	levelsToShow := availableHeight
	if levelsToShow > p.maxLevels {
		levelsToShow = p.maxLevels
	}
	if levelsToShow < 3 {
		levelsToShow = 3
	}

	header := fmt.Sprintf("%8s %8s │ %-8s %-8s", "BidQty", "Bid", "Ask", "AskQty")
	content.WriteString(styles.HeaderStyle.Render(header))
	content.WriteString("\n")

	bids := p.bids
	if len(bids) > levelsToShow {
		bids = bids[:levelsToShow]
	}
	asks := p.asks
	if len(asks) > levelsToShow {
		asks = asks[:levelsToShow]
	}

	maxRows := len(bids)
	if len(asks) > maxRows {
		maxRows = len(asks)
	}

	for i := 0; i < maxRows; i++ {
		bidPart := fmt.Sprintf("%8s %8s", "", "")
		askPart := fmt.Sprintf("%-8s %-8s", "", "")
		if i < len(bids) {
			bidPart = fmt.Sprintf("%8d %8d", bids[i].BidQuantity, bids[i].Price)
		}
		if i < len(asks) {
			askPart = fmt.Sprintf("%-8d %-8d", asks[i].Price, asks[i].AskQuantity)
		}
		content.WriteString(styles.BuyStyle.Render(bidPart))
		content.WriteString(" │ ")
		content.WriteString(styles.SellStyle.Render(askPart))
		content.WriteString("\n")
	}
	if maxRows == 0 {
		content.WriteString(styles.TimeStyle.Render("empty book"))
		content.WriteString("\n")
	}

	title := styles.RenderTitle("Depth", p.focused)
	body := lipgloss.JoinVertical(lipgloss.Left, title, content.String())
	return p.frame().Width(p.width - 2).Height(p.height - 2).Render(body)
}

// SetFocus sets the focus state.
func (p *DepthPanel) SetFocus(focused bool) { p.focused = focused }

// SetSize sets the panel dimensions.
func (p *DepthPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

func (p *DepthPanel) frame() lipgloss.Style {
	if p.focused {
		return styles.FocusedPanelStyle
	}
	return styles.PanelStyle
}
