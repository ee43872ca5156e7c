package agent

import (
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/engine"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/mmrand"
)

// MarketMakerConfig tunes the liquidity-providing agent.
type MarketMakerConfig struct {
	// Spread is the full quoted bid-ask spread in ticks.
	Spread book.Price
	// Quantity is the size of each quote.
	Quantity book.Qty
	// RefreshInterval is how often quotes are cancelled and replaced, in
	// simulation nanoseconds.
	RefreshInterval book.Timestamp
	// MaxInventory is the position size past half of which quotes skew.
	MaxInventory book.Qty
	// InventoryPenalty is deducted from PnL per unit of absolute inventory
	// on each own fill.
	InventoryPenalty float64
	// ReferencePrice anchors quotes while the book is empty.
	ReferencePrice book.Price
}

// DefaultMarketMakerConfig returns the standard maker parameters.
func DefaultMarketMakerConfig() MarketMakerConfig {
	return MarketMakerConfig{
		Spread:           2,
		Quantity:         50,
		RefreshInterval:  50_000,
		MaxInventory:     1000,
		InventoryPenalty: 0.001,
		ReferencePrice:   10_000,
	}
}

// MarketMaker quotes a symmetric bid and ask around the mid price,
// refreshing on a fixed interval and skewing quotes when inventory builds.
type MarketMaker struct {
	id     book.AgentID
	name   string
	cfg    MarketMakerConfig
	rng    *mmrand.RNG
	ids    *IDSource
	reader MarketReader

	position
	lastRefresh book.Timestamp
	quoted      bool
	currentBid  book.Price
	currentAsk  book.Price
	bidOrderID  book.OrderID
	askOrderID  book.OrderID
}

// NewMarketMaker creates a market maker. rng and ids are shared across the
// simulation's agents.
func NewMarketMaker(id book.AgentID, name string, cfg MarketMakerConfig, rng *mmrand.RNG, ids *IDSource, reader MarketReader) *MarketMaker {
	m := &MarketMaker{id: id, name: name, cfg: cfg, rng: rng, ids: ids, reader: reader}
	m.position = newPosition()
	return m
}

func (m *MarketMaker) ID() book.AgentID { return m.id }
func (m *MarketMaker) Name() string     { return m.name }

// Step refreshes quotes when due: cancel both standing quotes, then place a
// fresh bid and ask around the current mid.
func (m *MarketMaker) Step(ts book.Timestamp) []engine.Event {
	if m.quoted && ts-m.lastRefresh < m.cfg.RefreshInterval {
		return nil
	}

	mid := m.reader.MarketSnapshot(ts).MidPrice()
	if mid <= 0 {
		mid = m.cfg.ReferencePrice
	}
	m.updateQuotes(mid)

	var events []engine.Event
	if m.bidOrderID != 0 {
		events = append(events, engine.CancelEvent(m.bidOrderID, ts, m.id))
		m.forget(m.bidOrderID)
		m.bidOrderID = 0
	}
	if m.askOrderID != 0 {
		events = append(events, engine.CancelEvent(m.askOrderID, ts, m.id))
		m.forget(m.askOrderID)
		m.askOrderID = 0
	}

	m.bidOrderID = m.ids.Next()
	m.recordOrder(m.bidOrderID, book.SideBuy)
	events = append(events, engine.LimitEvent(m.bidOrderID, book.SideBuy, m.currentBid, m.cfg.Quantity, ts, m.id))

	m.askOrderID = m.ids.Next()
	m.recordOrder(m.askOrderID, book.SideSell)
	events = append(events, engine.LimitEvent(m.askOrderID, book.SideSell, m.currentAsk, m.cfg.Quantity, ts, m.id))

	m.lastRefresh = ts
	m.quoted = true
	return events
}

func (m *MarketMaker) updateQuotes(mid book.Price) {
	halfSpread := m.cfg.Spread / 2
	if halfSpread < 1 {
		halfSpread = 1
	}
	m.currentBid = mid - halfSpread
	m.currentAsk = mid + halfSpread

	// Skew once inventory passes half the cap: lean quotes to unwind.
	inv := m.inventory
	if inv < 0 {
		inv = -inv
	}
	if inv > m.cfg.MaxInventory/2 {
		if m.inventory > 0 {
			m.currentAsk -= halfSpread / 2
		} else {
			m.currentBid += halfSpread / 2
		}
	}
	if m.currentBid < 1 {
		m.currentBid = 1
	}
	if m.currentAsk <= m.currentBid {
		m.currentAsk = m.currentBid + 1
	}
}

// OnTrade updates position for own fills and applies the inventory penalty.
func (m *MarketMaker) OnTrade(t book.Trade) {
	if !m.applyTrade(t) {
		return
	}
	// Quote ids are kept until the next refresh even when fully filled;
	// cancelling an already-consumed id is a silent no-op at the engine.
	inv := float64(m.inventory)
	if inv < 0 {
		inv = -inv
	}
	m.pnl -= inv * m.cfg.InventoryPenalty
}

func (m *MarketMaker) PnL() float64        { return m.pnl }
func (m *MarketMaker) Inventory() book.Qty { return m.inventory }

// BidPrice returns the current quoted bid.
func (m *MarketMaker) BidPrice() book.Price { return m.currentBid }

// AskPrice returns the current quoted ask.
func (m *MarketMaker) AskPrice() book.Price { return m.currentAsk }

// Reset clears all quoting and position state.
func (m *MarketMaker) Reset() {
	m.position.reset()
	m.lastRefresh = 0
	m.quoted = false
	m.currentBid = 0
	m.currentAsk = 0
	m.bidOrderID = 0
	m.askOrderID = 0
}
