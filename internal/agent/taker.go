package agent

import (
	"math"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/engine"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/mmrand"
)

// interArrivalScale converts exponential draws to simulation nanoseconds.
const interArrivalScale = 1_000_000

// TakerConfig tunes the liquidity-consuming agent.
type TakerConfig struct {
	// Intensity is the arrival rate of the Poisson order process.
	Intensity float64
	// SideBias is the probability an order is a buy. 0.5 is neutral.
	SideBias float64
	// QuantityMean and QuantityStd parameterise normal order sizes.
	QuantityMean float64
	QuantityStd  float64
	// UseMarketOrders selects pure market orders; otherwise the taker sends
	// aggressive limits one tick through the opposite touch.
	UseMarketOrders bool
	// ReferencePrice anchors aggressive limits while the book is empty.
	ReferencePrice book.Price
}

// DefaultTakerConfig returns the standard taker parameters.
func DefaultTakerConfig() TakerConfig {
	return TakerConfig{
		Intensity:       0.8,
		SideBias:        0.5,
		QuantityMean:    40,
		QuantityStd:     10,
		UseMarketOrders: true,
		ReferencePrice:  10_000,
	}
}

// Taker submits orders on a Poisson clock, consuming whatever liquidity is
// resting at the touch.
type Taker struct {
	id     book.AgentID
	name   string
	cfg    TakerConfig
	rng    *mmrand.RNG
	ids    *IDSource
	reader MarketReader

	position
	nextOrderTime book.Timestamp
}

// NewTaker creates a taker. rng and ids are shared across the simulation's
// agents.
func NewTaker(id book.AgentID, name string, cfg TakerConfig, rng *mmrand.RNG, ids *IDSource, reader MarketReader) *Taker {
	t := &Taker{id: id, name: name, cfg: cfg, rng: rng, ids: ids, reader: reader}
	t.position = newPosition()
	return t
}

func (t *Taker) ID() book.AgentID { return t.id }
func (t *Taker) Name() string     { return t.name }

// Step emits at most one order per tick, when the arrival clock has fired.
func (t *Taker) Step(ts book.Timestamp) []engine.Event {
	if ts < t.nextOrderTime {
		return nil
	}
	t.nextOrderTime = ts + book.Timestamp(t.rng.Exponential(t.cfg.Intensity)*interArrivalScale)

	qty := t.orderQuantity()
	side := book.SideSell
	if t.rng.Bernoulli(t.cfg.SideBias) {
		side = book.SideBuy
	}
	id := t.ids.Next()
	t.recordOrder(id, side)

	if t.cfg.UseMarketOrders {
		return []engine.Event{engine.MarketEvent(id, side, qty, ts, t.id)}
	}
	return []engine.Event{engine.LimitEvent(id, side, t.aggressivePrice(side, ts), qty, ts, t.id)}
}

func (t *Taker) orderQuantity() book.Qty {
	q := math.Round(t.rng.Normal(t.cfg.QuantityMean, t.cfg.QuantityStd))
	if q < 1 {
		q = 1
	}
	return book.Qty(q)
}

// aggressivePrice crosses the spread by one tick, falling back to the
// reference price when the opposite side is empty.
func (t *Taker) aggressivePrice(side book.Side, ts book.Timestamp) book.Price {
	snap := t.reader.MarketSnapshot(ts)
	if side == book.SideBuy {
		if snap.BestAsk > 0 {
			return snap.BestAsk + 1
		}
		return t.cfg.ReferencePrice + 1
	}
	if snap.BestBid > 0 {
		p := snap.BestBid - 1
		if p < 1 {
			p = 1
		}
		return p
	}
	return t.cfg.ReferencePrice - 1
}

// OnTrade updates position for fills where this taker was on either side.
func (t *Taker) OnTrade(tr book.Trade) {
	t.applyTrade(tr)
}

func (t *Taker) PnL() float64        { return t.pnl }
func (t *Taker) Inventory() book.Qty { return t.inventory }

// Reset clears position and the arrival clock.
func (t *Taker) Reset() {
	t.position.reset()
	t.nextOrderTime = 0
}
