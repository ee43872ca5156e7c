package agent

import (
	"math"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/engine"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/mmrand"
)

// NoiseTraderConfig tunes the background-flow agent.
type NoiseTraderConfig struct {
	// LimitIntensity is the arrival rate of new limit orders.
	LimitIntensity float64
	// CancelIntensity is the rate of the independent cancel clock.
	CancelIntensity float64
	// QuantityMean and QuantityStd parameterise normal order sizes.
	QuantityMean float64
	QuantityStd  float64
	// PriceVolatility is the stddev of the normal offset applied to the
	// reference price when placing limits, in ticks.
	PriceVolatility float64
	// CancelProbability is the chance a firing cancel clock actually
	// cancels one tracked order.
	CancelProbability float64
	// ReferencePrice anchors limit placement while the book is empty.
	ReferencePrice book.Price
}

// DefaultNoiseTraderConfig returns the standard noise-trader parameters.
func DefaultNoiseTraderConfig() NoiseTraderConfig {
	return NoiseTraderConfig{
		LimitIntensity:    1.5,
		CancelIntensity:   0.7,
		QuantityMean:      30,
		QuantityStd:       8,
		PriceVolatility:   5,
		CancelProbability: 0.3,
		ReferencePrice:    10_000,
	}
}

// NoiseTrader sprinkles limit orders around the prevailing price and
// randomly cancels its own resting orders, supplying churn and book depth.
type NoiseTrader struct {
	id     book.AgentID
	name   string
	cfg    NoiseTraderConfig
	rng    *mmrand.RNG
	ids    *IDSource
	reader MarketReader

	position
	nextLimitTime  book.Timestamp
	nextCancelTime book.Timestamp

	// Own live orders, slice-ordered so random cancel selection is
	// deterministic under a fixed seed (map iteration would not be).
	activeIDs []book.OrderID
	active    map[book.OrderID]struct{}
}

// NewNoiseTrader creates a noise trader. rng and ids are shared across the
// simulation's agents.
func NewNoiseTrader(id book.AgentID, name string, cfg NoiseTraderConfig, rng *mmrand.RNG, ids *IDSource, reader MarketReader) *NoiseTrader {
	n := &NoiseTrader{id: id, name: name, cfg: cfg, rng: rng, ids: ids, reader: reader}
	n.position = newPosition()
	n.active = make(map[book.OrderID]struct{})
	return n
}

func (n *NoiseTrader) ID() book.AgentID { return n.id }
func (n *NoiseTrader) Name() string     { return n.name }

// Step may place one limit order and one cancel per tick, each on its own
// exponential clock.
func (n *NoiseTrader) Step(ts book.Timestamp) []engine.Event {
	var events []engine.Event

	if ts >= n.nextLimitTime {
		events = append(events, n.placeLimit(ts))
		n.nextLimitTime = ts + book.Timestamp(n.rng.Exponential(n.cfg.LimitIntensity)*interArrivalScale)
	}

	if ts >= n.nextCancelTime {
		if ev, ok := n.maybeCancel(ts); ok {
			events = append(events, ev)
		}
		n.nextCancelTime = ts + book.Timestamp(n.rng.Exponential(n.cfg.CancelIntensity)*interArrivalScale)
	}

	return events
}

func (n *NoiseTrader) placeLimit(ts book.Timestamp) engine.Event {
	side := book.SideSell
	if n.rng.Bernoulli(0.5) {
		side = book.SideBuy
	}
	qty := n.orderQuantity()
	price := n.limitPrice(ts)
	id := n.ids.Next()

	n.recordOrder(id, side)
	n.track(id)
	return engine.LimitEvent(id, side, price, qty, ts, n.id)
}

func (n *NoiseTrader) orderQuantity() book.Qty {
	q := math.Round(n.rng.Normal(n.cfg.QuantityMean, n.cfg.QuantityStd))
	if q < 1 {
		q = 1
	}
	return book.Qty(q)
}

// limitPrice draws a normal offset around the current mid, or the
// configured reference price while the book has no two-sided market.
func (n *NoiseTrader) limitPrice(ts book.Timestamp) book.Price {
	ref := n.reader.MarketSnapshot(ts).MidPrice()
	if ref <= 0 {
		ref = n.cfg.ReferencePrice
	}
	offset := math.Round(n.rng.Normal(0, n.cfg.PriceVolatility))
	price := ref + book.Price(offset)
	if price < 1 {
		price = 1
	}
	return price
}

func (n *NoiseTrader) maybeCancel(ts book.Timestamp) (engine.Event, bool) {
	if len(n.activeIDs) == 0 || !n.rng.Bernoulli(n.cfg.CancelProbability) {
		return engine.Event{}, false
	}
	idx := int(n.rng.UniformInt(0, int64(len(n.activeIDs)-1)))
	id := n.activeIDs[idx]
	n.untrack(id)
	return engine.CancelEvent(id, ts, n.id), true
}

func (n *NoiseTrader) track(id book.OrderID) {
	n.activeIDs = append(n.activeIDs, id)
	n.active[id] = struct{}{}
}

func (n *NoiseTrader) untrack(id book.OrderID) {
	if _, ok := n.active[id]; !ok {
		return
	}
	delete(n.active, id)
	for i, v := range n.activeIDs {
		if v == id {
			n.activeIDs = append(n.activeIDs[:i], n.activeIDs[i+1:]...)
			break
		}
	}
}

// OnTrade updates position and stops tracking makers that traded; a later
// cancel of a partially-filled survivor is handled by the engine either way.
func (n *NoiseTrader) OnTrade(t book.Trade) {
	n.applyTrade(t)
	n.untrack(t.MakerID)
}

func (n *NoiseTrader) PnL() float64        { return n.pnl }
func (n *NoiseTrader) Inventory() book.Qty { return n.inventory }

// Reset clears position, clocks and order tracking.
func (n *NoiseTrader) Reset() {
	n.position.reset()
	n.nextLimitTime = 0
	n.nextCancelTime = 0
	n.activeIDs = nil
	n.active = make(map[book.OrderID]struct{})
}
