// Package agent implements the synthetic trading agents that drive the
// simulation: a market maker, a liquidity taker and a noise trader. Agents
// emit ordered event sequences tagged with their agent id and consume trade
// notifications; they never touch the book directly.
package agent

import (
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/engine"
)

// MarketReader is the narrow read surface agents get on the market.
// The matching engine satisfies it.
type MarketReader interface {
	MarketSnapshot(ts book.Timestamp) book.MarketSnapshot
}

// Agent is one synthetic trader. Step is called once per tick in a fixed
// order across agents; the events it returns are submitted to the engine in
// that order. OnTrade is called for every trade in the market, whether or
// not the agent participated.
type Agent interface {
	ID() book.AgentID
	Name() string
	Step(ts book.Timestamp) []engine.Event
	OnTrade(t book.Trade)
	PnL() float64
	Inventory() book.Qty
	Reset()
}

// IDSource hands out monotonically increasing order ids. One source is
// shared by all agents in a simulation so ids never collide and the
// sequence is reproducible.
type IDSource struct {
	next uint64
}

// NewIDSource creates a source whose first id is start+1.
func NewIDSource(start uint64) *IDSource {
	return &IDSource{next: start}
}

// Next returns the next order id.
func (s *IDSource) Next() book.OrderID {
	s.next++
	return book.OrderID(s.next)
}

// Reset rewinds the source so a re-run reproduces the same id sequence.
func (s *IDSource) Reset(start uint64) {
	s.next = start
}

// position tracks an agent's inventory and cash PnL and attributes fills.
// The convention: a buy fill increases inventory by q and decreases PnL by
// price*q; a sell fill does the reverse. Fills are attributed by matching
// the trade's maker or taker order id against orders this agent emitted.
type position struct {
	pnl       float64
	inventory book.Qty
	placed    map[book.OrderID]book.Side
}

func newPosition() position {
	return position{placed: make(map[book.OrderID]book.Side)}
}

func (p *position) recordOrder(id book.OrderID, side book.Side) {
	p.placed[id] = side
}

func (p *position) forget(id book.OrderID) {
	delete(p.placed, id)
}

// applyTrade updates inventory and PnL for each side of the trade this
// agent owns. Returns true if the trade touched one of our orders.
func (p *position) applyTrade(t book.Trade) bool {
	touched := false
	if side, ok := p.placed[t.MakerID]; ok {
		p.applyFill(side, t.Price, t.Quantity)
		touched = true
	}
	if side, ok := p.placed[t.TakerID]; ok {
		p.applyFill(side, t.Price, t.Quantity)
		touched = true
	}
	return touched
}

func (p *position) applyFill(side book.Side, price book.Price, qty book.Qty) {
	notional := float64(price) * float64(qty)
	if side == book.SideBuy {
		p.inventory += qty
		p.pnl -= notional
	} else {
		p.inventory -= qty
		p.pnl += notional
	}
}

func (p *position) reset() {
	p.pnl = 0
	p.inventory = 0
	p.placed = make(map[book.OrderID]book.Side)
}
