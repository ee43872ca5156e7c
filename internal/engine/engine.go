// Package engine dispatches agent events into the order book and emits the
// resulting trades. It is single-threaded and synchronous: every event runs
// to completion, and observer callbacks fire in emission order before the
// call returns.
package engine

import (
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
)

// EventType discriminates the events agents can submit.
type EventType uint8

const (
	EventLimit EventType = iota
	EventMarket
	EventCancel
)

func (t EventType) String() string {
	switch t {
	case EventLimit:
		return "LIMIT"
	case EventMarket:
		return "MARKET"
	case EventCancel:
		return "CANCEL"
	default:
		return "UNKNOWN"
	}
}

// Event is the record agents submit to the engine. Price is ignored for
// market and cancel events, Quantity for cancels. AgentID is carried through
// for attribution only.
type Event struct {
	Type      EventType
	OrderID   book.OrderID
	Side      book.Side
	Price     book.Price
	Quantity  book.Qty
	Timestamp book.Timestamp
	AgentID   book.AgentID
}

// LimitEvent builds a limit order event.
func LimitEvent(id book.OrderID, side book.Side, price book.Price, qty book.Qty, ts book.Timestamp, agent book.AgentID) Event {
	return Event{Type: EventLimit, OrderID: id, Side: side, Price: price, Quantity: qty, Timestamp: ts, AgentID: agent}
}

// MarketEvent builds a market order event.
func MarketEvent(id book.OrderID, side book.Side, qty book.Qty, ts book.Timestamp, agent book.AgentID) Event {
	return Event{Type: EventMarket, OrderID: id, Side: side, Quantity: qty, Timestamp: ts, AgentID: agent}
}

// CancelEvent builds a cancel event. Side, price and quantity are ignored;
// the book's by-id index is authoritative.
func CancelEvent(id book.OrderID, ts book.Timestamp, agent book.AgentID) Event {
	return Event{Type: EventCancel, OrderID: id, Timestamp: ts, AgentID: agent}
}

// TradeObserver receives each emitted trade synchronously. The value must
// not be retained beyond the call.
type TradeObserver func(book.Trade)

// OrderObserver receives each successfully admitted resting order.
type OrderObserver func(book.Order)

// MatchingEngine routes events into the book, executes marketable-limit
// crossings, and keeps the aggregated trade list for the run.
type MatchingEngine struct {
	orderBook *book.OrderBook
	trades    []book.Trade

	onTrade TradeObserver
	onOrder OrderObserver
}

// NewMatchingEngine creates an engine over a fresh empty book.
func NewMatchingEngine() *MatchingEngine {
	return &MatchingEngine{orderBook: book.NewOrderBook()}
}

// SetTradeObserver installs the trade callback. Pass nil to remove it.
func (e *MatchingEngine) SetTradeObserver(fn TradeObserver) { e.onTrade = fn }

// SetOrderObserver installs the order callback. Pass nil to remove it.
func (e *MatchingEngine) SetOrderObserver(fn OrderObserver) { e.onOrder = fn }

// ProcessEvent applies one event and returns the trades it produced, in
// execution order. Malformed or unknown events produce zero trades and no
// state change; the engine is always ready for the next event.
func (e *MatchingEngine) ProcessEvent(ev Event) []book.Trade {
	switch ev.Type {
	case EventLimit:
		return e.processLimit(ev)
	case EventMarket:
		return e.processMarket(ev)
	case EventCancel:
		e.orderBook.CancelOrder(ev.OrderID)
		return nil
	default:
		return nil
	}
}

// ProcessEvents applies events in the supplied order and returns the flat
// concatenation of their trades.
func (e *MatchingEngine) ProcessEvents(events []Event) []book.Trade {
	var all []book.Trade
	for _, ev := range events {
		all = append(all, e.ProcessEvent(ev)...)
	}
	return all
}

// processLimit matches a marketable limit against the opposite side first,
// bounded by its own price, then admits only the unfilled residual. The
// just-arrived order can therefore never sit on the maker side of its own
// cross, and the top of book is never left crossed.
func (e *MatchingEngine) processLimit(ev Event) []book.Trade {
	if !book.ValidPrice(ev.Price) || !book.ValidQuantity(ev.Quantity) {
		return nil
	}
	if _, exists := e.orderBook.GetOrder(ev.OrderID); exists {
		return nil
	}

	var trades []book.Trade
	if e.crosses(ev) {
		trades = e.orderBook.MatchWithLimit(ev.Side, ev.Quantity, ev.OrderID, ev.Timestamp, ev.Price)
	}

	filled := book.Qty(0)
	for _, t := range trades {
		filled += t.Quantity
	}
	if residual := ev.Quantity - filled; residual > 0 {
		o := book.Order{
			ID:        ev.OrderID,
			Side:      ev.Side,
			Price:     ev.Price,
			Quantity:  residual,
			Timestamp: ev.Timestamp,
		}
		if e.orderBook.AddLimitOrder(o) && e.onOrder != nil {
			e.onOrder(o)
		}
	}

	e.record(trades)
	return trades
}

func (e *MatchingEngine) crosses(ev Event) bool {
	if ev.Side == book.SideBuy {
		ask, ok := e.orderBook.BestAskPrice()
		return ok && ev.Price >= ask
	}
	bid, ok := e.orderBook.BestBidPrice()
	return ok && ev.Price <= bid
}

func (e *MatchingEngine) processMarket(ev Event) []book.Trade {
	trades := e.orderBook.AddMarketOrder(ev.Side, ev.Quantity, ev.OrderID, ev.Timestamp)
	e.record(trades)
	return trades
}

func (e *MatchingEngine) record(trades []book.Trade) {
	if len(trades) == 0 {
		return
	}
	e.trades = append(e.trades, trades...)
	if e.onTrade != nil {
		for _, t := range trades {
			e.onTrade(t)
		}
	}
}

// Trades returns the aggregated trade list since the last Clear.
func (e *MatchingEngine) Trades() []book.Trade { return e.trades }

// MarketSnapshot returns the current top of book.
func (e *MatchingEngine) MarketSnapshot(ts book.Timestamp) book.MarketSnapshot {
	return e.orderBook.TopOfBook(ts)
}

// Depth returns up to levels rows per side of aggregated depth.
func (e *MatchingEngine) Depth(levels int) []book.PriceLevelSnapshot {
	return e.orderBook.Depth(levels)
}

// Book exposes the underlying order book for inspection.
func (e *MatchingEngine) Book() *book.OrderBook { return e.orderBook }

// OrderCount returns the number of resting orders.
func (e *MatchingEngine) OrderCount() int { return e.orderBook.Size() }

// LastTradePrice returns the most recent trade price, 0 if none.
func (e *MatchingEngine) LastTradePrice() book.Price { return e.orderBook.LastTradePrice() }

// TotalVolume returns the total traded quantity.
func (e *MatchingEngine) TotalVolume() book.Qty { return e.orderBook.TotalVolume() }

// TradeCount returns the number of trades emitted.
func (e *MatchingEngine) TradeCount() int { return e.orderBook.TradeCount() }

// Clear resets the book and the aggregated trade list.
func (e *MatchingEngine) Clear() {
	e.orderBook.Clear()
	e.trades = nil
}
