package book

import "github.com/google/btree"

const treeDegree = 8

// priceLevel pairs a price with its FIFO queue. Tree items are pointers so
// the queue can be mutated in place while the level stays indexed.
type priceLevel struct {
	price Price
	queue PriceLevelQueue
}

// bookSide is one half of the book: a balanced tree of price levels ordered
// best-first (descending for bids, ascending for asks) plus a price map for
// O(1) level lookup on the cancel path.
type bookSide struct {
	side   Side
	tree   *btree.BTreeG[*priceLevel]
	levels map[Price]*priceLevel
}

func newBookSide(side Side) *bookSide {
	less := func(a, b *priceLevel) bool { return a.price < b.price }
	if side == SideBuy {
		less = func(a, b *priceLevel) bool { return a.price > b.price }
	}
	return &bookSide{
		side:   side,
		tree:   btree.NewG(treeDegree, less),
		levels: make(map[Price]*priceLevel),
	}
}

// best returns the best-priced level, or nil when the side is empty.
func (bs *bookSide) best() *priceLevel {
	l, ok := bs.tree.Min()
	if !ok {
		return nil
	}
	return l
}

func (bs *bookSide) getOrCreate(price Price) *priceLevel {
	if l, ok := bs.levels[price]; ok {
		return l
	}
	l := &priceLevel{price: price}
	bs.levels[price] = l
	bs.tree.ReplaceOrInsert(l)
	return l
}

func (bs *bookSide) removeLevel(l *priceLevel) {
	delete(bs.levels, l.price)
	bs.tree.Delete(l)
}

func (bs *bookSide) empty() bool { return bs.tree.Len() == 0 }

// orderRef locates a resting order for cancellation.
type orderRef struct {
	price Price
	side  Side
}

// OrderBook is a single-instrument central limit order book with price-time
// priority. It is not safe for concurrent use; the matching engine drives it
// from a single goroutine.
type OrderBook struct {
	bids *bookSide
	asks *bookSide
	byID map[OrderID]orderRef

	size           int
	lastTradePrice Price
	totalVolume    Qty
	tradeCount     int
}

// NewOrderBook creates an empty order book.
func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids: newBookSide(SideBuy),
		asks: newBookSide(SideSell),
		byID: make(map[OrderID]orderRef),
	}
}

func (b *OrderBook) sideFor(s Side) *bookSide {
	if s == SideBuy {
		return b.bids
	}
	return b.asks
}

// AddLimitOrder admits a limit order to the book. It returns false without
// mutating state when the price or quantity is non-positive or the id is
// already resting. Admission never matches; crossing is the engine's call.
func (b *OrderBook) AddLimitOrder(o Order) bool {
	if !ValidPrice(o.Price) || !ValidQuantity(o.Quantity) {
		return false
	}
	if _, exists := b.byID[o.ID]; exists {
		return false
	}
	bs := b.sideFor(o.Side)
	bs.getOrCreate(o.Price).queue.Append(o)
	b.byID[o.ID] = orderRef{price: o.Price, side: o.Side}
	b.size++
	return true
}

// AddMarketOrder matches quantity against the opposite side in best-price-
// first, FIFO-within-price order, emitting one trade per maker segment at
// the maker's resting price. Any unfilled residual is discarded.
func (b *OrderBook) AddMarketOrder(side Side, quantity Qty, takerID OrderID, ts Timestamp) []Trade {
	return b.matchAgainst(side, quantity, takerID, ts, nil)
}

// MatchWithLimit matches like AddMarketOrder but stops at prices worse than
// limit from the taker's point of view. Used by the engine for marketable
// limit orders, which must not execute beyond their own price.
func (b *OrderBook) MatchWithLimit(side Side, quantity Qty, takerID OrderID, ts Timestamp, limit Price) []Trade {
	return b.matchAgainst(side, quantity, takerID, ts, &limit)
}

// matchAgainst walks the side opposite the taker. A non-nil limit bounds the
// prices the taker will accept: a buy stops above it, a sell below it.
func (b *OrderBook) matchAgainst(takerSide Side, quantity Qty, takerID OrderID, ts Timestamp, limit *Price) []Trade {
	if quantity <= 0 {
		return nil
	}
	opp := b.asks
	if takerSide == SideSell {
		opp = b.bids
	}

	var trades []Trade
	remaining := quantity

	for remaining > 0 {
		level := opp.best()
		if level == nil {
			break
		}
		if limit != nil {
			if takerSide == SideBuy && level.price > *limit {
				break
			}
			if takerSide == SideSell && level.price < *limit {
				break
			}
		}

		for remaining > 0 && !level.queue.Empty() {
			maker, fullyConsumed := level.queue.ConsumeHead(remaining)
			remaining -= maker.Quantity
			trades = append(trades, Trade{
				MakerID:   maker.ID,
				TakerID:   takerID,
				Price:     level.price,
				Quantity:  maker.Quantity,
				Timestamp: ts,
			})
			if fullyConsumed {
				delete(b.byID, maker.ID)
				b.size--
			}
			// Count the fill before remaining can be zeroed; the executing
			// price is always the maker's level price.
			b.lastTradePrice = level.price
			b.totalVolume += maker.Quantity
			b.tradeCount++
		}

		if level.queue.Empty() {
			opp.removeLevel(level)
		}
	}

	return trades
}

// CancelOrder removes a resting order by id. Returns false if the id is not
// resting. Emptied levels are removed from their side.
func (b *OrderBook) CancelOrder(id OrderID) bool {
	ref, ok := b.byID[id]
	if !ok {
		return false
	}
	bs := b.sideFor(ref.side)
	level, ok := bs.levels[ref.price]
	if !ok {
		return false
	}
	if _, removed := level.queue.Remove(id); !removed {
		return false
	}
	delete(b.byID, id)
	b.size--
	if level.queue.Empty() {
		bs.removeLevel(level)
	}
	return true
}

// BestBidPrice returns the highest resting bid price, if any.
func (b *OrderBook) BestBidPrice() (Price, bool) {
	if l := b.bids.best(); l != nil {
		return l.price, true
	}
	return 0, false
}

// BestBidQty returns the aggregate quantity at the best bid, if any.
func (b *OrderBook) BestBidQty() (Qty, bool) {
	if l := b.bids.best(); l != nil {
		return l.queue.TotalQuantity(), true
	}
	return 0, false
}

// BestAskPrice returns the lowest resting ask price, if any.
func (b *OrderBook) BestAskPrice() (Price, bool) {
	if l := b.asks.best(); l != nil {
		return l.price, true
	}
	return 0, false
}

// BestAskQty returns the aggregate quantity at the best ask, if any.
func (b *OrderBook) BestAskQty() (Qty, bool) {
	if l := b.asks.best(); l != nil {
		return l.queue.TotalQuantity(), true
	}
	return 0, false
}

// TopOfBook aggregates both sides and the last trade price into a snapshot.
// Absent sides are reported as 0.
func (b *OrderBook) TopOfBook(ts Timestamp) MarketSnapshot {
	snap := MarketSnapshot{LastTradePrice: b.lastTradePrice, Timestamp: ts}
	if l := b.bids.best(); l != nil {
		snap.BestBid = l.price
		snap.BestBidQty = l.queue.TotalQuantity()
	}
	if l := b.asks.best(); l != nil {
		snap.BestAsk = l.price
		snap.BestAskQty = l.queue.TotalQuantity()
	}
	return snap
}

// Depth returns up to levels bid rows (best first) followed by up to levels
// ask rows (best first). The unused side's quantity in each row is 0.
func (b *OrderBook) Depth(levels int) []PriceLevelSnapshot {
	if levels <= 0 {
		return nil
	}
	depth := make([]PriceLevelSnapshot, 0, 2*levels)
	n := 0
	b.bids.tree.Ascend(func(l *priceLevel) bool {
		depth = append(depth, PriceLevelSnapshot{Price: l.price, BidQuantity: l.queue.TotalQuantity()})
		n++
		return n < levels
	})
	n = 0
	b.asks.tree.Ascend(func(l *priceLevel) bool {
		depth = append(depth, PriceLevelSnapshot{Price: l.price, AskQuantity: l.queue.TotalQuantity()})
		n++
		return n < levels
	})
	return depth
}

// GetOrder returns a snapshot of the resting order with the given id.
// Linear in its level's queue length; intended for inspection and tests.
func (b *OrderBook) GetOrder(id OrderID) (Order, bool) {
	ref, ok := b.byID[id]
	if !ok {
		return Order{}, false
	}
	level, ok := b.sideFor(ref.side).levels[ref.price]
	if !ok {
		return Order{}, false
	}
	return level.queue.Get(id)
}

// Size returns the number of resting orders.
func (b *OrderBook) Size() int { return b.size }

// Empty reports whether both sides hold no orders.
func (b *OrderBook) Empty() bool { return b.bids.empty() && b.asks.empty() }

// LastTradePrice returns the price of the most recent trade, 0 if none.
func (b *OrderBook) LastTradePrice() Price { return b.lastTradePrice }

// TotalVolume returns the sum of all traded quantities.
func (b *OrderBook) TotalVolume() Qty { return b.totalVolume }

// TradeCount returns the number of trades ever emitted.
func (b *OrderBook) TradeCount() int { return b.tradeCount }

// Clear resets the book to its initial empty state, including counters.
func (b *OrderBook) Clear() {
	b.bids = newBookSide(SideBuy)
	b.asks = newBookSide(SideSell)
	b.byID = make(map[OrderID]orderRef)
	b.size = 0
	b.lastTradePrice = 0
	b.totalVolume = 0
	b.tradeCount = 0
}
