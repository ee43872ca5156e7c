package book

import "strconv"

// Side represents the order side: buy or sell.
type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Opposite returns the opposite side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Price is a signed price in integer ticks. Valid prices are > 0.
type Price int64

func (p Price) String() string { return strconv.FormatInt(int64(p), 10) }

// Qty is an order or trade quantity. Valid quantities are > 0.
type Qty int64

func (q Qty) String() string { return strconv.FormatInt(int64(q), 10) }

// Timestamp is a logical simulation time in nanoseconds.
type Timestamp int64

// OrderID uniquely identifies an order while it rests.
type OrderID uint64

// AgentID identifies the agent that produced an event. Opaque to the book.
type AgentID uint64

// Order is a limit order. The book owns resting orders and mutates only
// their Quantity (the residual); everything else is fixed at admission.
type Order struct {
	ID        OrderID
	Side      Side
	Price     Price
	Quantity  Qty
	Timestamp Timestamp
}

// Trade records one maker segment consumed by an aggressor. Price is always
// the maker's resting price; Timestamp is the aggressor event's timestamp.
type Trade struct {
	MakerID   OrderID
	TakerID   OrderID
	Price     Price
	Quantity  Qty
	Timestamp Timestamp
}

// PriceLevelSnapshot is one row of a depth snapshot. Exactly one of
// BidQuantity/AskQuantity is set; the unused side is 0.
type PriceLevelSnapshot struct {
	Price       Price
	BidQuantity Qty
	AskQuantity Qty
}

// MarketSnapshot is a top-of-book summary. Absent sides are reported as 0,
// as is LastTradePrice before any trade.
type MarketSnapshot struct {
	BestBid        Price
	BestAsk        Price
	BestBidQty     Qty
	BestAskQty     Qty
	LastTradePrice Price
	Timestamp      Timestamp
}

// MidPrice returns the integer mid price, or 0 when either side is absent.
func (m MarketSnapshot) MidPrice() Price {
	if m.BestBid > 0 && m.BestAsk > 0 {
		return (m.BestBid + m.BestAsk) / 2
	}
	return 0
}

// Spread returns ask minus bid, or 0 when either side is absent.
func (m MarketSnapshot) Spread() Price {
	if m.BestBid > 0 && m.BestAsk > 0 {
		return m.BestAsk - m.BestBid
	}
	return 0
}

// ValidPrice reports whether p is an admissible order price.
func ValidPrice(p Price) bool { return p > 0 }

// ValidQuantity reports whether q is an admissible order quantity.
func ValidQuantity(q Qty) bool { return q > 0 }
