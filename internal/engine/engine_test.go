package engine

import (
	"testing"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
)

func TestLimitEventRests(t *testing.T) {
	e := NewMatchingEngine()

	trades := e.ProcessEvent(LimitEvent(1, book.SideBuy, 100, 10, 1, 7))
	if len(trades) != 0 {
		t.Fatalf("expected no trades, got %d", len(trades))
	}
	if e.OrderCount() != 1 {
		t.Errorf("expected 1 resting order, got %d", e.OrderCount())
	}

	o, ok := e.Book().GetOrder(1)
	if !ok || o.Price != 100 || o.Quantity != 10 {
		t.Errorf("expected 10@100 resting, got %+v (ok=%v)", o, ok)
	}
}

func TestMarketableLimitMatchesBeforeResting(t *testing.T) {
	e := NewMatchingEngine()
	e.ProcessEvent(LimitEvent(1, book.SideSell, 100, 10, 1, 1))

	// Crossing buy for more than is available: fills at the maker's price,
	// then the residual rests at the taker's own price.
	trades := e.ProcessEvent(LimitEvent(2, book.SideBuy, 102, 25, 2, 2))
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].Price != 100 {
		t.Errorf("expected trade at maker price 100, got %d", trades[0].Price)
	}
	if trades[0].MakerID != 1 || trades[0].TakerID != 2 {
		t.Errorf("expected maker 1 taker 2, got %d/%d", trades[0].MakerID, trades[0].TakerID)
	}

	o, ok := e.Book().GetOrder(2)
	if !ok {
		t.Fatal("expected residual to rest")
	}
	if o.Quantity != 15 || o.Price != 102 {
		t.Errorf("expected residual 15@102, got %d@%d", o.Quantity, o.Price)
	}

	// The new bid is alone; the book must not be crossed
	if bid, _ := e.Book().BestBidPrice(); bid != 102 {
		t.Errorf("expected best bid 102, got %d", bid)
	}
	if _, ok := e.Book().BestAskPrice(); ok {
		t.Error("expected no asks left")
	}
}

func TestMarketableLimitFullFill(t *testing.T) {
	e := NewMatchingEngine()
	e.ProcessEvent(LimitEvent(1, book.SideSell, 100, 20, 1, 1))

	trades := e.ProcessEvent(LimitEvent(2, book.SideBuy, 100, 20, 2, 2))
	if len(trades) != 1 || trades[0].Quantity != 20 {
		t.Fatalf("expected one 20-lot trade, got %v", trades)
	}
	// Fully filled: nothing rests on either side
	if e.OrderCount() != 0 {
		t.Errorf("expected empty book, got %d orders", e.OrderCount())
	}
}

func TestMarketableLimitBoundedByOwnPrice(t *testing.T) {
	e := NewMatchingEngine()
	e.ProcessEvent(LimitEvent(1, book.SideSell, 100, 10, 1, 1))
	e.ProcessEvent(LimitEvent(2, book.SideSell, 101, 10, 2, 1))
	e.ProcessEvent(LimitEvent(3, book.SideSell, 105, 10, 3, 1))

	trades := e.ProcessEvent(LimitEvent(4, book.SideBuy, 101, 30, 4, 2))
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	// Residual rests at 101; the 105 ask is untouched and the book stays
	// uncrossed
	o, ok := e.Book().GetOrder(4)
	if !ok || o.Quantity != 10 {
		t.Errorf("expected residual 10, got %d (ok=%v)", o.Quantity, ok)
	}
	bid, _ := e.Book().BestBidPrice()
	ask, _ := e.Book().BestAskPrice()
	if bid != 101 || ask != 105 {
		t.Errorf("expected 101/105, got %d/%d", bid, ask)
	}
}

func TestNonCrossingLimitNeverMatches(t *testing.T) {
	e := NewMatchingEngine()
	e.ProcessEvent(LimitEvent(1, book.SideSell, 105, 10, 1, 1))

	trades := e.ProcessEvent(LimitEvent(2, book.SideBuy, 104, 10, 2, 2))
	if len(trades) != 0 {
		t.Fatalf("expected no trades, got %d", len(trades))
	}
	if e.OrderCount() != 2 {
		t.Errorf("expected 2 resting orders, got %d", e.OrderCount())
	}
}

func TestMarketEvent(t *testing.T) {
	e := NewMatchingEngine()
	e.ProcessEvent(LimitEvent(1, book.SideBuy, 100, 10, 1, 1))

	trades := e.ProcessEvent(MarketEvent(2, book.SideSell, 4, 2, 2))
	if len(trades) != 1 || trades[0].Price != 100 || trades[0].Quantity != 4 {
		t.Fatalf("expected one 4-lot trade at 100, got %v", trades)
	}
	if e.LastTradePrice() != 100 {
		t.Errorf("expected last trade price 100, got %d", e.LastTradePrice())
	}
	if e.TotalVolume() != 4 {
		t.Errorf("expected volume 4, got %d", e.TotalVolume())
	}
}

func TestCancelEvent(t *testing.T) {
	e := NewMatchingEngine()
	e.ProcessEvent(LimitEvent(1, book.SideBuy, 100, 10, 1, 1))

	if trades := e.ProcessEvent(CancelEvent(1, 2, 1)); len(trades) != 0 {
		t.Errorf("expected no trades from cancel, got %d", len(trades))
	}
	if e.OrderCount() != 0 {
		t.Errorf("expected empty book, got %d orders", e.OrderCount())
	}
	// Cancelling again is a silent no-op
	if trades := e.ProcessEvent(CancelEvent(1, 3, 1)); len(trades) != 0 {
		t.Errorf("expected no trades, got %d", len(trades))
	}
}

func TestInvalidEventsIgnored(t *testing.T) {
	e := NewMatchingEngine()
	e.ProcessEvent(LimitEvent(1, book.SideBuy, 100, 10, 1, 1))

	tests := []struct {
		name string
		ev   Event
	}{
		{"zero price limit", LimitEvent(2, book.SideBuy, 0, 10, 2, 1)},
		{"zero quantity limit", LimitEvent(3, book.SideBuy, 100, 0, 2, 1)},
		{"duplicate id", LimitEvent(1, book.SideSell, 200, 10, 2, 1)},
		{"unknown type", Event{Type: EventType(99), OrderID: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if trades := e.ProcessEvent(tt.ev); len(trades) != 0 {
				t.Errorf("expected no trades, got %d", len(trades))
			}
		})
	}
	if e.OrderCount() != 1 {
		t.Errorf("expected 1 resting order, got %d", e.OrderCount())
	}
}

func TestObservers(t *testing.T) {
	e := NewMatchingEngine()

	var observedTrades []book.Trade
	var observedOrders []book.Order
	e.SetTradeObserver(func(tr book.Trade) { observedTrades = append(observedTrades, tr) })
	e.SetOrderObserver(func(o book.Order) { observedOrders = append(observedOrders, o) })

	e.ProcessEvent(LimitEvent(1, book.SideSell, 100, 10, 1, 1))
	e.ProcessEvent(LimitEvent(2, book.SideBuy, 100, 25, 2, 2))

	if len(observedTrades) != 1 || observedTrades[0].Quantity != 10 {
		t.Errorf("expected one observed 10-lot trade, got %v", observedTrades)
	}
	// Both the resting sell and the crossing buy's residual were admitted
	if len(observedOrders) != 2 {
		t.Fatalf("expected 2 observed orders, got %d", len(observedOrders))
	}
	if observedOrders[1].ID != 2 || observedOrders[1].Quantity != 15 {
		t.Errorf("expected residual order 2 qty 15, got %+v", observedOrders[1])
	}

	// Observers can be removed
	e.SetTradeObserver(nil)
	e.ProcessEvent(MarketEvent(3, book.SideBuy, 5, 3, 2))
	if len(observedTrades) != 1 {
		t.Errorf("expected observer to be removed, got %d trades", len(observedTrades))
	}
}

func TestProcessEvents(t *testing.T) {
	e := NewMatchingEngine()

	trades := e.ProcessEvents([]Event{
		LimitEvent(1, book.SideSell, 100, 10, 1, 1),
		LimitEvent(2, book.SideSell, 101, 10, 1, 1),
		MarketEvent(3, book.SideBuy, 15, 2, 2),
	})
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if len(e.Trades()) != 2 {
		t.Errorf("expected 2 aggregated trades, got %d", len(e.Trades()))
	}

	e.Clear()
	if len(e.Trades()) != 0 || e.OrderCount() != 0 {
		t.Error("expected clear to reset trades and book")
	}
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		et   EventType
		want string
	}{
		{EventLimit, "LIMIT"},
		{EventMarket, "MARKET"},
		{EventCancel, "CANCEL"},
		{EventType(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.et.String(); got != tt.want {
			t.Errorf("expected %s, got %s", tt.want, got)
		}
	}
}
