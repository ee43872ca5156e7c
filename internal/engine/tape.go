package engine

import "github.com/TanmayRanaware/market-microstructure-simulator/internal/book"

// TradeTape is a bounded ring buffer of recent trades. The server and the
// terminal dashboard feed it from a trade observer; readers get copies.
type TradeTape struct {
	buf   []book.Trade
	size  int
	start int
	count int
}

// NewTradeTape creates a tape holding up to capacity trades.
func NewTradeTape(capacity int) *TradeTape {
	if capacity <= 0 {
		capacity = 1
	}
	return &TradeTape{
		buf:  make([]book.Trade, capacity),
		size: capacity,
	}
}

// Append adds a trade, overwriting the oldest once full.
func (t *TradeTape) Append(tr book.Trade) {
	if t.count < t.size {
		t.buf[(t.start+t.count)%t.size] = tr
		t.count++
		return
	}
	t.buf[t.start] = tr
	t.start = (t.start + 1) % t.size
}

// Last returns the last n trades in chronological order.
func (t *TradeTape) Last(n int) []book.Trade {
	if n <= 0 || t.count == 0 {
		return nil
	}
	if n > t.count {
		n = t.count
	}
	out := make([]book.Trade, n)
	first := (t.start + (t.count - n)) % t.size
	for i := 0; i < n; i++ {
		out[i] = t.buf[(first+i)%t.size]
	}
	return out
}

// Count returns the number of trades currently held.
func (t *TradeTape) Count() int { return t.count }
