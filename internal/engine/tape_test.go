package engine

import (
	"testing"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
)

func TestTradeTapeAppendAndLast(t *testing.T) {
	tape := NewTradeTape(3)

	for i := 1; i <= 2; i++ {
		tape.Append(book.Trade{Price: book.Price(i)})
	}
	if tape.Count() != 2 {
		t.Errorf("expected count 2, got %d", tape.Count())
	}

	last := tape.Last(5)
	if len(last) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(last))
	}
	if last[0].Price != 1 || last[1].Price != 2 {
		t.Errorf("expected chronological order 1,2, got %d,%d", last[0].Price, last[1].Price)
	}
}

func TestTradeTapeWraps(t *testing.T) {
	tape := NewTradeTape(3)
	for i := 1; i <= 5; i++ {
		tape.Append(book.Trade{Price: book.Price(i)})
	}

	if tape.Count() != 3 {
		t.Errorf("expected count capped at 3, got %d", tape.Count())
	}
	last := tape.Last(3)
	want := []book.Price{3, 4, 5}
	for i, tr := range last {
		if tr.Price != want[i] {
			t.Errorf("index %d: expected price %d, got %d", i, want[i], tr.Price)
		}
	}

	if got := tape.Last(2); len(got) != 2 || got[0].Price != 4 {
		t.Errorf("expected last 2 to start at 4, got %v", got)
	}
}

func TestTradeTapeEdgeCases(t *testing.T) {
	tape := NewTradeTape(0) // clamped to capacity 1
	tape.Append(book.Trade{Price: 1})
	tape.Append(book.Trade{Price: 2})
	if tape.Count() != 1 {
		t.Errorf("expected count 1, got %d", tape.Count())
	}
	if last := tape.Last(1); last[0].Price != 2 {
		t.Errorf("expected newest trade 2, got %d", last[0].Price)
	}

	if tape.Last(0) != nil {
		t.Error("expected nil for non-positive n")
	}
	if NewTradeTape(4).Last(2) != nil {
		t.Error("expected nil for empty tape")
	}
}
