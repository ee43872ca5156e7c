package server

import "testing"

func TestHubBroadcast(t *testing.T) {
	h := newHub[int]()
	a := h.Subscribe(4)
	b := h.Subscribe(4)

	h.Broadcast(7)

	if got := <-a.ch; got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
	if got := <-b.ch; got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
}

func TestHubDropsWhenFull(t *testing.T) {
	h := newHub[int]()
	sub := h.Subscribe(1)

	h.Broadcast(1)
	h.Broadcast(2) // dropped, buffer full

	if got := <-sub.ch; got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	select {
	case v := <-sub.ch:
		t.Errorf("expected no second value, got %d", v)
	default:
	}
}

func TestHubUnsubscribe(t *testing.T) {
	h := newHub[int]()
	sub := h.Subscribe(1)
	h.Unsubscribe(sub)

	// Channel is closed and no longer receives broadcasts
	if _, ok := <-sub.ch; ok {
		t.Error("expected closed channel")
	}
	h.Broadcast(9)

	// A second unsubscribe of the same subscription is a no-op
	h.Unsubscribe(sub)
}
