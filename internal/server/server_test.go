package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/sim"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	simulator := sim.New(sim.DefaultConfig())
	srv := New(simulator, zap.NewNop(), Options{StepsPerTick: 500})

	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestHandleMarket(t *testing.T) {
	srv, ts := newTestServer(t)
	srv.runBatch()

	var msg marketMessage
	resp := getJSON(t, ts.URL+"/market", &msg)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if msg.BestBid <= 0 || msg.BestAsk <= 0 {
		t.Errorf("expected a two-sided market after stepping, got %d/%d", msg.BestBid, msg.BestAsk)
	}
	if msg.BestAsk <= msg.BestBid {
		t.Errorf("crossed top of book: %d/%d", msg.BestBid, msg.BestAsk)
	}
}

func TestHandleDepth(t *testing.T) {
	srv, ts := newTestServer(t)
	srv.runBatch()

	var rows []depthRow
	resp := getJSON(t, ts.URL+"/depth?levels=5", &rows)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(rows) == 0 {
		t.Fatal("expected depth rows after stepping")
	}
	for _, row := range rows {
		if row.Price <= 0 {
			t.Errorf("expected positive price, got %d", row.Price)
		}
		if row.BidQuantity == 0 && row.AskQuantity == 0 {
			t.Errorf("expected one populated side at %d", row.Price)
		}
	}

	resp = getJSON(t, ts.URL+"/depth?levels=bogus", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid levels, got %d", resp.StatusCode)
	}
}

func TestHandleAgents(t *testing.T) {
	srv, ts := newTestServer(t)
	srv.runBatch()

	var agents []agentMessage
	resp := getJSON(t, ts.URL+"/agents", &agents)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(agents) != 3 {
		t.Fatalf("expected 3 agents, got %d", len(agents))
	}
	names := map[string]bool{}
	for _, a := range agents {
		names[a.Name] = true
	}
	for _, want := range []string{"market_maker", "taker", "noise_trader"} {
		if !names[want] {
			t.Errorf("expected agent %q in response", want)
		}
	}
}

func TestHandleMetrics(t *testing.T) {
	srv, ts := newTestServer(t)
	srv.runBatch()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/market", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}
}
