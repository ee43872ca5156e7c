// Package server exposes a running simulation over HTTP: JSON endpoints for
// market state, WebSocket streams for trades and top of book, and Prometheus
// metrics. The simulation advances on a real-time ticker inside the server;
// all access to the simulator is serialised on one mutex.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/sim"
)

// Options configures the server.
type Options struct {
	Addr string
	// DepthLimit caps the levels per side returned by the depth endpoint.
	DepthLimit int
	// StepsPerTick is how many simulation steps run per real-time tick.
	StepsPerTick int
	// TickEvery is the real-time interval between step batches.
	TickEvery time.Duration
}

// DefaultOptions returns the standard server parameters.
func DefaultOptions() Options {
	return Options{
		Addr:         ":8080",
		DepthLimit:   10,
		StepsPerTick: 100,
		TickEvery:    100 * time.Millisecond,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Addr == "" {
		o.Addr = d.Addr
	}
	if o.DepthLimit <= 0 {
		o.DepthLimit = d.DepthLimit
	}
	if o.StepsPerTick <= 0 {
		o.StepsPerTick = d.StepsPerTick
	}
	if o.TickEvery <= 0 {
		o.TickEvery = d.TickEvery
	}
	return o
}

type tradeMessage struct {
	Timestamp int64  `json:"timestamp"`
	MakerID   uint64 `json:"maker_id"`
	TakerID   uint64 `json:"taker_id"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type marketMessage struct {
	Timestamp      int64 `json:"timestamp"`
	BestBid        int64 `json:"best_bid"`
	BestAsk        int64 `json:"best_ask"`
	BestBidQty     int64 `json:"best_bid_qty"`
	BestAskQty     int64 `json:"best_ask_qty"`
	LastTradePrice int64 `json:"last_trade_price"`
	Mid            int64 `json:"mid"`
	Spread         int64 `json:"spread"`
}

type depthRow struct {
	Price       int64 `json:"price"`
	BidQuantity int64 `json:"bid_quantity,omitempty"`
	AskQuantity int64 `json:"ask_quantity,omitempty"`
}

type agentMessage struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	PnL       float64 `json:"pnl"`
	Inventory int64   `json:"inventory"`
}

type outboundMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Server drives a simulator on a real-time ticker and serves its state.
type Server struct {
	opts Options
	log  *zap.Logger

	mu        sync.Mutex
	simulator *sim.Simulator

	tradeHub  *hub[tradeMessage]
	marketHub *hub[marketMessage]
	upgrader  websocket.Upgrader
	registry  *prometheus.Registry
	metrics   *metrics
}

// New wraps a simulator. The simulator must not be used concurrently by the
// caller once the server is running.
func New(simulator *sim.Simulator, log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	registry := prometheus.NewRegistry()
	s := &Server{
		opts:      opts.withDefaults(),
		log:       log,
		simulator: simulator,
		tradeHub:  newHub[tradeMessage](),
		marketHub: newHub[marketMessage](),
		upgrader:  websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		registry:  registry,
		metrics:   newMetrics(registry),
	}
	simulator.InstallDefaultAgents()
	simulator.Engine().SetTradeObserver(func(t book.Trade) {
		s.metrics.tradesTotal.Inc()
		s.metrics.volumeTotal.Add(float64(t.Quantity))
		s.metrics.lastTradePrice.Set(float64(t.Price))
		s.tradeHub.Broadcast(tradeMessage{
			Timestamp: int64(t.Timestamp),
			MakerID:   uint64(t.MakerID),
			TakerID:   uint64(t.TakerID),
			Price:     int64(t.Price),
			Quantity:  int64(t.Quantity),
		})
	})
	return s
}

// Run serves until ctx is cancelled, stepping the simulation in the
// background. The HTTP server shuts down gracefully on cancellation.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.opts.Addr,
		Handler: s.routes(),
	}

	go s.stepLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	s.log.Info("server listening", zap.String("addr", s.opts.Addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/market", s.handleMarket)
	mux.HandleFunc("/depth", s.handleDepth)
	mux.HandleFunc("/agents", s.handleAgents)
	mux.HandleFunc("/ws/trades", s.handleTradeStream)
	mux.HandleFunc("/ws/market", s.handleMarketStream)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// stepLoop advances the simulation one batch per tick and publishes the
// resulting top of book.
func (s *Server) stepLoop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.TickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runBatch()
		}
	}
}

func (s *Server) runBatch() {
	s.mu.Lock()
	eventsBefore := s.simulator.EventsProcessed()
	for i := 0; i < s.opts.StepsPerTick; i++ {
		s.simulator.Step()
	}
	snap := s.simulator.Engine().MarketSnapshot(s.simulator.CurrentTime())
	eventsAfter := s.simulator.EventsProcessed()
	restingOrders := s.simulator.Engine().OrderCount()
	s.mu.Unlock()

	s.metrics.stepsTotal.Add(float64(s.opts.StepsPerTick))
	s.metrics.eventsTotal.Add(float64(eventsAfter - eventsBefore))
	s.metrics.restingOrders.Set(float64(restingOrders))
	s.metrics.spread.Set(float64(snap.Spread()))

	s.marketHub.Broadcast(toMarketMessage(snap))
}

func toMarketMessage(snap book.MarketSnapshot) marketMessage {
	return marketMessage{
		Timestamp:      int64(snap.Timestamp),
		BestBid:        int64(snap.BestBid),
		BestAsk:        int64(snap.BestAsk),
		BestBidQty:     int64(snap.BestBidQty),
		BestAskQty:     int64(snap.BestAskQty),
		LastTradePrice: int64(snap.LastTradePrice),
		Mid:            int64(snap.MidPrice()),
		Spread:         int64(snap.Spread()),
	}
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	snap := s.simulator.Engine().MarketSnapshot(s.simulator.CurrentTime())
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, toMarketMessage(snap))
}

func (s *Server) handleDepth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	levels := s.opts.DepthLimit
	if v := r.URL.Query().Get("levels"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid levels"})
			return
		}
		if n < levels {
			levels = n
		}
	}

	s.mu.Lock()
	depth := s.simulator.Engine().Depth(levels)
	s.mu.Unlock()

	rows := make([]depthRow, len(depth))
	for i, lvl := range depth {
		rows[i] = depthRow{
			Price:       int64(lvl.Price),
			BidQuantity: int64(lvl.BidQuantity),
			AskQuantity: int64(lvl.AskQuantity),
		}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	stats := s.simulator.Agents().GetStats()
	s.mu.Unlock()

	msgs := make([]agentMessage, len(stats))
	for i, st := range stats {
		msgs[i] = agentMessage{
			ID:        uint64(st.ID),
			Name:      st.Name,
			PnL:       st.PnL,
			Inventory: int64(st.Inventory),
		}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleTradeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := s.tradeHub.Subscribe(64)
	defer s.tradeHub.Unsubscribe(sub)

	for trade := range sub.ch {
		if err := conn.WriteJSON(outboundMessage{Type: "trade", Data: trade}); err != nil {
			return
		}
	}
}

func (s *Server) handleMarketStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := s.marketHub.Subscribe(64)
	defer s.marketHub.Unsubscribe(sub)

	for snap := range sub.ch {
		if err := conn.WriteJSON(outboundMessage{Type: "market", Data: snap}); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
