package sim

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
)

// AgentSample is one periodic PnL/inventory observation of an agent.
type AgentSample struct {
	AgentID   book.AgentID
	Timestamp book.Timestamp
	PnL       float64
	Inventory book.Qty
}

// Collector accumulates the run's trades, market snapshots and agent
// samples, and can dump them to CSV.
type Collector struct {
	trades    []book.Trade
	snapshots []book.MarketSnapshot
	samples   []AgentSample
}

// NewCollector creates an empty collector.
func NewCollector() *Collector { return &Collector{} }

// RecordTrade appends a trade.
func (c *Collector) RecordTrade(t book.Trade) { c.trades = append(c.trades, t) }

// RecordSnapshot appends a market snapshot.
func (c *Collector) RecordSnapshot(s book.MarketSnapshot) { c.snapshots = append(c.snapshots, s) }

// RecordAgentSample appends an agent PnL/inventory sample.
func (c *Collector) RecordAgentSample(s AgentSample) { c.samples = append(c.samples, s) }

// Trades returns the collected trades in emission order.
func (c *Collector) Trades() []book.Trade { return c.trades }

// Snapshots returns the collected snapshots in capture order.
func (c *Collector) Snapshots() []book.MarketSnapshot { return c.snapshots }

// AgentSamples returns the collected agent samples in capture order.
func (c *Collector) AgentSamples() []AgentSample { return c.samples }

// Clear drops all collected data.
func (c *Collector) Clear() {
	c.trades = nil
	c.snapshots = nil
	c.samples = nil
}

// WriteCSV writes trades.csv, market_snapshots.csv and agent_pnl.csv into
// dir, creating it if needed.
func (c *Collector) WriteCSV(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := c.writeTrades(filepath.Join(dir, "trades.csv")); err != nil {
		return err
	}
	if err := c.writeSnapshots(filepath.Join(dir, "market_snapshots.csv")); err != nil {
		return err
	}
	return c.writeAgentSamples(filepath.Join(dir, "agent_pnl.csv"))
}

func (c *Collector) writeTrades(path string) error {
	return writeCSVFile(path, []string{"timestamp", "maker_id", "taker_id", "price", "quantity"}, len(c.trades), func(i int) []string {
		t := c.trades[i]
		return []string{
			strconv.FormatInt(int64(t.Timestamp), 10),
			strconv.FormatUint(uint64(t.MakerID), 10),
			strconv.FormatUint(uint64(t.TakerID), 10),
			strconv.FormatInt(int64(t.Price), 10),
			strconv.FormatInt(int64(t.Quantity), 10),
		}
	})
}

func (c *Collector) writeSnapshots(path string) error {
	return writeCSVFile(path, []string{"timestamp", "best_bid", "best_ask", "best_bid_qty", "best_ask_qty", "last_trade_price"}, len(c.snapshots), func(i int) []string {
		s := c.snapshots[i]
		return []string{
			strconv.FormatInt(int64(s.Timestamp), 10),
			strconv.FormatInt(int64(s.BestBid), 10),
			strconv.FormatInt(int64(s.BestAsk), 10),
			strconv.FormatInt(int64(s.BestBidQty), 10),
			strconv.FormatInt(int64(s.BestAskQty), 10),
			strconv.FormatInt(int64(s.LastTradePrice), 10),
		}
	})
}

func (c *Collector) writeAgentSamples(path string) error {
	return writeCSVFile(path, []string{"timestamp", "agent_id", "pnl", "inventory"}, len(c.samples), func(i int) []string {
		s := c.samples[i]
		return []string{
			strconv.FormatInt(int64(s.Timestamp), 10),
			strconv.FormatUint(uint64(s.AgentID), 10),
			strconv.FormatFloat(s.PnL, 'g', -1, 64),
			strconv.FormatInt(int64(s.Inventory), 10),
		}
	})
}

func writeCSVFile(path string, header []string, rows int, row func(i int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for i := 0; i < rows; i++ {
		if err := w.Write(row(i)); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
