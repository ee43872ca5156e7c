package agent

import (
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/book"
	"github.com/TanmayRanaware/market-microstructure-simulator/internal/engine"
)

// Manager holds the simulation's agents in a fixed order. Step order and
// trade fan-out order follow insertion order, which keeps RNG draw order —
// and therefore the whole run — reproducible.
type Manager struct {
	agents []Agent
	byID   map[book.AgentID]Agent
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{byID: make(map[book.AgentID]Agent)}
}

// Add appends an agent. Nil agents are ignored.
func (m *Manager) Add(a Agent) {
	if a == nil {
		return
	}
	m.agents = append(m.agents, a)
	m.byID[a.ID()] = a
}

// Get returns the agent with the given id, if present.
func (m *Manager) Get(id book.AgentID) (Agent, bool) {
	a, ok := m.byID[id]
	return a, ok
}

// Agents returns the agents in step order.
func (m *Manager) Agents() []Agent { return m.agents }

// Step collects each agent's events for the tick, concatenated in agent
// order.
func (m *Manager) Step(ts book.Timestamp) []engine.Event {
	var all []engine.Event
	for _, a := range m.agents {
		all = append(all, a.Step(ts)...)
	}
	return all
}

// NotifyTrade delivers a trade to every agent.
func (m *Manager) NotifyTrade(t book.Trade) {
	for _, a := range m.agents {
		a.OnTrade(t)
	}
}

// Stats is a point-in-time summary of one agent.
type Stats struct {
	ID        book.AgentID
	Name      string
	PnL       float64
	Inventory book.Qty
}

// GetStats returns per-agent summaries in step order.
func (m *Manager) GetStats() []Stats {
	stats := make([]Stats, 0, len(m.agents))
	for _, a := range m.agents {
		stats = append(stats, Stats{
			ID:        a.ID(),
			Name:      a.Name(),
			PnL:       a.PnL(),
			Inventory: a.Inventory(),
		})
	}
	return stats
}

// Reset resets every agent.
func (m *Manager) Reset() {
	for _, a := range m.agents {
		a.Reset()
	}
}
