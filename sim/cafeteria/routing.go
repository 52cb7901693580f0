package cafeteria

import (
	"github.com/cafeteria-sim/cafeteria-sim/sim"
)

// RouteToPayment enqueues c at a payment server and returns its station index.
// Self-service customers use the self-service server when it can accept them;
// everyone else, and any overflow, is balanced across the cashiers.
// Returns NoStation when no payment server has room; c is then not enqueued.
func (m *Model) RouteToPayment(c *sim.Customer) int {
	if c.Payment == sim.PaymentSelfService && m.selfService.CanAccept() {
		m.selfService.Enqueue(c)
		m.recordRouting(c, "meal", NameSelfService, "self-service preferred", m.paymentQueueLengths())
		return StationSelfService
	}
	return m.RedirectToCashier(c)
}

// RedirectToCashier enqueues c at the cashier with the shortest line among those
// with room, preferring cashier 1 on a tie. Returns NoStation if both are full.
func (m *Model) RedirectToCashier(c *sim.Customer) int {
	lengths := m.paymentQueueLengths()
	idx, station := m.pickCashier()
	if station == nil {
		m.recordRouting(c, "meal", "", "all cashiers full", lengths)
		return NoStation
	}
	station.Enqueue(c)
	m.recordRouting(c, "meal", station.Name(), "shortest cashier queue", lengths)
	return idx
}

func (m *Model) pickCashier() (int, *sim.ServicePoint) {
	c1, c2 := m.cashier1.CanAccept(), m.cashier2.CanAccept()
	switch {
	case c1 && c2:
		if m.cashier2.QueueLength() < m.cashier1.QueueLength() {
			return StationCashier2, m.cashier2
		}
		return StationCashier1, m.cashier1
	case c1:
		return StationCashier1, m.cashier1
	case c2:
		return StationCashier2, m.cashier2
	default:
		return NoStation, nil
	}
}

// PaymentStageOpen reports whether any payment server could take a customer right now,
// or, with coffee enabled, whether the coffee server still has room.
func (m *Model) PaymentStageOpen() bool {
	if m.cashier1.CanAccept() || m.cashier2.CanAccept() || m.selfService.CanAccept() {
		return true
	}
	return m.coffee.CanAccept()
}

// State returns the engine lifecycle state.
func (m *Model) State() sim.State { return m.engine.State() }

func (m *Model) paymentQueueLengths() map[string]int {
	if !m.trace.Enabled() {
		return nil
	}
	return map[string]int{
		NameCashier1:    m.cashier1.QueueLength(),
		NameCashier2:    m.cashier2.QueueLength(),
		NameSelfService: m.selfService.QueueLength(),
	}
}
