package cafeteria

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cafeteria-sim/cafeteria-sim/sim"
)

// newTestModel builds a model from DefaultConfig with the given overrides.
func newTestModel(t *testing.T, view View, overrides func(*Config)) *Model {
	t.Helper()
	cfg := DefaultConfig()
	if overrides != nil {
		overrides(&cfg)
	}
	m, err := New(cfg, view)
	require.NoError(t, err)
	return m
}

// newCustomer creates a customer with a forced payment preference.
func newCustomer(m *Model, payment sim.PaymentType) *sim.Customer {
	c := m.population.NewCustomer()
	c.SetPaymentType(payment)
	return c
}

// recordingView keeps every notification in order.
type recordingView struct {
	calls     []string
	created   int
	toPayment []int
	toCoffee  int
	exits     int
	queues    []QueueLengths
	stats     []Statistics
	endedAt   []float64
	onTick    func()
}

func (v *recordingView) CustomerCreated(sim.MealType) {
	v.calls = append(v.calls, "created")
	v.created++
}

func (v *recordingView) CustomerToPayment(_ sim.MealType, _ sim.PaymentType, station int) {
	v.calls = append(v.calls, "payment")
	v.toPayment = append(v.toPayment, station)
}

func (v *recordingView) CustomerToCoffee(sim.PaymentType, int) {
	v.calls = append(v.calls, "coffee")
	v.toCoffee++
}

func (v *recordingView) CustomerExitFromCoffee() {
	v.calls = append(v.calls, "exit-coffee")
	v.exits++
}

func (v *recordingView) CustomerExitFromPayment(sim.PaymentType, int) {
	v.calls = append(v.calls, "exit-payment")
	v.exits++
}

func (v *recordingView) QueueLengthsUpdated(q QueueLengths) {
	v.calls = append(v.calls, "queues")
	v.queues = append(v.queues, q)
	if v.onTick != nil {
		v.onTick()
	}
}

func (v *recordingView) StatisticsUpdated(s Statistics) {
	v.calls = append(v.calls, "stats")
	v.stats = append(v.stats, s)
}

func (v *recordingView) SimulationEnded(finalTime float64) {
	v.calls = append(v.calls, "ended")
	v.endedAt = append(v.endedAt, finalTime)
}
