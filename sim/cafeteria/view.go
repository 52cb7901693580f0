package cafeteria

import (
	"sync"

	"github.com/cafeteria-sim/cafeteria-sim/sim"
)

// Payment station indexes reported to the view.
const (
	NoStation          = -1 // customer could not be placed
	StationSelfService = 0
	StationCashier1    = 1
	StationCashier2    = 2
)

// QueueLengths is a per-station snapshot taken after each tick.
type QueueLengths struct {
	Grill       int
	Vegan       int
	Normal      int
	Cashier1    int
	Cashier2    int
	SelfService int
	Coffee      int
}

// Total returns the number of customers at all stations.
func (q QueueLengths) Total() int {
	return q.Grill + q.Vegan + q.Normal + q.Cashier1 + q.Cashier2 + q.SelfService + q.Coffee
}

// View receives notifications from the simulation goroutine: per-customer movements
// while they happen, queue lengths and statistics after every tick, and the end time
// once the run finishes. Implementations that live on another goroutine should be
// wrapped in an AsyncView.
type View interface {
	CustomerCreated(meal sim.MealType)
	CustomerToPayment(meal sim.MealType, payment sim.PaymentType, station int)
	CustomerToCoffee(payment sim.PaymentType, station int)
	CustomerExitFromCoffee()
	CustomerExitFromPayment(payment sim.PaymentType, station int)
	QueueLengthsUpdated(q QueueLengths)
	StatisticsUpdated(s Statistics)
	SimulationEnded(finalTime float64)
}

// NopView ignores every notification.
type NopView struct{}

func (NopView) CustomerCreated(sim.MealType)                        {}
func (NopView) CustomerToPayment(sim.MealType, sim.PaymentType, int) {}
func (NopView) CustomerToCoffee(sim.PaymentType, int)                {}
func (NopView) CustomerExitFromCoffee()                              {}
func (NopView) CustomerExitFromPayment(sim.PaymentType, int)         {}
func (NopView) QueueLengthsUpdated(QueueLengths)                     {}
func (NopView) StatisticsUpdated(Statistics)                         {}
func (NopView) SimulationEnded(float64)                              {}

// AsyncView hands notifications over to a dedicated goroutine that calls the
// wrapped view in order. The simulation only blocks when the buffer is full.
// Close must be called after the engine has stopped.
type AsyncView struct {
	target View
	calls  chan func()
	done   chan struct{}
	once   sync.Once
}

// NewAsyncView starts the delivery goroutine.
func NewAsyncView(target View, buffer int) *AsyncView {
	v := &AsyncView{
		target: target,
		calls:  make(chan func(), buffer),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(v.done)
		for fn := range v.calls {
			fn()
		}
	}()
	return v
}

// Close drains pending notifications and stops the delivery goroutine.
func (v *AsyncView) Close() {
	v.once.Do(func() { close(v.calls) })
	<-v.done
}

func (v *AsyncView) post(fn func()) { v.calls <- fn }

func (v *AsyncView) CustomerCreated(meal sim.MealType) {
	v.post(func() { v.target.CustomerCreated(meal) })
}

func (v *AsyncView) CustomerToPayment(meal sim.MealType, payment sim.PaymentType, station int) {
	v.post(func() { v.target.CustomerToPayment(meal, payment, station) })
}

func (v *AsyncView) CustomerToCoffee(payment sim.PaymentType, station int) {
	v.post(func() { v.target.CustomerToCoffee(payment, station) })
}

func (v *AsyncView) CustomerExitFromCoffee() {
	v.post(v.target.CustomerExitFromCoffee)
}

func (v *AsyncView) CustomerExitFromPayment(payment sim.PaymentType, station int) {
	v.post(func() { v.target.CustomerExitFromPayment(payment, station) })
}

func (v *AsyncView) QueueLengthsUpdated(q QueueLengths) {
	v.post(func() { v.target.QueueLengthsUpdated(q) })
}

func (v *AsyncView) StatisticsUpdated(s Statistics) {
	v.post(func() { v.target.StatisticsUpdated(s) })
}

func (v *AsyncView) SimulationEnded(finalTime float64) {
	v.post(func() { v.target.SimulationEnded(finalTime) })
}
