package cafeteria

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cafeteria-sim/cafeteria-sim/sim"
	"github.com/cafeteria-sim/cafeteria-sim/sim/distribution"
	"github.com/cafeteria-sim/cafeteria-sim/sim/trace"
)

// Event kinds of the cafeteria network.
const (
	EventArrival sim.EventKind = iota + 1
	EventGrillDeparture
	EventVeganDeparture
	EventNormalDeparture
	EventCashier1Departure
	EventCashier2Departure
	EventSelfServiceDeparture
	EventCoffeeDeparture
)

// Station names, also used as keys in customer stage timestamps and trace records.
const (
	NameGrill       = "grill"
	NameVegan       = "vegan"
	NameNormal      = "normal"
	NameCashier1    = "cashier-1"
	NameCashier2    = "cashier-2"
	NameSelfService = "self-service"
	NameCoffee      = "coffee"
)

// Model is the cafeteria simulation: three parallel meal stations feed a payment
// stage (two cashiers plus an optional self-service server), then an optional
// coffee server, then the exit.
type Model struct {
	cfg    Config
	runID  string
	view   View
	log    *logrus.Entry
	engine *sim.Engine

	rng        *sim.PartitionedRNG
	population *sim.Population
	arrivals   *sim.ArrivalProcess

	grill       *sim.ServicePoint
	vegan       *sim.ServicePoint
	normal      *sim.ServicePoint
	cashier1    *sim.ServicePoint
	cashier2    *sim.ServicePoint
	selfService *sim.ServicePoint
	coffee      *sim.ServicePoint

	arrivalsSuspended bool
	stats             Collector
	trace             *trace.SimulationTrace
	final             *Report
}

// New builds the network described by cfg. A nil view discards notifications.
func New(cfg Config, view View) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if view == nil {
		view = NopView{}
	}
	m := &Model{
		cfg:   cfg,
		runID: uuid.NewString(),
		view:  view,
		rng:   sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed)),
	}
	m.log = logrus.WithField("run_id", m.runID)
	m.trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(cfg.TraceLevel), RunID: m.runID})

	m.engine = sim.NewEngine(sim.Handlers{
		Initialize: m.initialize,
		Events: map[sim.EventKind]sim.EventHandler{
			EventArrival:              m.handleArrival,
			EventGrillDeparture:       m.mealDeparture(func() *sim.ServicePoint { return m.grill }),
			EventVeganDeparture:       m.mealDeparture(func() *sim.ServicePoint { return m.vegan }),
			EventNormalDeparture:      m.mealDeparture(func() *sim.ServicePoint { return m.normal }),
			EventCashier1Departure:    m.paymentDeparture(func() *sim.ServicePoint { return m.cashier1 }, StationCashier1),
			EventCashier2Departure:    m.paymentDeparture(func() *sim.ServicePoint { return m.cashier2 }, StationCashier2),
			EventSelfServiceDeparture: m.paymentDeparture(func() *sim.ServicePoint { return m.selfService }, StationSelfService),
			EventCoffeeDeparture:      m.handleCoffeeDeparture,
		},
		AfterTick: m.notify,
		Finalize:  m.finalize,
	})
	if err := m.engine.SetSimulationHorizon(cfg.Horizon); err != nil {
		return nil, err
	}
	if err := m.engine.SetPacingDelay(cfg.PacingDelay); err != nil {
		return nil, err
	}

	clock := m.engine.Clock()
	m.population = sim.NewPopulation(clock, m.rng.ForSubsystem(sim.SubsystemCustomers))

	arrivalGen, err := distribution.NewArrivals(cfg.ArrivalRate, m.rng.ForSubsystem(sim.SubsystemArrivals))
	if err != nil {
		return nil, err
	}
	m.arrivals = sim.NewArrivalProcess(arrivalGen, clock, m.engine.Events(), EventArrival)

	st := cfg.ServiceTimes
	stations := []struct {
		target **sim.ServicePoint
		name   string
		mean   float64
		kind   sim.EventKind
	}{
		{&m.grill, NameGrill, st.Grill, EventGrillDeparture},
		{&m.vegan, NameVegan, st.Vegan, EventVeganDeparture},
		{&m.normal, NameNormal, st.Normal, EventNormalDeparture},
		{&m.cashier1, NameCashier1, st.Cashier, EventCashier1Departure},
		{&m.cashier2, NameCashier2, st.Cashier, EventCashier2Departure},
		{&m.selfService, NameSelfService, st.SelfService, EventSelfServiceDeparture},
		{&m.coffee, NameCoffee, st.Coffee, EventCoffeeDeparture},
	}
	capacity := cfg.StationCapacity()
	for _, s := range stations {
		gen, err := distribution.NewServiceTime(s.mean, cfg.Variability, m.rng.ForSubsystem(sim.SubsystemStation(s.name)))
		if err != nil {
			return nil, fmt.Errorf("station %s: %w", s.name, err)
		}
		sp := sim.NewServicePoint(s.name, gen, clock, m.engine.Events(), s.kind)
		sp.SetCapacity(capacity)
		*s.target = sp
		m.engine.AddServicePoints(sp)
	}
	m.selfService.SetEnabled(cfg.SelfServiceEnabled)
	m.coffee.SetEnabled(cfg.CoffeeEnabled)

	m.log.Infof("cafeteria configured: rate=%.1f/h capacity=%d variability=%t self-service=%t coffee=%t",
		cfg.ArrivalRate, cfg.MaxQueueCapacity, cfg.Variability, cfg.SelfServiceEnabled, cfg.CoffeeEnabled)
	return m, nil
}

// RunID identifies this model instance in logs and reports.
func (m *Model) RunID() string { return m.runID }

// Config returns the configuration the model was built with.
func (m *Model) Config() Config { return m.cfg }

// Engine exposes the underlying loop.
func (m *Model) Engine() *sim.Engine { return m.engine }

// Trace returns the decision trace (empty unless trace_level is "decisions").
func (m *Model) Trace() *trace.SimulationTrace { return m.trace }

// === Control surface ===

// SetSimulationHorizon sets the run length in simulated seconds.
func (m *Model) SetSimulationHorizon(seconds float64) error {
	return m.engine.SetSimulationHorizon(seconds)
}

// SetPacingDelay sets the cosmetic wall-clock delay between ticks.
func (m *Model) SetPacingDelay(d time.Duration) error { return m.engine.SetPacingDelay(d) }

// PacingDelay returns the current pacing delay.
func (m *Model) PacingDelay() time.Duration { return m.engine.PacingDelay() }

// Faster halves the pacing delay.
func (m *Model) Faster() time.Duration { return m.engine.Faster() }

// Slower doubles the pacing delay.
func (m *Model) Slower() time.Duration { return m.engine.Slower() }

// Start launches the run on its own goroutine.
func (m *Model) Start(ctx context.Context) error { return m.engine.Start(ctx) }

// Run executes the simulation on the calling goroutine.
func (m *Model) Run(ctx context.Context) error { return m.engine.Run(ctx) }

// Wait blocks until a started run finishes.
func (m *Model) Wait() error { return m.engine.Wait() }

// Stop cancels a started run; statistics are still finalized.
func (m *Model) Stop() { m.engine.Stop() }

// Pause suspends the loop at its next checkpoint.
func (m *Model) Pause() { m.engine.Pause() }

// Resume releases a paused loop.
func (m *Model) Resume() { m.engine.Resume() }

// IsPaused reports whether the run is paused.
func (m *Model) IsPaused() bool { return m.engine.IsPaused() }

// === Engine handlers ===

func (m *Model) initialize() {
	m.rng.Reset()
	m.population.Reset()
	m.stats.Reset()
	m.trace.Reset()
	m.final = nil
	m.arrivalsSuspended = false
	m.log.Infof("simulation started, horizon=%.1fs", m.engine.SimulationHorizon())
	m.arrivals.GenerateNext()
}

func (m *Model) handleArrival(_ sim.Event) {
	c := m.population.NewCustomer()
	station := m.mealStation(c.Meal)

	if station.HasCapacity() {
		station.Enqueue(c)
		m.recordAdmission(c, station.Name(), true, "")
		m.view.CustomerCreated(c.Meal)
	} else {
		m.recordAdmission(c, station.Name(), false, "meal station full")
		m.reject(c, station.Name(), "meal station full")
	}

	if m.allMealStationsFull() {
		m.arrivalsSuspended = true
		m.log.Debugf("[t=%.3f] all meal stations full, arrivals suspended", m.now())
		return
	}
	m.arrivals.GenerateNext()
}

func (m *Model) mealDeparture(station func() *sim.ServicePoint) sim.EventHandler {
	return func(_ sim.Event) {
		c := station().CompleteService()
		if idx := m.RouteToPayment(c); idx == NoStation {
			// RedirectToCashier already traced the unrouted decision
			m.reject(c, "payment", "all cashiers full")
		} else {
			m.view.CustomerToPayment(c.Meal, c.Payment, idx)
		}
		m.resumeArrivals()
	}
}

func (m *Model) paymentDeparture(station func() *sim.ServicePoint, idx int) sim.EventHandler {
	return func(_ sim.Event) {
		c := station().CompleteService()
		m.routeAfterPayment(c, idx)
	}
}

func (m *Model) handleCoffeeDeparture(_ sim.Event) {
	c := m.coffee.CompleteService()
	m.exit(c)
	m.view.CustomerExitFromCoffee()
}

func (m *Model) notify() {
	m.view.QueueLengthsUpdated(m.QueueLengths())
	m.view.StatisticsUpdated(m.Statistics())
}

func (m *Model) finalize() {
	report := m.Report()
	m.final = &report
	m.view.StatisticsUpdated(report.Statistics)
	m.view.SimulationEnded(m.now())
	s := report.Statistics
	m.log.Infof("simulation ended at %.3f: served=%d rejected=%d in-system=%d throughput=%.2f/h avg=%.2fs peak=%d",
		s.CurrentTime, s.CustomersServed, s.CustomersRejected, s.CustomersInSystem, s.Throughput, s.AverageWait, s.PeakQueueLength)
}

// === Flow helpers ===

func (m *Model) now() float64 { return m.engine.Clock().Now() }

func (m *Model) mealStation(meal sim.MealType) *sim.ServicePoint {
	switch meal {
	case sim.MealGrill:
		return m.grill
	case sim.MealVegan:
		return m.vegan
	default:
		return m.normal
	}
}

func (m *Model) allMealStationsFull() bool {
	return !m.grill.HasCapacity() && !m.vegan.HasCapacity() && !m.normal.HasCapacity()
}

// resumeArrivals restarts a suspended arrival stream once any meal station has room.
func (m *Model) resumeArrivals() {
	if !m.arrivalsSuspended || m.allMealStationsFull() {
		return
	}
	m.arrivalsSuspended = false
	m.log.Debugf("[t=%.3f] meal capacity regained, arrivals resumed", m.now())
	m.arrivals.GenerateNext()
}

// ArrivalsSuspended reports whether backpressure has stopped the arrival stream.
func (m *Model) ArrivalsSuspended() bool { return m.arrivalsSuspended }

func (m *Model) routeAfterPayment(c *sim.Customer, idx int) {
	if m.coffee.Enabled() && c.WantsCoffee {
		if m.coffee.HasCapacity() {
			m.coffee.Enqueue(c)
			m.recordRouting(c, "payment", NameCoffee, "wants coffee", nil)
			m.view.CustomerToCoffee(c.Payment, idx)
			return
		}
		m.recordRouting(c, "payment", "", "coffee station full, exiting", nil)
	}
	m.exit(c)
	m.view.CustomerExitFromPayment(c.Payment, idx)
}

func (m *Model) exit(c *sim.Customer) {
	m.population.Remove(c)
	m.stats.CustomerServed(c.RemovalTime, c.ArrivalTime)
}

func (m *Model) reject(c *sim.Customer, station, reason string) {
	m.stats.CustomerRejected()
	m.log.Debugf("[t=%.3f] customer #%d rejected at %s: %s", m.now(), c.ID, station, reason)
}

func (m *Model) recordAdmission(c *sim.Customer, station string, admitted bool, reason string) {
	if !m.trace.Enabled() {
		return
	}
	m.trace.RecordAdmission(trace.AdmissionRecord{
		CustomerID: c.ID,
		Clock:      m.now(),
		Station:    station,
		Admitted:   admitted,
		Reason:     reason,
	})
}

func (m *Model) recordRouting(c *sim.Customer, from, chosen, reason string, lengths map[string]int) {
	if !m.trace.Enabled() {
		return
	}
	m.trace.RecordRouting(trace.RoutingRecord{
		CustomerID:    c.ID,
		Clock:         m.now(),
		From:          from,
		ChosenStation: chosen,
		Reason:        reason,
		QueueLengths:  lengths,
	})
}

// === Snapshots ===

// QueueLengths returns the current per-station queue lengths.
func (m *Model) QueueLengths() QueueLengths {
	return QueueLengths{
		Grill:       m.grill.QueueLength(),
		Vegan:       m.vegan.QueueLength(),
		Normal:      m.normal.QueueLength(),
		Cashier1:    m.cashier1.QueueLength(),
		Cashier2:    m.cashier2.QueueLength(),
		SelfService: m.selfService.QueueLength(),
		Coffee:      m.coffee.QueueLength(),
	}
}

// Statistics returns the current aggregate snapshot.
func (m *Model) Statistics() Statistics {
	now := m.now()
	peak := 0
	for _, sp := range m.engine.ServicePoints() {
		peak = max(peak, sp.Stats().PeakQueueLength)
	}
	return Statistics{
		CustomersServed:   m.stats.Served(),
		CustomersRejected: m.stats.Rejected(),
		CustomersInSystem: m.QueueLengths().Total(),
		ArrivalsGenerated: m.population.Created(),
		Throughput:        m.stats.Throughput(now),
		AverageWait:       m.stats.AverageWait(),
		PeakQueueLength:   peak,
		PaymentStageOpen:  m.PaymentStageOpen(),
		CurrentTime:       now,
	}
}

// Report returns statistics plus per-station details at the current time.
func (m *Model) Report() Report {
	elapsed := m.now()
	stations := make([]StationReport, 0, len(m.engine.ServicePoints()))
	for _, sp := range m.engine.ServicePoints() {
		stations = append(stations, newStationReport(sp, elapsed))
	}
	return Report{
		RunID:        m.runID,
		Statistics:   m.Statistics(),
		TimeInSystem: m.stats.TimeInSystem(),
		Stations:     stations,
	}
}

// FinalReport returns the report captured when the last run finalized, or nil before that.
func (m *Model) FinalReport() *Report { return m.final }
