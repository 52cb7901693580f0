package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Unbounded is the capacity sentinel for a service point without a queue limit.
const Unbounded = math.MaxInt

// ServicePointStats accumulates per-station counters. Never corrected retroactively.
type ServicePointStats struct {
	Served           int
	TotalWait        float64 // sum of (service start - enqueue) over started services
	Started          int
	TotalServiceTime float64 // sum of sampled service durations
	BusyTime         float64 // closed-out service intervals
	PeakQueueLength  int
}

// ServicePoint is a single server with a FIFO line.
//
// States: Idle (not reserved) → Serving (reserved) → Idle.
// Invariants:
//   - reserved ⇒ queue non-empty; the customer in service stays at the head.
//   - capacity bounds the queue length including the customer in service.
//   - a disabled point accepts no customers and starts no service.
type ServicePoint struct {
	name      string
	generator Generator
	clock     *Clock
	events    *EventQueue
	kind      EventKind // scheduled on departure
	capacity  int
	enabled   bool

	queue        CustomerQueue
	reserved     bool
	serviceStart float64
	stats        ServicePointStats
}

// NewServicePoint creates an enabled, unbounded service point.
func NewServicePoint(name string, g Generator, clock *Clock, events *EventQueue, departure EventKind) *ServicePoint {
	if g == nil {
		panic(fmt.Sprintf("NewServicePoint(%s): generator must not be nil", name))
	}
	return &ServicePoint{
		name:      name,
		generator: g,
		clock:     clock,
		events:    events,
		kind:      departure,
		capacity:  Unbounded,
		enabled:   true,
	}
}

// Name returns the station name.
func (sp *ServicePoint) Name() string { return sp.name }

// DepartureKind returns the event kind scheduled when service ends.
func (sp *ServicePoint) DepartureKind() EventKind { return sp.kind }

// SetCapacity bounds the queue length. Use Unbounded to lift the limit.
func (sp *ServicePoint) SetCapacity(capacity int) {
	if capacity < 1 {
		panic(fmt.Sprintf("SetCapacity(%s): capacity must be >= 1, got %d", sp.name, capacity))
	}
	sp.capacity = capacity
}

// Capacity returns the queue limit (Unbounded when unlimited).
func (sp *ServicePoint) Capacity() int { return sp.capacity }

// SetEnabled switches the station on or off.
func (sp *ServicePoint) SetEnabled(enabled bool) { sp.enabled = enabled }

// Enabled reports whether the station accepts customers.
func (sp *ServicePoint) Enabled() bool { return sp.enabled }

// Reserved reports whether the station is serving its head customer.
func (sp *ServicePoint) Reserved() bool { return sp.reserved }

// QueueLength returns the number of customers at the station, including the one in service.
func (sp *ServicePoint) QueueLength() int { return sp.queue.Len() }

// HasWaiting reports whether anyone is in line.
func (sp *ServicePoint) HasWaiting() bool { return sp.queue.Len() > 0 }

// HasCapacity reports whether one more customer fits.
func (sp *ServicePoint) HasCapacity() bool {
	return HasCapacity(sp.queue.Len(), sp.capacity)
}

// CanAccept reports whether the station is enabled and has room.
func (sp *ServicePoint) CanAccept() bool {
	return sp.enabled && sp.HasCapacity()
}

// HasCapacity is the admission rule shared by all stations:
// true if maxCapacity is Unbounded or queueLength < maxCapacity.
func HasCapacity(queueLength, maxCapacity int) bool {
	if maxCapacity == Unbounded {
		return true
	}
	return queueLength < maxCapacity
}

// Enqueue appends a customer. Routing must check CanAccept first:
// enqueueing on a disabled or full station is a contract violation and panics.
func (sp *ServicePoint) Enqueue(c *Customer) {
	if !sp.enabled {
		panic(&InvariantError{Msg: "enqueue on disabled station", Detail: []any{sp.name}})
	}
	if !sp.HasCapacity() {
		panic(&InvariantError{Msg: "enqueue over capacity", Detail: []any{sp.name, sp.capacity}})
	}
	now := sp.clock.Now()
	sp.queue.Enqueue(c, now)
	c.stage(sp.name).Enqueued = now
	if n := sp.queue.Len(); n > sp.stats.PeakQueueLength {
		sp.stats.PeakQueueLength = n
	}
}

// BeginService starts serving the head customer and schedules its departure.
// No-op when disabled, already reserved, or empty.
func (sp *ServicePoint) BeginService() {
	if !sp.enabled || sp.reserved {
		return
	}
	head, enqueuedAt := sp.queue.Peek()
	if head == nil {
		return
	}
	now := sp.clock.Now()
	duration := sp.generator.Sample()

	sp.stats.TotalServiceTime += duration
	sp.stats.TotalWait += now - enqueuedAt
	sp.stats.Started++
	sp.reserved = true
	sp.serviceStart = now
	head.stage(sp.name).ServiceStart = now

	sp.events.Add(Event{Kind: sp.kind, Time: now + duration})
	logrus.Debugf("%s: serving customer #%d for %.3f s (waited %.3f s)", sp.name, head.ID, duration, now-enqueuedAt)
}

// CompleteService pops the customer in service and frees the server.
// Calling it while idle is a scheduling bug and panics.
func (sp *ServicePoint) CompleteService() *Customer {
	if !sp.reserved {
		panic(&InvariantError{Msg: "CompleteService on idle station", Detail: []any{sp.name}})
	}
	now := sp.clock.Now()
	c := sp.queue.Dequeue()
	sp.stats.BusyTime += now - sp.serviceStart
	sp.stats.Served++
	sp.reserved = false
	c.stage(sp.name).ServiceEnd = now
	return c
}

// Finalize closes out an in-progress busy interval at the current time.
// The customer stays in service; the interval is restarted so a second call adds nothing.
func (sp *ServicePoint) Finalize() {
	if !sp.reserved {
		return
	}
	now := sp.clock.Now()
	sp.stats.BusyTime += now - sp.serviceStart
	sp.serviceStart = now
}

// Stats returns a copy of the accumulated counters.
func (sp *ServicePoint) Stats() ServicePointStats { return sp.stats }

// AverageWait returns the mean queueing delay of customers whose service started.
func (sp *ServicePoint) AverageWait() float64 {
	if sp.stats.Started == 0 {
		return 0
	}
	return sp.stats.TotalWait / float64(sp.stats.Started)
}

// AverageServiceTime returns the mean sampled service duration.
func (sp *ServicePoint) AverageServiceTime() float64 {
	if sp.stats.Started == 0 {
		return 0
	}
	return sp.stats.TotalServiceTime / float64(sp.stats.Started)
}

// Utilization returns busy time as a percentage of elapsed simulation time.
func (sp *ServicePoint) Utilization(elapsed float64) float64 {
	if elapsed <= 0 {
		return 0
	}
	return sp.stats.BusyTime / elapsed * 100
}

// Reset empties the line and clears statistics; enabled and capacity are kept.
func (sp *ServicePoint) Reset() {
	sp.queue = CustomerQueue{}
	sp.reserved = false
	sp.serviceStart = 0
	sp.stats = ServicePointStats{}
}

func (sp *ServicePoint) String() string {
	return fmt.Sprintf("%s%s reserved=%t", sp.name, sp.queue.String(), sp.reserved)
}
