package sim

// constGenerator returns the same duration on every Sample call.
type constGenerator float64

func (g constGenerator) Sample() float64 { return float64(g) }

// seqGenerator replays a fixed list of durations, repeating the last one.
type seqGenerator struct {
	values []float64
	next   int
}

func (g *seqGenerator) Sample() float64 {
	v := g.values[min(g.next, len(g.values)-1)]
	g.next++
	return v
}

// newTestPoint builds a service point with its own clock and event queue.
func newTestPoint(name string, g Generator) (*ServicePoint, *Clock, *EventQueue) {
	clock := NewClock()
	events := NewEventQueue()
	return NewServicePoint(name, g, clock, events, EventKind(1)), clock, events
}

func newTestCustomer(id int) *Customer {
	return &Customer{ID: id, Stages: make(map[string]*StageTimes)}
}
