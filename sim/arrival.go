package sim

import "github.com/sirupsen/logrus"

// ArrivalProcess keeps the arrival stream going: each call to GenerateNext
// schedules exactly one future arrival event.
type ArrivalProcess struct {
	generator Generator
	clock     *Clock
	events    *EventQueue
	kind      EventKind

	generated int
}

// NewArrivalProcess creates an arrival process scheduling events of the given kind.
func NewArrivalProcess(g Generator, clock *Clock, events *EventQueue, kind EventKind) *ArrivalProcess {
	return &ArrivalProcess{generator: g, clock: clock, events: events, kind: kind}
}

// GenerateNext samples an inter-arrival time and schedules the next arrival at now + sample.
func (a *ArrivalProcess) GenerateNext() Event {
	ev := Event{Kind: a.kind, Time: a.clock.Now() + a.generator.Sample()}
	a.events.Add(ev)
	a.generated++
	logrus.Debugf("next arrival scheduled at %.3f", ev.Time)
	return ev
}

// Generated returns how many arrival events have been scheduled.
func (a *ArrivalProcess) Generated() int {
	return a.generated
}
