package sim

import (
	"container/heap"
	"fmt"
)

// EventKind identifies what happened. Models define their own kinds;
// the engine only uses them to look up the registered handler.
type EventKind int

// Event is a timestamped occurrence consumed exactly once by the engine loop.
type Event struct {
	Kind EventKind
	Time float64 // simulation time in seconds

	seq uint64 // insertion order, breaks ties between equal timestamps
}

func (e Event) String() string {
	return fmt.Sprintf("event{kind=%d t=%.3f}", e.Kind, e.Time)
}

// eventHeap implements heap.Interface.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

// Less orders by time, then by insertion sequence so that simultaneous
// events are dispatched in the order they were scheduled.
func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// EventQueue is a min-ordered queue of pending events.
type EventQueue struct {
	events  eventHeap
	nextSeq uint64
}

// NewEventQueue creates an empty event queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{events: make(eventHeap, 0)}
	heap.Init(&q.events)
	return q
}

// Add schedules an event.
func (q *EventQueue) Add(ev Event) {
	q.nextSeq++
	ev.seq = q.nextSeq
	heap.Push(&q.events, ev)
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	return q.events.Len()
}

// PeekTime returns the time of the earliest pending event.
// Callers must check Len first; peeking an empty queue panics.
func (q *EventQueue) PeekTime() float64 {
	if q.events.Len() == 0 {
		panic(&InvariantError{Msg: "PeekTime: event queue is empty"})
	}
	return q.events[0].Time
}

// Pop removes and returns the earliest pending event.
// Popping an empty queue is a scheduling bug and panics.
func (q *EventQueue) Pop() Event {
	if q.events.Len() == 0 {
		panic(&InvariantError{Msg: "Pop: event queue is empty"})
	}
	return heap.Pop(&q.events).(Event)
}

// Clear drops every pending event.
func (q *EventQueue) Clear() {
	q.events = q.events[:0]
}
