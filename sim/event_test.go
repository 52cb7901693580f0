package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventQueue_PopsInTimeOrder(t *testing.T) {
	// GIVEN events added out of order
	q := NewEventQueue()
	for _, ts := range []float64{5, 1, 3, 2, 4} {
		q.Add(Event{Kind: 1, Time: ts})
	}

	// WHEN popped
	var got []float64
	for q.Len() > 0 {
		got = append(got, q.Pop().Time)
	}

	// THEN times come out ascending
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, got)
}

func TestEventQueue_EqualTimes_InsertionOrder(t *testing.T) {
	// GIVEN three events at the same time with different kinds
	q := NewEventQueue()
	q.Add(Event{Kind: 3, Time: 10})
	q.Add(Event{Kind: 1, Time: 10})
	q.Add(Event{Kind: 2, Time: 10})
	q.Add(Event{Kind: 9, Time: 5})

	// WHEN popped
	var kinds []EventKind
	for q.Len() > 0 {
		kinds = append(kinds, q.Pop().Kind)
	}

	// THEN the earlier event comes first and ties follow scheduling order
	assert.Equal(t, []EventKind{9, 3, 1, 2}, kinds)
}

func TestEventQueue_RandomizedOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	q := NewEventQueue()
	for i := 0; i < 500; i++ {
		q.Add(Event{Kind: EventKind(i), Time: float64(rng.Intn(50))})
	}
	prev := Event{Time: -1}
	for q.Len() > 0 {
		ev := q.Pop()
		if ev.Time == prev.Time {
			assert.Less(t, prev.seq, ev.seq, "ties must pop in insertion order")
		} else {
			assert.Greater(t, ev.Time, prev.Time)
		}
		prev = ev
	}
}

func TestEventQueue_PeekTime(t *testing.T) {
	q := NewEventQueue()
	q.Add(Event{Kind: 1, Time: 8})
	q.Add(Event{Kind: 1, Time: 2})
	assert.Equal(t, 2.0, q.PeekTime())
	assert.Equal(t, 2, q.Len(), "PeekTime must not remove")
}

func TestEventQueue_Empty_Panics(t *testing.T) {
	q := NewEventQueue()
	assert.Panics(t, func() { q.PeekTime() })
	assert.Panics(t, func() { q.Pop() })
}

func TestEventQueue_Clear(t *testing.T) {
	q := NewEventQueue()
	q.Add(Event{Kind: 1, Time: 1})
	q.Add(Event{Kind: 1, Time: 2})
	q.Clear()
	assert.Zero(t, q.Len())
}
