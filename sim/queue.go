// Implements the CustomerQueue, the FIFO waiting line of a service point.
// The customer in service stays at the head until it departs.

package sim

import (
	"fmt"
	"strings"
)

type queueEntry struct {
	customer   *Customer
	enqueuedAt float64
}

// CustomerQueue is a FIFO line of customers with their enqueue timestamps.
type CustomerQueue struct {
	queue []queueEntry
}

// Enqueue appends a customer at the tail.
func (q *CustomerQueue) Enqueue(c *Customer, now float64) {
	if c == nil {
		panic("Enqueue: customer must not be nil")
	}
	q.queue = append(q.queue, queueEntry{customer: c, enqueuedAt: now})
}

// Len returns the number of customers in line, including the one in service.
func (q *CustomerQueue) Len() int {
	return len(q.queue)
}

// Peek returns the head customer and its enqueue time.
// Returns nil if the queue is empty.
func (q *CustomerQueue) Peek() (*Customer, float64) {
	if len(q.queue) == 0 {
		return nil, 0
	}
	return q.queue[0].customer, q.queue[0].enqueuedAt
}

// Dequeue removes the head customer. Returns nil if the queue is empty.
func (q *CustomerQueue) Dequeue() *Customer {
	if len(q.queue) == 0 {
		return nil
	}
	head := q.queue[0].customer
	q.queue[0] = queueEntry{}
	q.queue = q.queue[1:]
	return head
}

func (q *CustomerQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, e := range q.queue {
		sb.WriteString(fmt.Sprintf("#%d", e.customer.ID))
		if i < len(q.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
