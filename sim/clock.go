package sim

// Clock holds the current simulation time in seconds.
// It is owned by the Engine and handed to every component that needs "now".
// Not thread-safe: only the simulation goroutine may touch it.
type Clock struct {
	now float64
}

// NewClock returns a clock at time zero.
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the current simulation time.
func (c *Clock) Now() float64 {
	return c.now
}

// Advance moves the clock to t. Moving backwards is a scheduling bug and panics.
func (c *Clock) Advance(t float64) {
	if t < c.now {
		panic(&InvariantError{Msg: "clock went backwards", Detail: []any{t, c.now}})
	}
	c.now = t
}

// Reset rewinds the clock to zero between runs.
func (c *Clock) Reset() {
	c.now = 0
}
