package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Pacing delay bounds used by Faster / Slower.
const (
	MinPacingDelay = time.Millisecond
	MaxPacingDelay = 2 * time.Second
)

// State is the engine lifecycle: Idle → Initializing → Running ⇄ Paused → Finalizing → Stopped.
type State int32

const (
	StateIdle State = iota
	StateInitializing
	StateRunning
	StatePaused
	StateFinalizing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateFinalizing:
		return "finalizing"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// EventHandler processes one B-phase event.
type EventHandler func(Event)

// Handlers are the model-specific hooks plugged into the engine.
// Initialize schedules the first events; Events routes each kind to its handler;
// AfterTick runs once per tick after the C-phase; Finalize runs once after the loop.
// Any of them may be nil except Events.
type Handlers struct {
	Initialize func()
	Events     map[EventKind]EventHandler
	AfterTick  func()
	Finalize   func()
}

// Engine drives simulated time forward.
//
// Each tick: wait while paused → pace → advance the clock to the next event →
// B-phase (dispatch every event due now) → C-phase (start service wherever a
// server is free and someone waits) → AfterTick.
//
// The clock, event queue and service points are touched only by the goroutine
// running Run. Pause, Resume, Stop and the setters are safe from any goroutine.
type Engine struct {
	clock    *Clock
	events   *EventQueue
	points   []*ServicePoint
	handlers Handlers

	horizon atomic.Uint64 // math.Float64bits of the horizon in seconds
	delay   atomic.Int64  // pacing delay in nanoseconds
	state   atomic.Int32
	ticks   atomic.Int64

	mu      sync.Mutex
	cond    *sync.Cond
	paused  bool
	cancel  context.CancelFunc
	done    chan struct{}
	runErr  error
	started bool
}

// NewEngine creates an engine with its own clock and event queue.
func NewEngine(handlers Handlers) *Engine {
	if handlers.Events == nil {
		panic("NewEngine: handlers.Events must not be nil")
	}
	e := &Engine{
		clock:    NewClock(),
		events:   NewEventQueue(),
		handlers: handlers,
	}
	e.cond = sync.NewCond(&e.mu)
	e.horizon.Store(math.Float64bits(0))
	return e
}

// Clock returns the engine's clock.
func (e *Engine) Clock() *Clock { return e.clock }

// Events returns the engine's event queue.
func (e *Engine) Events() *EventQueue { return e.events }

// AddServicePoints registers stations for the C-phase scan, in scan order.
func (e *Engine) AddServicePoints(points ...*ServicePoint) {
	e.points = append(e.points, points...)
}

// ServicePoints returns the registered stations.
func (e *Engine) ServicePoints() []*ServicePoint { return e.points }

// SetSimulationHorizon sets the simulated time, in seconds, at which the loop stops.
func (e *Engine) SetSimulationHorizon(seconds float64) error {
	if seconds < 0 || math.IsNaN(seconds) {
		return fmt.Errorf("simulation horizon must be >= 0, got %v", seconds)
	}
	e.horizon.Store(math.Float64bits(seconds))
	return nil
}

// SimulationHorizon returns the configured horizon in seconds.
func (e *Engine) SimulationHorizon() float64 {
	return math.Float64frombits(e.horizon.Load())
}

// SetPacingDelay sets the wall-clock sleep between ticks. It does not affect simulated outcomes.
func (e *Engine) SetPacingDelay(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("pacing delay must be >= 0, got %s", d)
	}
	e.delay.Store(int64(d))
	return nil
}

// PacingDelay returns the current pacing delay.
func (e *Engine) PacingDelay() time.Duration {
	return time.Duration(e.delay.Load())
}

// Faster halves the pacing delay, never below MinPacingDelay.
// An unpaced run (zero delay) stays unpaced.
func (e *Engine) Faster() time.Duration {
	if e.PacingDelay() == 0 {
		return 0
	}
	d := max(MinPacingDelay, e.PacingDelay()/2)
	e.delay.Store(int64(d))
	return d
}

// Slower doubles the pacing delay, capped at MaxPacingDelay.
func (e *Engine) Slower() time.Duration {
	d := min(MaxPacingDelay, max(MinPacingDelay, e.PacingDelay()*2))
	e.delay.Store(int64(d))
	return d
}

// State returns the current lifecycle state.
func (e *Engine) State() State { return State(e.state.Load()) }

func (e *Engine) setState(s State) { e.state.Store(int32(s)) }

// Ticks returns the number of completed ticks in the current run.
func (e *Engine) Ticks() int64 { return e.ticks.Load() }

// Pause blocks the loop at its next checkpoint.
func (e *Engine) Pause() {
	e.mu.Lock()
	e.paused = true
	e.mu.Unlock()
}

// Resume releases a paused loop.
func (e *Engine) Resume() {
	e.mu.Lock()
	e.paused = false
	e.cond.Broadcast()
	e.mu.Unlock()
}

// IsPaused reports whether a pause has been requested and not yet resumed.
func (e *Engine) IsPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Start runs the simulation on its own goroutine. Use Wait for the result and Stop to cancel.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return errors.New("engine already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	e.started = true
	e.cancel = cancel
	e.done = make(chan struct{})
	go func() {
		err := e.Run(ctx)
		e.mu.Lock()
		e.runErr = err
		e.started = false
		cancel()
		close(e.done)
		e.mu.Unlock()
	}()
	return nil
}

// Stop cancels a run launched with Start. The loop still finalizes before Wait returns.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the run launched with Start has finished and returns its error.
func (e *Engine) Wait() error {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runErr
}

// Run executes one simulation synchronously until the horizon is reached or ctx is cancelled.
// Cancellation is a normal termination and returns nil. An invariant violation halts the
// loop and is returned wrapped in ErrSimulationHalted. Finalize runs in every case.
func (e *Engine) Run(ctx context.Context) error {
	stopWake := context.AfterFunc(ctx, func() {
		e.mu.Lock()
		e.cond.Broadcast()
		e.mu.Unlock()
	})
	defer stopWake()

	e.setState(StateInitializing)
	e.clock.Reset()
	e.events.Clear()
	e.ticks.Store(0)
	for _, p := range e.points {
		p.Reset()
	}

	loopErr := e.guard(func() {
		if e.handlers.Initialize != nil {
			e.handlers.Initialize()
		}
		e.loop(ctx)
	})

	e.setState(StateFinalizing)
	finErr := e.guard(func() {
		for _, p := range e.points {
			p.Finalize()
		}
		if e.handlers.Finalize != nil {
			e.handlers.Finalize()
		}
	})
	e.setState(StateStopped)

	if ctx.Err() != nil {
		logrus.Infof("[t=%.3f] Simulation cancelled after %d ticks", e.clock.Now(), e.Ticks())
	} else {
		logrus.Infof("[t=%.3f] Simulation ended after %d ticks", e.clock.Now(), e.Ticks())
	}
	return errors.Join(loopErr, finErr)
}

// guard converts a panic raised by a contract violation into ErrSimulationHalted.
func (e *Engine) guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("[t=%.3f] %v", e.clock.Now(), r)
			err = fmt.Errorf("%w at t=%.3f: %v", ErrSimulationHalted, e.clock.Now(), r)
		}
	}()
	fn()
	return nil
}

func (e *Engine) loop(ctx context.Context) {
	e.setState(StateRunning)
	for e.clock.Now() < e.SimulationHorizon() {
		if !e.awaitResume(ctx) {
			return
		}
		if !e.pace(ctx) {
			return
		}
		if e.events.Len() == 0 {
			panic(&InvariantError{Msg: "event queue drained before horizon"})
		}

		next := e.events.PeekTime()
		if horizon := e.SimulationHorizon(); next > horizon {
			e.clock.Advance(horizon)
			return
		}
		e.clock.Advance(next)
		logrus.Debugf("[t=%.3f] tick %d", e.clock.Now(), e.Ticks()+1)

		e.runBEvents()
		e.tryCEvents()
		e.ticks.Add(1)
		if e.handlers.AfterTick != nil {
			e.handlers.AfterTick()
		}
	}
}

// awaitResume is the single pause checkpoint. It returns false once ctx is cancelled,
// including while blocked in the pause.
func (e *Engine) awaitResume(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.paused && ctx.Err() == nil {
		e.setState(StatePaused)
		e.cond.Wait()
	}
	if ctx.Err() != nil {
		return false
	}
	e.setState(StateRunning)
	return true
}

func (e *Engine) pace(ctx context.Context) bool {
	d := e.PacingDelay()
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// runBEvents dispatches every event due at the current clock time.
func (e *Engine) runBEvents() {
	now := e.clock.Now()
	for e.events.Len() > 0 && e.events.PeekTime() == now {
		ev := e.events.Pop()
		handler, ok := e.handlers.Events[ev.Kind]
		if !ok {
			panic(&InvariantError{Msg: "no handler for event kind", Detail: []any{ev.Kind}})
		}
		logrus.Debugf("[t=%.3f] B-phase %v", now, ev)
		handler(ev)
	}
}

// tryCEvents starts service at every idle station with someone waiting.
func (e *Engine) tryCEvents() {
	for _, p := range e.points {
		if !p.Reserved() && p.HasWaiting() {
			p.BeginService()
		}
	}
}
