// Package sim provides the discrete-event simulation kernel behind the cafeteria model.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - event.go: Event, EventKind and the time-ordered EventQueue
//   - service_point.go: a finite-capacity server with its FIFO line and statistics
//   - engine.go: the three-phase loop (advance clock, B-phase, C-phase), pause/resume and cancellation
//
// # Architecture
//
// The kernel knows nothing about meals or cashiers beyond the Customer entity.
// Models plug in through Handlers (initialize, dispatch-by-kind, after-tick,
// finalize) instead of subclassing the engine:
//   - sim/distribution/: Fixed, Normal and NegativeExponential duration generators
//   - sim/cafeteria/: the cafeteria network, routing, admission control and statistics
//   - sim/trace/: decision trace recording
//
// All simulation state is owned by the goroutine running Engine.Run. Pause, Resume,
// Stop and the pacing setters are the only cross-goroutine entry points.
package sim
