package sim

import (
	"errors"
	"fmt"
)

// ErrSimulationHalted is returned by Engine.Run when an invariant violation stopped the loop.
var ErrSimulationHalted = errors.New("simulation halted")

// InvariantError is the panic value used for programming-contract violations
// inside the kernel (disabled station enqueue, overbooking, empty event queue, ...).
type InvariantError struct {
	Msg    string
	Detail []any
}

func (e *InvariantError) Error() string {
	if len(e.Detail) == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s %v", e.Msg, e.Detail)
}
