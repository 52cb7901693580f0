package sim

// Generator samples a non-negative duration in seconds.
// Implementations live in sim/distribution.
type Generator interface {
	Sample() float64
}
