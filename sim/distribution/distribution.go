// Package distribution provides duration generators for arrivals and service times.
// Every generator samples non-negative seconds and draws from its own *rand.Rand,
// so each one can be seeded independently.
package distribution

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cafeteria-sim/cafeteria-sim/sim"
)

// VariabilityCV is the stddev/mean ratio used for variable service times.
const VariabilityCV = 0.1

// Fixed always returns the same duration.
type Fixed struct {
	value float64
}

// NewFixed creates a constant generator. Negative values are rejected.
func NewFixed(value float64) (*Fixed, error) {
	if value < 0 || math.IsNaN(value) {
		return nil, fmt.Errorf("fixed time must be non-negative, got %v", value)
	}
	return &Fixed{value: value}, nil
}

func (g *Fixed) Sample() float64 {
	return g.value
}

// Normal produces Gaussian durations clamped at zero.
type Normal struct {
	mean, stdDev float64
	rng          *rand.Rand
}

// NewNormal creates a Normal(mean, stdDev) generator.
func NewNormal(mean, stdDev float64, rng *rand.Rand) (*Normal, error) {
	if mean < 0 || math.IsNaN(mean) {
		return nil, fmt.Errorf("normal mean must be non-negative, got %v", mean)
	}
	if stdDev < 0 || math.IsNaN(stdDev) {
		return nil, fmt.Errorf("normal stddev must be non-negative, got %v", stdDev)
	}
	if rng == nil {
		return nil, fmt.Errorf("normal generator requires an rng")
	}
	return &Normal{mean: mean, stdDev: stdDev, rng: rng}, nil
}

// Sample draws from the distribution; negative draws become 0.
func (g *Normal) Sample() float64 {
	val := g.rng.NormFloat64()*g.stdDev + g.mean
	return math.Max(0, val)
}

// NegExp produces exponentially-distributed (memoryless) durations.
type NegExp struct {
	mean float64
	rng  *rand.Rand
}

// NewNegExp creates a negative-exponential generator with the given mean.
func NewNegExp(mean float64, rng *rand.Rand) (*NegExp, error) {
	if mean <= 0 || math.IsNaN(mean) || math.IsInf(mean, 0) {
		return nil, fmt.Errorf("negative-exponential mean must be positive, got %v", mean)
	}
	if rng == nil {
		return nil, fmt.Errorf("negative-exponential generator requires an rng")
	}
	return &NegExp{mean: mean, rng: rng}, nil
}

func (g *NegExp) Sample() float64 {
	return g.rng.ExpFloat64() * g.mean
}

// Mean returns the configured mean.
func (g *NegExp) Mean() float64 {
	return g.mean
}

// NewServiceTime returns the service-time generator for a station:
// Normal(mean, mean*VariabilityCV) when variable, otherwise Fixed(mean).
func NewServiceTime(mean float64, variable bool, rng *rand.Rand) (sim.Generator, error) {
	if variable {
		g, err := NewNormal(mean, mean*VariabilityCV, rng)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	g, err := NewFixed(mean)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// MeanInterArrival converts an arrival rate in customers/hour to mean seconds between arrivals.
func MeanInterArrival(ratePerHour float64) (float64, error) {
	if ratePerHour <= 0 || math.IsNaN(ratePerHour) || math.IsInf(ratePerHour, 0) {
		return 0, fmt.Errorf("arrival rate must be positive, got %v", ratePerHour)
	}
	return 3600 / ratePerHour, nil
}

// NewArrivals creates the inter-arrival generator for a rate in customers/hour.
func NewArrivals(ratePerHour float64, rng *rand.Rand) (*NegExp, error) {
	mean, err := MeanInterArrival(ratePerHour)
	if err != nil {
		return nil, err
	}
	return NewNegExp(mean, rng)
}
