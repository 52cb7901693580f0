package distribution

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func samples(n int, sample func() float64) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = sample()
	}
	return xs
}

func TestNewFixed(t *testing.T) {
	g, err := NewFixed(12.5)
	require.NoError(t, err)
	assert.Equal(t, 12.5, g.Sample())
	assert.Equal(t, 12.5, g.Sample())

	_, err = NewFixed(-1)
	assert.Error(t, err)
	_, err = NewFixed(math.NaN())
	assert.Error(t, err)
}

func TestNewNormal_Validation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := NewNormal(-1, 1, rng)
	assert.Error(t, err)
	_, err = NewNormal(1, -1, rng)
	assert.Error(t, err)
	_, err = NewNormal(1, 1, nil)
	assert.Error(t, err)
}

func TestNormal_MeanAndSpread(t *testing.T) {
	// GIVEN Normal(45, 4.5)
	g, err := NewNormal(45, 4.5, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	// WHEN sampled many times
	mean, std := stat.MeanStdDev(samples(20000, g.Sample), nil)

	// THEN moments match the parameters
	assert.InDelta(t, 45, mean, 0.2)
	assert.InDelta(t, 4.5, std, 0.2)
}

func TestNormal_ClampsNegativeDraws(t *testing.T) {
	// GIVEN a distribution whose mass is mostly below zero
	g, err := NewNormal(1, 10, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	// THEN no sample is negative
	for _, v := range samples(5000, g.Sample) {
		require.GreaterOrEqual(t, v, 0.0)
	}
}

func TestNegExp_ArrivalRate120_Mean30(t *testing.T) {
	// GIVEN an arrival rate of 120 customers/hour
	g, err := NewArrivals(120, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Equal(t, 30.0, g.Mean())

	// WHEN sampled many times
	xs := samples(50000, g.Sample)

	// THEN the empirical mean is close to 30s and every sample is non-negative
	assert.InDelta(t, 30, stat.Mean(xs, nil), 0.6)
	assert.GreaterOrEqual(t, minOf(xs), 0.0)
}

func TestNegExp_Validation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := NewNegExp(0, rng)
	assert.Error(t, err)
	_, err = NewNegExp(math.Inf(1), rng)
	assert.Error(t, err)
	_, err = NewNegExp(1, nil)
	assert.Error(t, err)
}

func TestMeanInterArrival(t *testing.T) {
	tests := []struct {
		rate    float64
		want    float64
		wantErr bool
	}{
		{120, 30, false},
		{3600, 1, false},
		{60, 60, false},
		{0, 0, true},
		{-5, 0, true},
	}
	for _, tt := range tests {
		got, err := MeanInterArrival(tt.rate)
		if tt.wantErr {
			assert.Error(t, err, "rate %v", tt.rate)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestNewServiceTime(t *testing.T) {
	rng := rand.New(rand.NewSource(9))

	fixed, err := NewServiceTime(20, false, rng)
	require.NoError(t, err)
	assert.IsType(t, &Fixed{}, fixed)
	assert.Equal(t, 20.0, fixed.Sample())

	variable, err := NewServiceTime(20, true, rng)
	require.NoError(t, err)
	require.IsType(t, &Normal{}, variable)
	assert.Equal(t, 2.0, variable.(*Normal).stdDev)

	bad, err := NewServiceTime(-3, false, rng)
	assert.Error(t, err)
	assert.Nil(t, bad)
}

func minOf(xs []float64) float64 {
	m := math.Inf(1)
	for _, x := range xs {
		m = math.Min(m, x)
	}
	return m
}
