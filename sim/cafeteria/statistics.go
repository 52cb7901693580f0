package cafeteria

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/cafeteria-sim/cafeteria-sim/sim"
)

// Statistics is a read-only snapshot derived from the running counters.
type Statistics struct {
	CustomersServed   int
	CustomersRejected int
	CustomersInSystem int
	ArrivalsGenerated int     // arrivals that reached the cafeteria
	Throughput        float64 // customers served per simulated hour
	AverageWait       float64 // mean time in system of served customers, seconds
	PeakQueueLength   int     // largest queue seen at any station
	PaymentStageOpen  bool    // false while no payment server can take a customer
	CurrentTime       float64
}

// Collector accumulates exit and rejection counts for one run.
type Collector struct {
	served        int
	rejected      int
	totalWait     float64
	timesInSystem []float64
}

// CustomerServed records an exit.
func (c *Collector) CustomerServed(exitTime, arrivalTime float64) {
	c.served++
	c.totalWait += exitTime - arrivalTime
	c.timesInSystem = append(c.timesInSystem, exitTime-arrivalTime)
}

// CustomerRejected records a customer turned away.
func (c *Collector) CustomerRejected() {
	c.rejected++
}

// Served returns the number of exits.
func (c *Collector) Served() int { return c.served }

// Rejected returns the number of rejections.
func (c *Collector) Rejected() int { return c.rejected }

// AverageWait returns the mean time in system, or 0 if nobody has left yet.
func (c *Collector) AverageWait() float64 {
	if c.served == 0 {
		return 0
	}
	return c.totalWait / float64(c.served)
}

// Throughput returns served customers per hour of simulated time.
func (c *Collector) Throughput(now float64) float64 {
	if now <= 0 {
		return 0
	}
	return float64(c.served) / now * 3600
}

// Reset clears all counters.
func (c *Collector) Reset() {
	c.served = 0
	c.rejected = 0
	c.totalWait = 0
	c.timesInSystem = c.timesInSystem[:0]
}

// TimeInSystem summarizes the distribution of time spent in the cafeteria.
type TimeInSystem struct {
	Count  int
	Mean   float64
	StdDev float64
	P50    float64
	P90    float64
	P99    float64
	Max    float64
}

// TimeInSystem computes the distribution of recorded stays.
func (c *Collector) TimeInSystem() TimeInSystem {
	n := len(c.timesInSystem)
	if n == 0 {
		return TimeInSystem{}
	}
	sorted := make([]float64, n)
	copy(sorted, c.timesInSystem)
	sort.Float64s(sorted)

	summary := TimeInSystem{
		Count: n,
		P50:   stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:   stat.Quantile(0.90, stat.Empirical, sorted, nil),
		P99:   stat.Quantile(0.99, stat.Empirical, sorted, nil),
		Max:   sorted[n-1],
	}
	if n > 1 {
		summary.Mean, summary.StdDev = stat.MeanStdDev(sorted, nil)
	} else {
		summary.Mean = sorted[0]
	}
	return summary
}

// StationReport is the end-of-run view of one service point.
type StationReport struct {
	Name               string
	Enabled            bool
	Served             int
	AverageWait        float64
	AverageServiceTime float64
	Utilization        float64 // percent of elapsed time spent serving
	PeakQueueLength    int
	QueueLength        int
}

func newStationReport(sp *sim.ServicePoint, elapsed float64) StationReport {
	st := sp.Stats()
	return StationReport{
		Name:               sp.Name(),
		Enabled:            sp.Enabled(),
		Served:             st.Served,
		AverageWait:        sp.AverageWait(),
		AverageServiceTime: sp.AverageServiceTime(),
		Utilization:        sp.Utilization(elapsed),
		PeakQueueLength:    st.PeakQueueLength,
		QueueLength:        sp.QueueLength(),
	}
}

// Report bundles everything known at the end of a run.
type Report struct {
	RunID        string
	Statistics   Statistics
	TimeInSystem TimeInSystem
	Stations     []StationReport
}
