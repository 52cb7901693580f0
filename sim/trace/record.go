// Package trace provides decision-trace recording for admission and routing analysis.
// This package has no dependencies on sim/ or sim/cafeteria/; it stores pure data types.
package trace

// AdmissionRecord captures a single admission decision at a station.
type AdmissionRecord struct {
	CustomerID int
	Clock      float64
	Station    string
	Admitted   bool
	Reason     string
}

// RoutingRecord captures a single routing decision with the queue lengths the router saw.
type RoutingRecord struct {
	CustomerID    int
	Clock         float64
	From          string
	ChosenStation string // empty when no station could take the customer
	Reason        string
	QueueLengths  map[string]int // candidate station → queue length at decision time (may be nil)
}
