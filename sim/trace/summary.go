package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	RunID              string
	TotalDecisions     int
	AdmittedCount      int
	RejectedCount      int
	RejectionsByReason map[string]int
	RoutingDecisions   int
	UnroutedCount      int
	UniqueTargets      int
	TargetDistribution map[string]int // station name → count of customers routed
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		RejectionsByReason: make(map[string]int),
		TargetDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}
	summary.RunID = st.Config.RunID

	summary.TotalDecisions = len(st.Admissions)
	for _, a := range st.Admissions {
		if a.Admitted {
			summary.AdmittedCount++
		} else {
			summary.RejectedCount++
			summary.RejectionsByReason[a.Reason]++
		}
	}

	summary.RoutingDecisions = len(st.Routings)
	for _, r := range st.Routings {
		if r.ChosenStation == "" {
			summary.UnroutedCount++
			continue
		}
		summary.TargetDistribution[r.ChosenStation]++
	}

	summary.UniqueTargets = len(summary.TargetDistribution)

	return summary
}
