package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/logrusorgru/aurora"

	"github.com/cafeteria-sim/cafeteria-sim/sim/cafeteria"
	"github.com/cafeteria-sim/cafeteria-sim/sim/trace"
)

// PrintSummary writes the end-of-run report.
func PrintSummary(w io.Writer, report cafeteria.Report, wallTime time.Duration, colored bool) {
	au := aurora.NewAurora(colored)
	s := report.Statistics

	fmt.Fprintf(w, "%s run %s\n", au.Bold("=== Simulation Summary ==="), report.RunID)
	fmt.Fprintf(w, "%s %.1f s   %s %s\n", au.Cyan("Simulated time:"), s.CurrentTime, au.Cyan("Running time:"), wallTime.Round(time.Millisecond))
	fmt.Fprintf(w, "%-22s %d\n", "Arrivals:", s.ArrivalsGenerated)
	fmt.Fprintf(w, "%-22s %s\n", "Served:", au.Green(strconv.Itoa(s.CustomersServed)))
	fmt.Fprintf(w, "%-22s %s\n", "Rejected:", au.Red(strconv.Itoa(s.CustomersRejected)))
	fmt.Fprintf(w, "%-22s %d\n", "Still in system:", s.CustomersInSystem)
	fmt.Fprintf(w, "%-22s %.2f customers/h\n", "Throughput:", s.Throughput)
	fmt.Fprintf(w, "%-22s %.2f s\n", "Avg time in system:", s.AverageWait)
	fmt.Fprintf(w, "%-22s %d\n", "Peak queue length:", s.PeakQueueLength)
	fmt.Fprintf(w, "%-22s %s\n", "Payment stage:", paymentStage(s.PaymentStageOpen))

	tis := report.TimeInSystem
	if tis.Count > 0 {
		fmt.Fprintf(w, "%-22s p50=%.1f p90=%.1f p99=%.1f max=%.1f stddev=%.1f\n",
			"Time in system (s):", tis.P50, tis.P90, tis.P99, tis.Max, tis.StdDev)
	}

	fmt.Fprintln(w, au.Bold(fmt.Sprintf("%-14s %7s %9s %9s %8s %6s %6s", "Station", "Served", "AvgWait", "AvgSvc", "Util%", "Peak", "Queue")))
	for _, st := range report.Stations {
		name := fmt.Sprintf("%-14s", st.Name)
		if !st.Enabled {
			fmt.Fprintf(w, "%s %s\n", au.Gray(name), au.Gray("disabled"))
			continue
		}
		fmt.Fprintf(w, "%s %7d %9.2f %9.2f %8.1f %6d %6d\n",
			name, st.Served, st.AverageWait, st.AverageServiceTime, st.Utilization, st.PeakQueueLength, st.QueueLength)
	}
}

// PrintTraceSummary writes the decision trace rollup.
func PrintTraceSummary(w io.Writer, summary *trace.TraceSummary, colored bool) {
	au := aurora.NewAurora(colored)
	fmt.Fprintf(w, "%s run %s\n", au.Bold("=== Decision Trace ==="), summary.RunID)
	fmt.Fprintf(w, "%-22s %d (admitted %d, rejected %d)\n", "Admissions:", summary.TotalDecisions, summary.AdmittedCount, summary.RejectedCount)
	for _, reason := range sortedKeys(summary.RejectionsByReason) {
		fmt.Fprintf(w, "  %-20s %d\n", au.Brown(reason), summary.RejectionsByReason[reason])
	}
	fmt.Fprintf(w, "%-22s %d (unrouted %d)\n", "Routings:", summary.RoutingDecisions, summary.UnroutedCount)
	for _, target := range sortedKeys(summary.TargetDistribution) {
		fmt.Fprintf(w, "  %-20s %d\n", target, summary.TargetDistribution[target])
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
