package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cafeteria-sim/cafeteria-sim/sim/cafeteria"
	"github.com/cafeteria-sim/cafeteria-sim/sim/trace"
)

var (
	// CLI flags for the run
	seed              int64   // Seed for customer attributes, arrivals and service times
	simulationHorizon float64 // Simulated seconds to run
	pacingDelayMs     int64   // Wall-clock milliseconds between ticks
	logLevel          string  // Log verbosity level
	configPath        string  // Optional YAML scenario file
	traceLevel        string  // Decision trace level

	// CLI flags for the cafeteria
	arrivalRate      float64 // Customers per hour
	maxQueueCapacity int     // Per-station queue limit, 0 = unbounded
	variability      bool    // Normal service times instead of fixed
	selfService      bool    // Enable the self-service payment server
	coffee           bool    // Enable the coffee server

	// CLI flags for station mean service times (seconds)
	grillTime       float64
	veganTime       float64
	normalTime      float64
	cashierTime     float64
	selfServiceTime float64
	coffeeTime      float64

	// CLI flags for output
	csvPath     string // Write the one-row result CSV here
	interactive bool   // Read p/r/+/-/q commands from stdin
	colorOutput bool   // Colorize the summary
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "cafeteria-sim",
	Short: "Discrete-event simulator for cafeteria customer flow",
}

// runCmd executes the simulation using parameters from the config file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the cafeteria simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		view := cafeteria.NewAsyncView(NewConsoleView(logrus.StandardLogger()), 1024)
		model, err := cafeteria.New(cfg, view)
		if err != nil {
			logrus.Fatalf("unable to build simulation: %v", err)
		}
		logrus.Infof("Starting simulation run=%s seed=%d horizon=%.0fs rate=%.1f/h",
			model.RunID(), cfg.Seed, cfg.Horizon, cfg.ArrivalRate)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		startTime := time.Now()
		if interactive {
			err = runInteractive(ctx, model, os.Stdin, os.Stdout)
		} else {
			err = model.Run(ctx)
		}
		view.Close()
		if err != nil {
			logrus.Errorf("simulation halted: %v", err)
		}

		report := model.Report()
		PrintSummary(os.Stdout, report, time.Since(startTime), colorOutput)
		if cfg.TraceLevel == string(trace.TraceLevelDecisions) {
			PrintTraceSummary(os.Stdout, trace.Summarize(model.Trace()), colorOutput)
		}
		if csvPath != "" {
			if err := WriteCSV(csvPath, report.Statistics); err != nil {
				logrus.Fatalf("unable to write results: %v", err)
			}
			logrus.Infof("Results written to %s", csvPath)
		}
		if err != nil {
			os.Exit(1)
		}
		logrus.Info("Simulation complete.")
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	defaults := cafeteria.DefaultConfig()

	runCmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Seed for random customer, arrival and service-time generation")
	runCmd.Flags().Float64Var(&simulationHorizon, "horizon", defaults.Horizon, "Total simulation horizon (in simulated seconds)")
	runCmd.Flags().Int64Var(&pacingDelayMs, "delay", defaults.PacingDelay.Milliseconds(), "Wall-clock delay between ticks in milliseconds (0 = as fast as possible)")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML scenario file; flags given explicitly override its values")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", defaults.TraceLevel, "Decision trace level (none, decisions)")

	// Cafeteria configs
	runCmd.Flags().Float64Var(&arrivalRate, "rate", defaults.ArrivalRate, "Customer arrivals per hour")
	runCmd.Flags().IntVar(&maxQueueCapacity, "capacity", defaults.MaxQueueCapacity, "Maximum queue length per station (0 = unbounded)")
	runCmd.Flags().BoolVar(&variability, "variability", defaults.Variability, "Sample service times from a normal distribution instead of using fixed times")
	runCmd.Flags().BoolVar(&selfService, "self-service", defaults.SelfServiceEnabled, "Enable the self-service payment station")
	runCmd.Flags().BoolVar(&coffee, "coffee", defaults.CoffeeEnabled, "Enable the coffee station")

	// Station service times
	runCmd.Flags().Float64Var(&grillTime, "grill-time", defaults.ServiceTimes.Grill, "Mean grill service time (s)")
	runCmd.Flags().Float64Var(&veganTime, "vegan-time", defaults.ServiceTimes.Vegan, "Mean vegan service time (s)")
	runCmd.Flags().Float64Var(&normalTime, "normal-time", defaults.ServiceTimes.Normal, "Mean normal-meal service time (s)")
	runCmd.Flags().Float64Var(&cashierTime, "cashier-time", defaults.ServiceTimes.Cashier, "Mean cashier service time (s)")
	runCmd.Flags().Float64Var(&selfServiceTime, "self-service-time", defaults.ServiceTimes.SelfService, "Mean self-service checkout time (s)")
	runCmd.Flags().Float64Var(&coffeeTime, "coffee-time", defaults.ServiceTimes.Coffee, "Mean coffee service time (s)")

	// Output
	runCmd.Flags().StringVar(&csvPath, "csv", "", "Write a one-row CSV summary to this path")
	runCmd.Flags().BoolVar(&interactive, "interactive", false, "Control the run from stdin: p=pause r=resume +=faster -=slower q=stop")
	runCmd.Flags().BoolVar(&colorOutput, "color", true, "Colorize the summary output")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
