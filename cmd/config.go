package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cafeteria-sim/cafeteria-sim/sim/cafeteria"
)

// resolveConfig starts from the scenario file (or the defaults) and applies every
// flag the user set explicitly. Flags left at their default never override the file.
func resolveConfig(cmd *cobra.Command) (cafeteria.Config, error) {
	cfg := cafeteria.DefaultConfig()
	if configPath != "" {
		loaded, err := cafeteria.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	applyFlagOverrides(cmd.Flags(), &cfg)
	return cfg, cfg.Validate()
}

func applyFlagOverrides(flags *pflag.FlagSet, cfg *cafeteria.Config) {
	overrides := map[string]func(){
		"seed":              func() { cfg.Seed = seed },
		"horizon":           func() { cfg.Horizon = simulationHorizon },
		"delay":             func() { cfg.PacingDelay = time.Duration(pacingDelayMs) * time.Millisecond },
		"trace-level":       func() { cfg.TraceLevel = traceLevel },
		"rate":              func() { cfg.ArrivalRate = arrivalRate },
		"capacity":          func() { cfg.MaxQueueCapacity = maxQueueCapacity },
		"variability":       func() { cfg.Variability = variability },
		"self-service":      func() { cfg.SelfServiceEnabled = selfService },
		"coffee":            func() { cfg.CoffeeEnabled = coffee },
		"grill-time":        func() { cfg.ServiceTimes.Grill = grillTime },
		"vegan-time":        func() { cfg.ServiceTimes.Vegan = veganTime },
		"normal-time":       func() { cfg.ServiceTimes.Normal = normalTime },
		"cashier-time":      func() { cfg.ServiceTimes.Cashier = cashierTime },
		"self-service-time": func() { cfg.ServiceTimes.SelfService = selfServiceTime },
		"coffee-time":       func() { cfg.ServiceTimes.Coffee = coffeeTime },
	}
	for name, apply := range overrides {
		if flags.Changed(name) {
			apply()
		}
	}
}
