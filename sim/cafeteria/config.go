package cafeteria

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cafeteria-sim/cafeteria-sim/sim"
	"github.com/cafeteria-sim/cafeteria-sim/sim/trace"
)

// ServiceTimes groups the mean service time, in seconds, of each station kind.
type ServiceTimes struct {
	Grill       float64 `yaml:"grill"`
	Vegan       float64 `yaml:"vegan"`
	Normal      float64 `yaml:"normal"`
	Cashier     float64 `yaml:"cashier"` // shared by both cashier servers
	SelfService float64 `yaml:"self_service"`
	Coffee      float64 `yaml:"coffee"`
}

// Config is the full run configuration.
// All top-level keys must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Seed               int64         `yaml:"seed"`
	Horizon            float64       `yaml:"horizon"`            // simulated seconds
	PacingDelay        time.Duration `yaml:"pacing_delay"`       // wall-clock sleep per tick, e.g. "250ms"
	ArrivalRate        float64       `yaml:"arrival_rate"`       // customers per hour
	MaxQueueCapacity   int           `yaml:"max_queue_capacity"` // 0 = unbounded
	Variability        bool          `yaml:"variability"`        // Normal service times instead of fixed
	SelfServiceEnabled bool          `yaml:"self_service_enabled"`
	CoffeeEnabled      bool          `yaml:"coffee_enabled"`
	ServiceTimes       ServiceTimes  `yaml:"service_times"`
	TraceLevel         string        `yaml:"trace_level"`
}

// DefaultConfig returns the stock cafeteria scenario.
func DefaultConfig() Config {
	return Config{
		Seed:               42,
		Horizon:            3600,
		ArrivalRate:        120,
		MaxQueueCapacity:   0,
		Variability:        true,
		SelfServiceEnabled: true,
		CoffeeEnabled:      true,
		ServiceTimes: ServiceTimes{
			Grill:       45,
			Vegan:       40,
			Normal:      30,
			Cashier:     20,
			SelfService: 12,
			Coffee:      10,
		},
		TraceLevel: string(trace.TraceLevelNone),
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	nonNegative := func(name string, v float64) {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must be a finite value >= 0, got %v", name, v))
		}
	}
	nonNegative("horizon", c.Horizon)
	nonNegative("service_times.grill", c.ServiceTimes.Grill)
	nonNegative("service_times.vegan", c.ServiceTimes.Vegan)
	nonNegative("service_times.normal", c.ServiceTimes.Normal)
	nonNegative("service_times.cashier", c.ServiceTimes.Cashier)
	nonNegative("service_times.self_service", c.ServiceTimes.SelfService)
	nonNegative("service_times.coffee", c.ServiceTimes.Coffee)

	if c.ArrivalRate <= 0 || math.IsNaN(c.ArrivalRate) || math.IsInf(c.ArrivalRate, 0) {
		errs = append(errs, fmt.Errorf("arrival_rate must be > 0, got %v", c.ArrivalRate))
	}
	if c.MaxQueueCapacity < 0 {
		errs = append(errs, fmt.Errorf("max_queue_capacity must be >= 0 (0 = unbounded), got %d", c.MaxQueueCapacity))
	}
	if c.PacingDelay < 0 {
		errs = append(errs, fmt.Errorf("pacing_delay must be >= 0, got %s", c.PacingDelay))
	}
	if !trace.IsValidTraceLevel(c.TraceLevel) {
		errs = append(errs, fmt.Errorf("unknown trace_level %q", c.TraceLevel))
	}
	return errors.Join(errs...)
}

// StationCapacity returns the per-station queue limit, sim.Unbounded when MaxQueueCapacity is 0.
func (c Config) StationCapacity() int {
	if c.MaxQueueCapacity == 0 {
		return sim.Unbounded
	}
	return c.MaxQueueCapacity
}

// LoadConfig reads a YAML scenario on top of DefaultConfig.
// Uses strict field checking: typos must cause errors.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
