package cafeteria

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafeteria-sim/cafeteria-sim/sim"
	"github.com/cafeteria-sim/cafeteria-sim/sim/trace"
)

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ServiceTimes.Grill = -1
	m, err := New(cfg, nil)
	assert.Error(t, err)
	assert.Nil(t, m)
}

func TestNew_Topology(t *testing.T) {
	m := newTestModel(t, nil, func(c *Config) {
		c.MaxQueueCapacity = 4
		c.SelfServiceEnabled = false
	})

	var names []string
	for _, sp := range m.Engine().ServicePoints() {
		names = append(names, sp.Name())
		assert.Equal(t, 4, sp.Capacity())
	}
	assert.Equal(t, []string{NameGrill, NameVegan, NameNormal, NameCashier1, NameCashier2, NameSelfService, NameCoffee}, names)
	assert.False(t, m.selfService.Enabled())
	assert.True(t, m.coffee.Enabled())
	assert.NotEmpty(t, m.RunID())
	assert.Equal(t, sim.StateIdle, m.State())
}

func TestHandleArrival_Backpressure(t *testing.T) {
	// GIVEN capacity 1 and all three meal stations occupied
	m := newTestModel(t, nil, func(c *Config) { c.MaxQueueCapacity = 1 })
	m.initialize()
	events := m.Engine().Events()
	events.Clear()
	for _, sp := range []*sim.ServicePoint{m.grill, m.vegan, m.normal} {
		sp.Enqueue(m.population.NewCustomer())
	}

	// WHEN an arrival is handled
	m.handleArrival(sim.Event{Kind: EventArrival})

	// THEN the customer is rejected and no further arrival is scheduled
	assert.Equal(t, 1, m.Statistics().CustomersRejected)
	assert.Zero(t, events.Len())
	assert.True(t, m.ArrivalsSuspended())

	// WHEN the grill finishes serving
	m.grill.BeginService()
	require.Equal(t, 1, events.Len())
	departure := events.Pop()
	m.Engine().Clock().Advance(departure.Time)
	m.mealDeparture(func() *sim.ServicePoint { return m.grill })(departure)

	// THEN the arrival stream resumes with exactly one new arrival
	assert.False(t, m.ArrivalsSuspended())
	require.Equal(t, 1, events.Len())
	next := events.Pop()
	assert.Equal(t, EventArrival, next.Kind)
	assert.GreaterOrEqual(t, next.Time, departure.Time)
	assert.Zero(t, m.grill.QueueLength())
}

func TestHandleArrival_RejectionStillSchedulesNext(t *testing.T) {
	// GIVEN capacity 1 with only some meal stations full
	m := newTestModel(t, nil, func(c *Config) { c.MaxQueueCapacity = 1 })
	m.initialize()
	events := m.Engine().Events()
	events.Clear()
	m.grill.Enqueue(m.population.NewCustomer())

	// WHEN an arrival is handled
	m.handleArrival(sim.Event{Kind: EventArrival})

	// THEN another arrival is scheduled whether or not this one was admitted
	assert.Equal(t, 1, events.Len())
	assert.False(t, m.ArrivalsSuspended())
}

func TestMealDeparture_CashiersFull_TracedAsUnroutedRouting(t *testing.T) {
	// GIVEN capacity 1, self-service disabled and both cashiers occupied
	m := newTestModel(t, nil, func(c *Config) {
		c.MaxQueueCapacity = 1
		c.SelfServiceEnabled = false
		c.TraceLevel = string(trace.TraceLevelDecisions)
	})
	m.initialize()
	events := m.Engine().Events()
	events.Clear()
	m.cashier1.Enqueue(newCustomer(m, sim.PaymentCashier))
	m.cashier2.Enqueue(newCustomer(m, sim.PaymentCashier))
	m.grill.Enqueue(newCustomer(m, sim.PaymentCashier))
	m.grill.BeginService()
	departure := events.Pop()
	m.Engine().Clock().Advance(departure.Time)

	// WHEN the grill customer finishes eating
	m.mealDeparture(func() *sim.ServicePoint { return m.grill })(departure)

	// THEN the customer is rejected and traced as one unrouted routing decision
	assert.Equal(t, 1, m.Statistics().CustomersRejected)
	assert.Empty(t, m.Trace().Admissions)
	routings := m.Trace().Routings
	if assert.Len(t, routings, 1) {
		assert.Empty(t, routings[0].ChosenStation)
		assert.Equal(t, "all cashiers full", routings[0].Reason)
	}
}

func TestRun_Conservation_And_Capacity(t *testing.T) {
	tests := []struct {
		name      string
		overrides func(*Config)
	}{
		{"defaults", nil},
		{"capacity 2", func(c *Config) { c.MaxQueueCapacity = 2 }},
		{"overloaded capacity 1", func(c *Config) {
			c.MaxQueueCapacity = 1
			c.ArrivalRate = 600
			c.SelfServiceEnabled = false
		}},
		{"fixed times no options", func(c *Config) {
			c.MaxQueueCapacity = 3
			c.Variability = false
			c.SelfServiceEnabled = false
			c.CoffeeEnabled = false
		}},
		{"slow coffee", func(c *Config) {
			c.MaxQueueCapacity = 1
			c.ServiceTimes.Coffee = 120
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := &recordingView{}
			m := newTestModel(t, view, func(c *Config) {
				c.Horizon = 7200
				if tt.overrides != nil {
					tt.overrides(c)
				}
			})
			capacity := m.Config().StationCapacity()
			view.onTick = func() {
				for _, sp := range m.Engine().ServicePoints() {
					require.LessOrEqual(t, sp.QueueLength(), capacity, sp.Name())
					if sp.Reserved() {
						require.GreaterOrEqual(t, sp.QueueLength(), 1, sp.Name())
					}
				}
			}

			require.NoError(t, m.Run(context.Background()))

			s := m.Statistics()
			assert.Positive(t, s.ArrivalsGenerated)
			assert.Equal(t, s.ArrivalsGenerated, s.CustomersServed+s.CustomersRejected+s.CustomersInSystem)
			assert.Equal(t, s.CustomersServed, view.exits)
			assert.Equal(t, 7200.0, s.CurrentTime)
		})
	}
}

func TestRun_Unbounded_NoRejections(t *testing.T) {
	view := &recordingView{}
	m := newTestModel(t, view, func(c *Config) { c.Horizon = 1800 })

	require.NoError(t, m.Run(context.Background()))

	s := m.Statistics()
	assert.Zero(t, s.CustomersRejected)
	assert.Equal(t, s.ArrivalsGenerated, view.created)
	inPayment := m.cashier1.QueueLength() + m.cashier2.QueueLength() + m.selfService.QueueLength() + m.coffee.QueueLength()
	assert.Equal(t, len(view.toPayment), s.CustomersServed+inPayment)
}

func TestRun_ViewNotifications(t *testing.T) {
	// GIVEN a recording view
	view := &recordingView{}
	m := newTestModel(t, view, func(c *Config) { c.Horizon = 900 })

	// WHEN the run completes
	require.NoError(t, m.Run(context.Background()))

	// THEN queues and statistics are pushed after every tick and the end is signalled once, last
	ticks := int(m.Engine().Ticks())
	assert.Len(t, view.queues, ticks)
	assert.Len(t, view.stats, ticks+1)
	require.Len(t, view.endedAt, 1)
	assert.Equal(t, 900.0, view.endedAt[0])
	assert.Equal(t, "ended", view.calls[len(view.calls)-1])
	assert.Equal(t, m.Statistics(), view.stats[len(view.stats)-1])
	for _, idx := range view.toPayment {
		assert.Contains(t, []int{StationSelfService, StationCashier1, StationCashier2}, idx)
	}
}

func TestRun_CoffeeDisabled_NoCoffeeVisits(t *testing.T) {
	view := &recordingView{}
	m := newTestModel(t, view, func(c *Config) {
		c.Horizon = 3600
		c.CoffeeEnabled = false
	})
	require.NoError(t, m.Run(context.Background()))
	assert.Zero(t, view.toCoffee)
	assert.Zero(t, m.coffee.Stats().Served)
	assert.Positive(t, view.exits)
}

func TestRun_CoffeeEnabled_SomeCoffeeVisits(t *testing.T) {
	view := &recordingView{}
	m := newTestModel(t, view, func(c *Config) { c.Horizon = 3600 })
	require.NoError(t, m.Run(context.Background()))
	assert.Positive(t, view.toCoffee)
	assert.Positive(t, m.coffee.Stats().Served)
}

func TestRun_Deterministic(t *testing.T) {
	// GIVEN two models with the same seed
	cfg := func(c *Config) {
		c.Horizon = 3600
		c.MaxQueueCapacity = 2
		c.Seed = 7
	}
	a := newTestModel(t, nil, cfg)
	b := newTestModel(t, nil, cfg)

	// WHEN both run
	require.NoError(t, a.Run(context.Background()))
	require.NoError(t, b.Run(context.Background()))

	// THEN their results are identical
	ra, rb := a.Report(), b.Report()
	assert.Equal(t, ra.Statistics, rb.Statistics)
	assert.Equal(t, ra.TimeInSystem, rb.TimeInSystem)
	assert.Equal(t, ra.Stations, rb.Stations)
	assert.NotEqual(t, ra.RunID, rb.RunID)

	// AND a second run of the same model replays the first
	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, ra.Statistics, a.Report().Statistics)
}

func TestRun_DifferentSeedsDiffer(t *testing.T) {
	a := newTestModel(t, nil, func(c *Config) { c.Seed = 1 })
	b := newTestModel(t, nil, func(c *Config) { c.Seed = 2 })
	require.NoError(t, a.Run(context.Background()))
	require.NoError(t, b.Run(context.Background()))
	assert.NotEqual(t, a.Statistics(), b.Statistics())
}

func TestRun_Report(t *testing.T) {
	m := newTestModel(t, nil, func(c *Config) { c.Horizon = 3600 })
	assert.Nil(t, m.FinalReport())

	require.NoError(t, m.Run(context.Background()))

	report := m.FinalReport()
	require.NotNil(t, report)
	assert.Equal(t, m.RunID(), report.RunID)
	assert.Len(t, report.Stations, 7)
	assert.Equal(t, report.Statistics.CustomersServed, report.TimeInSystem.Count)
	for _, st := range report.Stations {
		assert.GreaterOrEqual(t, st.Utilization, 0.0, st.Name)
		assert.LessOrEqual(t, st.Utilization, 100.0+1e-9, st.Name)
	}
	assert.InDelta(t, report.Statistics.AverageWait, report.TimeInSystem.Mean, 1e-6)
}

func TestRun_DecisionTrace(t *testing.T) {
	m := newTestModel(t, nil, func(c *Config) {
		c.Horizon = 3600
		c.MaxQueueCapacity = 1
		c.ArrivalRate = 400
		c.TraceLevel = string(trace.TraceLevelDecisions)
	})
	require.NoError(t, m.Run(context.Background()))

	summary := trace.Summarize(m.Trace())
	s := m.Statistics()
	paymentRejections := 0
	for _, r := range m.Trace().Routings {
		if r.ChosenStation == "" && r.Reason == "all cashiers full" {
			paymentRejections++
		}
	}
	for _, a := range m.Trace().Admissions {
		assert.NotEqual(t, "payment", a.Station)
	}
	assert.Equal(t, s.CustomersRejected, summary.RejectedCount+paymentRejections)
	assert.Positive(t, summary.AdmittedCount)
	assert.Positive(t, summary.RoutingDecisions)
}

func TestModel_StartPauseResumeStop(t *testing.T) {
	// GIVEN a paced run with a very long horizon
	view := &recordingView{}
	m := newTestModel(t, view, func(c *Config) {
		c.Horizon = 1e9
		c.PacingDelay = time.Millisecond
	})
	require.NoError(t, m.Start(context.Background()))
	require.Eventually(t, func() bool { return m.Engine().Ticks() > 2 }, 5*time.Second, time.Millisecond)

	// WHEN paused and resumed
	m.Pause()
	assert.True(t, m.IsPaused())
	require.Eventually(t, func() bool { return m.State() == sim.StatePaused }, 5*time.Second, time.Millisecond)
	m.Resume()
	assert.False(t, m.IsPaused())

	// WHEN stopped
	m.Stop()
	require.NoError(t, m.Wait())

	// THEN the run finalized normally
	assert.Equal(t, sim.StateStopped, m.State())
	assert.NotNil(t, m.FinalReport())
	assert.Len(t, view.endedAt, 1)
}

func TestModel_SpeedControls(t *testing.T) {
	m := newTestModel(t, nil, func(c *Config) { c.PacingDelay = 200 * time.Millisecond })
	assert.Equal(t, 200*time.Millisecond, m.PacingDelay())
	assert.Equal(t, 100*time.Millisecond, m.Faster())
	assert.Equal(t, 200*time.Millisecond, m.Slower())
	require.NoError(t, m.SetPacingDelay(0))
	assert.Zero(t, m.Faster(), "an unpaced run stays unpaced")
	assert.Zero(t, m.PacingDelay())
	assert.Error(t, m.SetSimulationHorizon(-5))
	require.NoError(t, m.SetSimulationHorizon(60))
	assert.Equal(t, 60.0, m.Engine().SimulationHorizon())
}
