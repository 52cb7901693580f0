package sim

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// MealType selects which meal station a customer visits.
type MealType int

const (
	MealGrill MealType = iota
	MealVegan
	MealNormal
)

func (m MealType) String() string {
	switch m {
	case MealGrill:
		return "GRILL"
	case MealVegan:
		return "VEGAN"
	case MealNormal:
		return "NORMAL"
	default:
		return "UNKNOWN"
	}
}

// PaymentType selects the preferred payment server kind.
type PaymentType int

const (
	PaymentCashier PaymentType = iota
	PaymentSelfService
)

func (p PaymentType) String() string {
	switch p {
	case PaymentCashier:
		return "CASHIER"
	case PaymentSelfService:
		return "SELF_SERVICE"
	default:
		return "UNKNOWN"
	}
}

// Attribute split used by NewCustomer.
const (
	grillShare       = 0.30
	veganShare       = 0.30 // normal takes the remaining 0.40
	selfServiceShare = 0.60
	coffeeShare      = 0.30
)

// StageTimes records one station visit.
type StageTimes struct {
	Enqueued     float64
	ServiceStart float64
	ServiceEnd   float64
}

// Wait returns the time spent queueing before service started.
func (s StageTimes) Wait() float64 {
	return s.ServiceStart - s.Enqueued
}

// Customer is the entity flowing through the station network.
// Lifecycle: created on arrival → queued/served at each station → removed on exit.
// Nothing mutates a customer after RemovalTime is set.
type Customer struct {
	ID          int
	ArrivalTime float64
	RemovalTime float64
	Meal        MealType
	Payment     PaymentType
	WantsCoffee bool

	Stages  map[string]*StageTimes // station name → visit timestamps
	removed bool
}

// SetPaymentType overrides the drawn payment preference.
func (c *Customer) SetPaymentType(p PaymentType) {
	c.Payment = p
}

// Removed reports whether the customer has left the system.
func (c *Customer) Removed() bool {
	return c.removed
}

// TimeInSystem returns removal minus arrival; zero while still in the system.
func (c *Customer) TimeInSystem() float64 {
	if !c.removed {
		return 0
	}
	return c.RemovalTime - c.ArrivalTime
}

func (c *Customer) stage(name string) *StageTimes {
	st, ok := c.Stages[name]
	if !ok {
		st = &StageTimes{}
		c.Stages[name] = st
	}
	return st
}

// Population creates customers for one run. It owns the id sequence
// and the cumulative time-in-system sum; both restart with Reset.
type Population struct {
	clock *Clock
	rng   *rand.Rand

	nextID        int
	created       int
	removed       int
	totalInSystem float64
}

// NewPopulation returns a population drawing attributes from rng.
func NewPopulation(clock *Clock, rng *rand.Rand) *Population {
	return &Population{clock: clock, rng: rng, nextID: 1}
}

// NewCustomer creates a customer arriving now with independently drawn attributes.
func (p *Population) NewCustomer() *Customer {
	c := &Customer{
		ID:          p.nextID,
		ArrivalTime: p.clock.Now(),
		Meal:        p.drawMeal(),
		Payment:     p.drawPayment(),
		WantsCoffee: p.rng.Float64() < coffeeShare,
		Stages:      make(map[string]*StageTimes),
	}
	p.nextID++
	p.created++
	logrus.Debugf("New customer #%d arrived at %.3f (meal=%s payment=%s coffee=%t)",
		c.ID, c.ArrivalTime, c.Meal, c.Payment, c.WantsCoffee)
	return c
}

func (p *Population) drawMeal() MealType {
	r := p.rng.Float64()
	switch {
	case r < grillShare:
		return MealGrill
	case r < grillShare+veganShare:
		return MealVegan
	default:
		return MealNormal
	}
}

func (p *Population) drawPayment() PaymentType {
	if p.rng.Float64() < selfServiceShare {
		return PaymentSelfService
	}
	return PaymentCashier
}

// Remove stamps the customer's removal time and adds its stay to the running sum.
// Removing the same customer twice panics.
func (p *Population) Remove(c *Customer) {
	if c.removed {
		panic(&InvariantError{Msg: "customer removed twice", Detail: []any{c.ID}})
	}
	c.RemovalTime = p.clock.Now()
	c.removed = true
	p.removed++
	p.totalInSystem += c.RemovalTime - c.ArrivalTime
	logrus.Debugf("Customer #%d left at %.3f after %.3f s", c.ID, c.RemovalTime, c.RemovalTime-c.ArrivalTime)
}

// Created returns how many customers were created since the last reset.
func (p *Population) Created() int {
	return p.created
}

// RemovedCount returns how many customers left since the last reset.
func (p *Population) RemovedCount() int {
	return p.removed
}

// MeanTimeInSystem returns the average stay of removed customers.
func (p *Population) MeanTimeInSystem() float64 {
	if p.removed == 0 {
		return 0
	}
	return p.totalInSystem / float64(p.removed)
}

// Reset restarts the id sequence and clears the running sums.
func (p *Population) Reset() {
	p.nextID = 1
	p.created = 0
	p.removed = 0
	p.totalInSystem = 0
}
