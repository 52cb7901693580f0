package cmd

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/cafeteria-sim/cafeteria-sim/sim"
	"github.com/cafeteria-sim/cafeteria-sim/sim/cafeteria"
)

// progressInterval is how often, in simulated seconds, the console reports statistics.
const progressInterval = 60.0

// ConsoleView reports customer movements at debug level and a progress line
// every simulated minute.
type ConsoleView struct {
	log        logrus.FieldLogger
	lastReport float64
	queues     cafeteria.QueueLengths
}

// NewConsoleView returns a view writing to log.
func NewConsoleView(log logrus.FieldLogger) *ConsoleView {
	return &ConsoleView{log: log, lastReport: math.Inf(-1)}
}

func paymentStationName(station int) string {
	switch station {
	case cafeteria.StationSelfService:
		return cafeteria.NameSelfService
	case cafeteria.StationCashier1:
		return cafeteria.NameCashier1
	case cafeteria.StationCashier2:
		return cafeteria.NameCashier2
	default:
		return "none"
	}
}

func (v *ConsoleView) CustomerCreated(meal sim.MealType) {
	v.log.WithField("meal", meal).Debug("customer arrived")
}

func (v *ConsoleView) CustomerToPayment(meal sim.MealType, payment sim.PaymentType, station int) {
	v.log.WithFields(logrus.Fields{
		"meal":    meal,
		"payment": payment,
		"station": paymentStationName(station),
	}).Debug("customer moved to payment")
}

func (v *ConsoleView) CustomerToCoffee(payment sim.PaymentType, station int) {
	v.log.WithFields(logrus.Fields{
		"payment": payment,
		"from":    paymentStationName(station),
	}).Debug("customer moved to coffee")
}

func (v *ConsoleView) CustomerExitFromCoffee() {
	v.log.Debug("customer left after coffee")
}

func (v *ConsoleView) CustomerExitFromPayment(payment sim.PaymentType, station int) {
	v.log.WithFields(logrus.Fields{
		"payment": payment,
		"from":    paymentStationName(station),
	}).Debug("customer left after payment")
}

func (v *ConsoleView) QueueLengthsUpdated(q cafeteria.QueueLengths) {
	v.queues = q
}

func (v *ConsoleView) StatisticsUpdated(s cafeteria.Statistics) {
	if s.CurrentTime-v.lastReport < progressInterval {
		return
	}
	v.lastReport = s.CurrentTime
	q := v.queues
	v.log.Infof("[t=%7.1f] served=%d rejected=%d in-system=%d throughput=%.1f/h avg=%.1fs | meal %d/%d/%d pay %d/%d/%d (%s) coffee %d",
		s.CurrentTime, s.CustomersServed, s.CustomersRejected, s.CustomersInSystem, s.Throughput, s.AverageWait,
		q.Grill, q.Vegan, q.Normal, q.Cashier1, q.Cashier2, q.SelfService, paymentStage(s.PaymentStageOpen), q.Coffee)
}

func (v *ConsoleView) SimulationEnded(finalTime float64) {
	v.log.Infof("Simulation ended at t=%.1fs", finalTime)
}

func paymentStage(open bool) string {
	if open {
		return "open"
	}
	return "full"
}
