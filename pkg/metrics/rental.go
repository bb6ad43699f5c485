// Package metrics provides Prometheus metrics for the rental service.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess  = "success"
	OutcomeNotHeld  = "not_held"
	OutcomeConflict = "conflict"
	OutcomeTimeout  = "timeout"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// RentalMetrics holds the rental lifecycle metrics. A nil *RentalMetrics is
// valid and records nothing.
type RentalMetrics struct {
	EndRentalTotal    *prometheus.CounterVec
	EndRentalDuration prometheus.Histogram
	RentalLength      prometheus.Histogram
	ChargedTotal      prometheus.Counter
	RetirementsTotal  *prometheus.CounterVec
	EventsTotal       *prometheus.CounterVec
}

func NewRentalMetrics(registry *prometheus.Registry) (*RentalMetrics, error) {
	m := &RentalMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register rental metrics: %w", err)
	}
	return m, nil
}

func (m *RentalMetrics) initMetrics() {
	m.EndRentalTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lockrent_end_rental_total",
		Help: "End-rental attempts by outcome",
	}, []string{"outcome"})

	m.EndRentalDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lockrent_end_rental_duration_seconds",
		Help:    "Latency of the end-rental transaction",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	m.RentalLength = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lockrent_rental_length_seconds",
		Help:    "Length of completed rentals",
		Buckets: []float64{60, 300, 900, 1800, 3600, 7200, 14400, 28800, 86400},
	})

	m.ChargedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lockrent_charged_minor_units_total",
		Help: "Sum of computed rental costs in minor currency units",
	})

	m.RetirementsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lockrent_retirements_total",
		Help: "Lock retirements by mode (deleted, deferred)",
	}, []string{"mode"})

	m.EventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lockrent_events_published_total",
		Help: "Rental events by publish result",
	}, []string{"result"})
}

func (m *RentalMetrics) ObserveEndRental(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.EndRentalTotal.WithLabelValues(outcome).Inc()
	m.EndRentalDuration.Observe(elapsed.Seconds())
}

func (m *RentalMetrics) ObserveCharge(length time.Duration, cost int64) {
	if m == nil {
		return
	}
	m.RentalLength.Observe(length.Seconds())
	m.ChargedTotal.Add(float64(cost))
}

func (m *RentalMetrics) IncRetirement(mode string) {
	if m == nil {
		return
	}
	m.RetirementsTotal.WithLabelValues(mode).Inc()
}

func (m *RentalMetrics) IncEvent(published bool) {
	if m == nil {
		return
	}
	result := "published"
	if !published {
		result = "failed"
	}
	m.EventsTotal.WithLabelValues(result).Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *RentalMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.EndRentalTotal.Describe(ch)
	m.EndRentalDuration.Describe(ch)
	m.RentalLength.Describe(ch)
	m.ChargedTotal.Describe(ch)
	m.RetirementsTotal.Describe(ch)
	m.EventsTotal.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *RentalMetrics) Collect(ch chan<- prometheus.Metric) {
	m.EndRentalTotal.Collect(ch)
	m.EndRentalDuration.Collect(ch)
	m.RentalLength.Collect(ch)
	m.ChargedTotal.Collect(ch)
	m.RetirementsTotal.Collect(ch)
	m.EventsTotal.Collect(ch)
}
