package core

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JonMunkholm/birthmatrix/internal/numerology"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Calculations      *prometheus.CounterVec
	Rejections        *prometheus.CounterVec
	CalculationTimeMs prometheus.Histogram
	Forecasts         prometheus.Counter
	HistoryPurged     prometheus.Counter
	HistoryFailures   prometheus.Counter
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Calculations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "birthmatrix_calculations_total",
			Help: "Matrix calculations served, by cache outcome",
		}, []string{"cache"}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "birthmatrix_rejected_dates_total",
			Help: "Birth dates rejected by validation, by reason",
		}, []string{"reason"}),
		CalculationTimeMs: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "birthmatrix_calculation_duration_ms",
			Help:    "Latency of matrix calculations in milliseconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}),
		Forecasts: f.NewCounter(prometheus.CounterOpts{
			Name: "birthmatrix_forecasts_total",
			Help: "Forecasts served",
		}),
		HistoryPurged: f.NewCounter(prometheus.CounterOpts{
			Name: "birthmatrix_history_purged_total",
			Help: "History entries removed by the retention scheduler",
		}),
		HistoryFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "birthmatrix_history_failures_total",
			Help: "Calculations that could not be recorded in history",
		}),
	}
}

func (m *Metrics) ObserveCalculation(cached bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "miss"
	if cached {
		outcome = "hit"
	}
	m.Calculations.WithLabelValues(outcome).Inc()
	m.CalculationTimeMs.Observe(float64(d.Microseconds()) / 1000.0)
}

func (m *Metrics) IncrementRejections(err error) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(rejectionReason(err)).Inc()
}

func (m *Metrics) IncrementForecasts() {
	if m == nil {
		return
	}
	m.Forecasts.Inc()
}

func (m *Metrics) AddHistoryPurged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.HistoryPurged.Add(float64(n))
}

func (m *Metrics) IncrementHistoryFailures() {
	if m == nil {
		return
	}
	m.HistoryFailures.Inc()
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, numerology.ErrInvalidFormat):
		return "format"
	case errors.Is(err, numerology.ErrOutOfRange):
		return "range"
	case errors.Is(err, numerology.ErrImpossibleDate):
		return "impossible"
	case errors.Is(err, numerology.ErrFutureDate):
		return "future"
	default:
		return "other"
	}
}
