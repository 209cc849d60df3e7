// Package metrics provides Prometheus metrics for the attitude
// estimation pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all attitude daemon Prometheus metrics.
type Metrics struct {
	SamplesTotal    prometheus.Counter
	SamplesDropped  *prometheus.CounterVec
	StepDuration    *prometheus.HistogramVec
	FilterErrors    *prometheus.CounterVec
	AccVariance     prometheus.Gauge
	CovarianceTrace *prometheus.GaugeVec
	ViewportClients prometheus.Gauge
	ViewportDropped prometheus.Counter
	RecordingActive prometheus.Gauge
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the global metrics instance.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = initializeMetrics()
	})
	return globalMetrics
}

func initializeMetrics() *Metrics {
	m := &Metrics{}

	m.SamplesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "attitude",
			Name:      "samples_total",
			Help:      "Total number of well-formed samples decoded from the serial link",
		},
	)

	m.SamplesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "attitude",
			Name:      "samples_dropped_total",
			Help:      "Total number of samples discarded before reaching the estimators",
		},
		[]string{"reason"},
	)

	m.StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "attitude",
			Name:      "step_duration_seconds",
			Help:      "Wall-clock duration of one driver step, per estimator",
			Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01},
		},
		[]string{"estimator"},
	)

	m.FilterErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "attitude",
			Name:      "filter_errors_total",
			Help:      "Total ErrNonFinite aborts, by filter",
		},
		[]string{"filter"},
	)

	m.AccVariance = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "attitude",
			Name:      "qeskf_acc_variance",
			Help:      "Current adaptively-tuned accelerometer measurement variance",
		},
	)

	m.CovarianceTrace = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "attitude",
			Name:      "covariance_trace",
			Help:      "Trace of each estimator's error-state covariance",
		},
		[]string{"estimator"},
	)

	m.ViewportClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "attitude",
			Name:      "viewport_clients",
			Help:      "Number of connected viewport websocket clients",
		},
	)

	m.ViewportDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "attitude",
			Name:      "viewport_frames_dropped_total",
			Help:      "Total frames dropped because a viewport client's buffer was full",
		},
	)

	m.RecordingActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "attitude",
			Name:      "recording_active",
			Help:      "1 while a record sink file is open, 0 otherwise",
		},
	)

	return m
}
