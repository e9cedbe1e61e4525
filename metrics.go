package astro

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	propagationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astro_propagations_total",
			Help: "Total number of propagation runs by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	propagationStepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astro_propagation_steps_total",
			Help: "Total number of integration steps completed.",
		},
		[]string{"mode"},
	)

	propagationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "astro_propagation_duration_seconds",
			Help:    "Wall clock duration of propagation runs.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"mode"},
	)
)

func init() {
	prometheus.MustRegister(propagationsTotal)
	prometheus.MustRegister(propagationStepsTotal)
	prometheus.MustRegister(propagationDurationSeconds)
}

// MetricsHandler returns the Prometheus metrics HTTP handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// recordPropagation records the outcome of one run.
func recordPropagation(mode PropagationMode, outcome string, steps int, duration time.Duration) {
	propagationsTotal.WithLabelValues(mode.String(), outcome).Inc()
	propagationStepsTotal.WithLabelValues(mode.String()).Add(float64(steps))
	propagationDurationSeconds.WithLabelValues(mode.String()).Observe(duration.Seconds())
}
