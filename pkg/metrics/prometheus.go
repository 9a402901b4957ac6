package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	evaluations  *prometheus.HistogramVec
	sentiments   *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder registered on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		evaluations: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edgefinder_evaluation_duration_seconds",
				Help:    "Duration of one evaluation cycle over the asset list",
				Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05},
			},
			[]string{"timeframe"},
		),
		sentiments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgefinder_sentiment_rows_total",
				Help: "Scored rows by timeframe and sentiment",
			},
			[]string{"timeframe", "sentiment"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgefinder_evaluation_cache_total",
				Help: "Evaluation cache lookups by result",
			},
			[]string{"result"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgefinder_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordEvaluation records the latency of one evaluation cycle.
func (r *Recorder) RecordEvaluation(timeframe string, seconds float64) {
	r.evaluations.WithLabelValues(timeframe).Observe(seconds)
}

// RecordSentiment counts one scored row.
func (r *Recorder) RecordSentiment(timeframe, sentiment string) {
	r.sentiments.WithLabelValues(timeframe, sentiment).Inc()
}

// RecordCacheResult counts a cache lookup ("hit", "miss" or "error").
func (r *Recorder) RecordCacheResult(result string) {
	r.cacheLookups.WithLabelValues(result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
