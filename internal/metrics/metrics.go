package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder collects filtering metrics on its own registry so that independent
// engines never share counters.
type Recorder struct {
	registry *prometheus.Registry

	FilterRuns         *prometheus.CounterVec
	FilterDropped      *prometheus.CounterVec
	Evaluations        prometheus.Counter
	Survivors          prometheus.Gauge
	EvaluationDuration prometheus.Histogram
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		FilterRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "school_matcher_filter_runs_total",
				Help: "Total number of filter stage executions",
			},
			[]string{"filter", "applied"},
		),
		FilterDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "school_matcher_filter_dropped_total",
				Help: "Total number of schools removed by a filter stage",
			},
			[]string{"filter"},
		),
		Evaluations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "school_matcher_evaluations_total",
				Help: "Total number of preference evaluations",
			},
		),
		Survivors: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "school_matcher_survivors",
				Help: "Schools left after the last must-have evaluation",
			},
		),
		EvaluationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "school_matcher_evaluation_duration_seconds",
				Help:    "Duration of a full evaluation in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
		),
	}
}

// ObserveStage records one filter stage execution.
func (r *Recorder) ObserveStage(filter string, applied bool, dropped int) {
	if r == nil {
		return
	}
	r.FilterRuns.WithLabelValues(filter, strconv.FormatBool(applied)).Inc()
	r.FilterDropped.WithLabelValues(filter).Add(float64(dropped))
}

// ObserveEvaluation records a completed evaluation.
func (r *Recorder) ObserveEvaluation(survivors int, took time.Duration) {
	if r == nil {
		return
	}
	r.Evaluations.Inc()
	r.Survivors.Set(float64(survivors))
	r.EvaluationDuration.Observe(took.Seconds())
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile dumps the registry in the text exposition format, suitable for
// the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
