package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	parsesTotal  *prometheus.CounterVec
	rejectsTotal *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		parsesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sigpull_parses_total",
				Help: "Total number of accepted parses by strategy and channel",
			},
			[]string{"method", "channel"},
		),
		rejectsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sigpull_rejects_total",
				Help: "Total number of messages rejected by the parse pipeline",
			},
			[]string{"reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sigpull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sigpull_last_price",
				Help: "Last streamed price for an instrument with open signals",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sigpull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordParse records an accepted parse by strategy and channel.
func (r *Recorder) RecordParse(method, channel string) {
	if channel == "" {
		channel = "unknown"
	}
	r.parsesTotal.WithLabelValues(method, channel).Inc()
}

// RecordReject records a message dropped by the pipeline.
func (r *Recorder) RecordReject(reason string) {
	r.rejectsTotal.WithLabelValues(reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
