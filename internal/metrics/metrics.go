package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	stocksAnalyzed     prometheus.Counter
	stockFailures      *prometheus.CounterVec
	signalsGenerated   *prometheus.CounterVec
	transitions        *prometheus.CounterVec
	sentimentFallbacks prometheus.Counter
	batchDuration      prometheus.Histogram
	universeSize       prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		stocksAnalyzed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "marketlens_stocks_analyzed_total",
				Help: "Total number of stocks analyzed",
			},
		),
		stockFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketlens_stock_failures_total",
				Help: "Total number of per-stock analysis failures",
			},
			[]string{"stage"},
		),
		signalsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketlens_signals_generated_total",
				Help: "Total number of signals generated",
			},
			[]string{"type", "strength"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketlens_signal_transitions_total",
				Help: "Total number of signal lifecycle transitions",
			},
			[]string{"status"},
		),
		sentimentFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "marketlens_sentiment_fallbacks_total",
				Help: "Total number of stocks scored with neutral sentiment fallback",
			},
		),
		batchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "marketlens_batch_duration_seconds",
				Help:    "Daily batch duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		),
		universeSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "marketlens_universe_symbols",
				Help: "Number of symbols in the analysis universe",
			},
		),
	}

	reg.MustRegister(r.stocksAnalyzed)
	reg.MustRegister(r.stockFailures)
	reg.MustRegister(r.signalsGenerated)
	reg.MustRegister(r.transitions)
	reg.MustRegister(r.sentimentFallbacks)
	reg.MustRegister(r.batchDuration)
	reg.MustRegister(r.universeSize)

	return r
}

// RecordStockAnalyzed records one completed per-stock analysis.
func (r *Registry) RecordStockAnalyzed() {
	r.stocksAnalyzed.Inc()
}

// RecordStockFailure records a per-stock failure at the given stage.
func (r *Registry) RecordStockFailure(stage string) {
	r.stockFailures.WithLabelValues(stage).Inc()
}

// RecordSignal records a generated signal.
func (r *Registry) RecordSignal(signalType, strength string) {
	r.signalsGenerated.WithLabelValues(signalType, strength).Inc()
}

// RecordTransition records a lifecycle transition into the given status.
func (r *Registry) RecordTransition(status string) {
	r.transitions.WithLabelValues(status).Inc()
}

// RecordSentimentFallback records a neutral-sentiment degradation.
func (r *Registry) RecordSentimentFallback() {
	r.sentimentFallbacks.Inc()
}

// RecordBatch records a daily batch completion.
func (r *Registry) RecordBatch(duration float64) {
	r.batchDuration.Observe(duration)
}

// SetUniverseSize sets the analysis universe size.
func (r *Registry) SetUniverseSize(size int) {
	r.universeSize.Set(float64(size))
}
