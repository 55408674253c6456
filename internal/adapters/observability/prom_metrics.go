package observability

import (
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ghalamif/QCFlow/internal/ports"
)

// Re-exported metric names.
const (
	MetricPointsAppended     = ports.MetricPointsAppended
	MetricAlarmsRaised       = ports.MetricAlarmsRaised
	MetricEvaluationsSkipped = ports.MetricEvaluationsSkipped
	MetricNotifyFailures     = ports.MetricNotifyFailures
	MetricParseWarnings      = ports.MetricParseWarnings
	MetricLastCentral        = ports.MetricLastCentral
	MetricTrendValue         = ports.MetricTrendValue
	MetricPipelineDuration   = ports.MetricPipelineDuration
)

// PromObs logs through logr and records the pipeline metrics in Prometheus.
type PromObs struct {
	log      logr.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

// NewPromObs registers the pipeline metrics on reg, or on the default
// registerer when reg is nil.
func NewPromObs(log logr.Logger, reg prometheus.Registerer) *PromObs {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	appended := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricPointsAppended,
		Help: "Summary points persisted to a series.",
	})
	alarms := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricAlarmsRaised,
		Help: "Alarms raised by the deviation tests.",
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricEvaluationsSkipped,
		Help: "Alarm evaluations skipped for missing config or insufficient data.",
	})
	notifyFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricNotifyFailures,
		Help: "Alarm notifications the transport failed to deliver.",
	})
	parseWarnings := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricParseWarnings,
		Help: "Persisted series lines skipped because they could not be decoded.",
	})
	central := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricLastCentral,
		Help: "Central quantile of the most recent event.",
	})
	trend := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricTrendValue,
		Help: "Weighted trend baseline of the most recent evaluation.",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    MetricPipelineDuration,
		Help:    "Wall time of one monitoring pipeline run.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	reg.MustRegister(appended, alarms, skipped, notifyFailures, parseWarnings, central, trend, duration)

	return &PromObs{
		log: log,
		counters: map[string]prometheus.Counter{
			MetricPointsAppended:     appended,
			MetricAlarmsRaised:       alarms,
			MetricEvaluationsSkipped: skipped,
			MetricNotifyFailures:     notifyFailures,
			MetricParseWarnings:      parseWarnings,
		},
		gauges: map[string]prometheus.Gauge{
			MetricLastCentral: central,
			MetricTrendValue:  trend,
		},
		histos: map[string]prometheus.Observer{
			MetricPipelineDuration: duration,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.log.Info(msg, keysAndValues(fields)...)
}

func (p *PromObs) LogWarn(msg string, fields ...ports.Field) {
	p.log.Info(msg, append([]any{"severity", "warn"}, keysAndValues(fields)...)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	p.log.Error(err, msg, keysAndValues(fields)...)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func keysAndValues(fields []ports.Field) []any {
	kv := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		kv = append(kv, f.Key, f.Value)
	}
	return kv
}

var _ ports.Observability = (*PromObs)(nil)
