package ports

// Metric names emitted through Observability. Adapters register exactly these.
const (
	MetricPointsAppended     = "qcflow_points_appended_total"
	MetricAlarmsRaised       = "qcflow_alarms_raised_total"
	MetricEvaluationsSkipped = "qcflow_evaluations_skipped_total"
	MetricNotifyFailures     = "qcflow_notify_failures_total"
	MetricParseWarnings      = "qcflow_parse_warnings_total"
	MetricLastCentral        = "qcflow_last_central_quantile"
	MetricTrendValue         = "qcflow_trend_value"
	MetricPipelineDuration   = "qcflow_pipeline_duration_seconds"
)

type Observability interface {
	LogInfo(msg string, fields ...Field)
	LogWarn(msg string, fields ...Field)
	LogError(msg string, err error, fields ...Field)

	IncCounter(name string, v float64)
	ObserveLatency(name string, seconds float64)

	SetGauge(name string, v float64)
}

type Field struct {
	Key   string
	Value any
}

// NopObservability discards everything.
type NopObservability struct{}

func (NopObservability) LogInfo(string, ...Field)         {}
func (NopObservability) LogWarn(string, ...Field)         {}
func (NopObservability) LogError(string, error, ...Field) {}
func (NopObservability) IncCounter(string, float64)       {}
func (NopObservability) ObserveLatency(string, float64)   {}
func (NopObservability) SetGauge(string, float64)         {}
