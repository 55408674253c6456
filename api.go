package qcflow

import (
	"context"
	"io"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	base "github.com/ghalamif/QCFlow/pkg/qcflow"
)

// Re-exported errors for convenience.
var (
	ErrNoData                = base.ErrNoData
	ErrInsufficientData      = base.ErrInsufficientData
	ErrInvalidHistogram      = base.ErrInvalidHistogram
	ErrInvalidLevel          = base.ErrInvalidLevel
	ErrChannelNotifierClosed = base.ErrChannelNotifierClosed
	ErrRecorderClosed        = base.ErrRecorderClosed
)

// Type aliases so consumers can import github.com/ghalamif/QCFlow directly.
type (
	Config           = base.Config
	Policy           = base.Policy
	CumulativeConfig = base.CumulativeConfig
	StoreConfig      = base.StoreConfig
	AlarmSettings    = base.AlarmSettings
	NotifyConfig     = base.NotifyConfig
	MetricsConfig    = base.MetricsConfig
	LogConfig        = base.LogConfig
	Flow             = base.Flow
	FlowOption       = base.FlowOption
	PersistOption    = base.PersistOption
	AlertOption      = base.AlertOption
	Monitor          = base.Monitor
	MonitorOption    = base.MonitorOption
	Recorder         = base.Recorder
	ResultHandler    = base.ResultHandler
	AlarmHandler     = base.AlarmHandler
	HistogramRecord  = base.HistogramRecord
	SummaryPoint     = base.SummaryPoint
	Series           = base.Series
	TrendBaseline    = base.TrendBaseline
	AlarmConfig      = base.AlarmConfig
	AlarmRecord      = base.AlarmRecord
	Result           = base.Result
	Decision         = base.Decision
	DecisionState    = base.DecisionState
	SeriesStore      = base.SeriesStore
	WriteMode        = base.WriteMode
	Unlocker         = base.Unlocker
	LoadOptions      = base.LoadOptions
	AlarmArchive     = base.AlarmArchive
	Notifier         = base.Notifier
	Notification     = base.Notification
	HistogramSource  = base.HistogramSource
	Observability    = base.Observability
	Field            = base.Field
	JSONSource       = base.JSONSource
	ConfigError      = base.ConfigError
	ParseError       = base.ParseError
	NotifyError      = base.NotifyError
)

const (
	StateSkipped     = base.StateSkipped
	StateNoAlarm     = base.StateNoAlarm
	StateAlarmRaised = base.StateAlarmRaised

	WriteAppend  = base.WriteAppend
	WriteRewrite = base.WriteRewrite

	DriverFile     = base.DriverFile
	DriverMemory   = base.DriverMemory
	DriverPostgres = base.DriverPostgres

	TransportLog  = base.TransportLog
	TransportNATS = base.TransportNATS
	TransportSMTP = base.TransportSMTP

	HistInstant    = base.HistInstant
	HistCumulative = base.HistCumulative
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func ParseConfig(raw []byte) (*Config, error) {
	return base.ParseConfig(raw)
}

// Flow builder helpers.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithFlowOptions(opts ...MonitorOption) FlowOption {
	return base.WithFlowOptions(opts...)
}

func PersistStore(s SeriesStore) PersistOption {
	return base.PersistStore(s)
}

func PersistArchive(a AlarmArchive) PersistOption {
	return base.PersistArchive(a)
}

func PersistObservability(obs Observability) PersistOption {
	return base.PersistObservability(obs)
}

func AlertNotifier(n Notifier) AlertOption {
	return base.AlertNotifier(n)
}

func AlertObservability(obs Observability) AlertOption {
	return base.AlertObservability(obs)
}

func AlertCallback(name string, fn AlarmHandler) AlertOption {
	return base.AlertCallback(name, fn)
}

// Monitor and options.
func NewMonitor(ctx context.Context, cfg *Config, opts ...MonitorOption) (*Monitor, error) {
	return base.NewMonitor(ctx, cfg, opts...)
}

func WithStore(s SeriesStore) MonitorOption {
	return base.WithStore(s)
}

func WithArchive(a AlarmArchive) MonitorOption {
	return base.WithArchive(a)
}

func WithNotifier(n Notifier) MonitorOption {
	return base.WithNotifier(n)
}

func WithObservability(obs Observability) MonitorOption {
	return base.WithObservability(obs)
}

func WithLogger(log logr.Logger) MonitorOption {
	return base.WithLogger(log)
}

func WithRegistry(reg *prometheus.Registry) MonitorOption {
	return base.WithRegistry(reg)
}

// Notifier adapters.
func NewCallbackNotifier(name string, fn AlarmHandler) Notifier {
	return base.NewCallbackNotifier(name, fn)
}

func NewChannelNotifier(name string, buffer int) (Notifier, <-chan Notification, func()) {
	return base.NewChannelNotifier(name, buffer)
}

// Sample recorder.
func NewRecorder(m *Monitor, start time.Time) (*Recorder, error) {
	return base.NewRecorder(m, start)
}

// Histogram sources.
func NewJSONSource(r io.Reader, metric string) *JSONSource {
	return base.NewJSONSource(r, metric)
}

func OpenJSONSource(path, metric string) (*JSONSource, error) {
	return base.OpenJSONSource(path, metric)
}

func FormatPoint(p SummaryPoint) string {
	return base.FormatPoint(p)
}
