package qcflow

import (
	"github.com/ghalamif/QCFlow/internal/app/alarm"
	"github.com/ghalamif/QCFlow/internal/app/pipeline"
	"github.com/ghalamif/QCFlow/internal/domain"
	"github.com/ghalamif/QCFlow/internal/ports"
)

// HistogramRecord is the binned distribution of one metric over one period.
type HistogramRecord = domain.HistogramRecord

// SummaryPoint is one persisted period: sample count plus low/central/high quantiles.
type SummaryPoint = domain.SummaryPoint

// Series is the persisted history of one metric.
type Series = domain.Series

// TrendBaseline is the trailing weighted mean the latest point is compared against.
type TrendBaseline = domain.TrendBaseline

// AlarmConfig holds the thresholds and addressing of the deviation tests.
type AlarmConfig = domain.AlarmConfig

// AlarmRecord carries both deviation tests of a raised alarm.
type AlarmRecord = domain.AlarmRecord

// Result reports what one monitoring run did.
type Result = pipeline.Result

// Decision is the alarm evaluation outcome inside a Result.
type Decision = alarm.Decision

// DecisionState is Skipped, NoAlarm or AlarmRaised.
type DecisionState = alarm.State

const (
	StateSkipped     = alarm.StateSkipped
	StateNoAlarm     = alarm.StateNoAlarm
	StateAlarmRaised = alarm.StateAlarmRaised
)

// SeriesStore persists and loads monitoring series (files, PostgreSQL, memory, ...).
type SeriesStore = ports.SeriesStore

// WriteMode selects append or rewrite for SeriesStore.Write.
type WriteMode = ports.WriteMode

// Unlocker releases a lock taken by SeriesStore.Lock.
type Unlocker = ports.Unlocker

// LoadOptions tunes SeriesStore.Load.
type LoadOptions = ports.LoadOptions

// AlarmArchive stores the rendered alarm payload before notification.
type AlarmArchive = ports.AlarmArchive

// Notifier delivers raised alarms.
type Notifier = ports.Notifier

// Notification is what a Notifier receives.
type Notification = ports.Notification

// HistogramSource yields histograms to monitor.
type HistogramSource = ports.HistogramSource

// Observability emits logs and metrics about each run.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

const (
	WriteAppend  = ports.WriteAppend
	WriteRewrite = ports.WriteRewrite
)

// Error taxonomy. None of these abort a run; they show up in Result.Diagnostics.
var (
	ErrNoData           = domain.ErrNoData
	ErrInsufficientData = domain.ErrInsufficientData
	ErrInvalidHistogram = domain.ErrInvalidHistogram
	ErrInvalidLevel     = domain.ErrInvalidLevel
)

type (
	ConfigError = domain.ConfigError
	ParseError  = domain.ParseError
	NotifyError = domain.NotifyError
)
