// Package alarm decides whether the latest point deviates enough from its
// reference or from its trend to raise an alarm.
package alarm

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/ghalamif/QCFlow/internal/domain"
)

type State int

const (
	StateSkipped State = iota
	StateNoAlarm
	StateAlarmRaised
)

func (s State) String() string {
	switch s {
	case StateSkipped:
		return "skipped"
	case StateNoAlarm:
		return "no_alarm"
	case StateAlarmRaised:
		return "alarm_raised"
	default:
		return "unknown"
	}
}

// Decision is the outcome of one evaluation. Record is set only when an
// alarm was raised; Reason explains a skipped evaluation.
type Decision struct {
	State         State
	Reason        error
	AbsExceeded   bool
	TrendExceeded bool
	Record        *domain.AlarmRecord
}

// Meta identifies what is being evaluated; it only flows into the record.
type Meta struct {
	Metric string
	Site   string
}

type Evaluator struct {
	meta  Meta
	newID func() string
}

func NewEvaluator(meta Meta) *Evaluator {
	return &Evaluator{meta: meta, newID: func() string { return uuid.NewString() }}
}

func (e *Evaluator) Evaluate(current domain.SummaryPoint, trend domain.TrendBaseline, cfg domain.AlarmConfig) Decision {
	if err := cfg.Validate(); err != nil {
		return Decision{State: StateSkipped, Reason: err}
	}
	minPoints := *cfg.MinPointsPerEvent
	if current.SampleCount < int64(minPoints) {
		return Decision{State: StateSkipped, Reason: fmt.Errorf("%w: %d samples at %s, need %d",
			domain.ErrInsufficientData, current.SampleCount, current.Timestamp.Format("02-01-2006"), minPoints)}
	}
	if current.Central == nil {
		return Decision{State: StateSkipped, Reason: fmt.Errorf("%w: central quantile undefined at %s",
			domain.ErrNoData, current.Timestamp.Format("02-01-2006"))}
	}

	observed := *current.Central
	d := Decision{State: StateNoAlarm}
	d.AbsExceeded = math.Abs(observed-*cfg.ReferenceValue) > *cfg.AbsTolerance
	if trend.Defined() {
		d.TrendExceeded = math.Abs(observed-*trend.Value) > *cfg.TrendTolerance
	}
	if !d.AbsExceeded && !d.TrendExceeded {
		return d
	}

	d.State = StateAlarmRaised
	d.Record = &domain.AlarmRecord{
		ID:                  e.newID(),
		Metric:              e.meta.Metric,
		Site:                e.meta.Site,
		Timestamp:           current.Timestamp,
		ReferenceValue:      *cfg.ReferenceValue,
		AbsTolerance:        *cfg.AbsTolerance,
		TrendValue:          trendValue(trend),
		TrendTolerance:      *cfg.TrendTolerance,
		MinEventsForTrend:   *cfg.MinEventsForTrend,
		MinPointsPerEvent:   minPoints,
		TrendSampleCount:    trend.SupportingSampleCount,
		ObservedSampleCount: current.SampleCount,
		ObservedValue:       observed,
		AbsExceeded:         d.AbsExceeded,
		TrendExceeded:       d.TrendExceeded,
		Sender:              *cfg.Sender,
		Recipients:          append([]string(nil), cfg.Recipients...),
	}
	return d
}

func trendValue(t domain.TrendBaseline) *float64 {
	if !t.Defined() {
		return nil
	}
	return domain.Float(*t.Value)
}
