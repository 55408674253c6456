package alarm

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ghalamif/QCFlow/internal/domain"
)

func testConfig(ref, absTol, trendTol float64, minPoints, minEvents int) domain.AlarmConfig {
	sender := "qcflow@example.org"
	return domain.AlarmConfig{
		ReferenceValue:    &ref,
		AbsTolerance:      &absTol,
		TrendTolerance:    &trendTol,
		MinPointsPerEvent: &minPoints,
		MinEventsForTrend: &minEvents,
		Sender:            &sender,
		Recipients:        []string{"ops@example.org"},
	}
}

func newTestEvaluator() *Evaluator {
	e := NewEvaluator(Meta{Metric: "dBZ_bias", Site: "Albis"})
	e.newID = func() string { return "alarm-1" }
	return e
}

func point(np int64, central float64) domain.SummaryPoint {
	return domain.SummaryPoint{
		Timestamp:   time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		SampleCount: np,
		Central:     domain.Float(central),
	}
}

func TestAbsoluteTestAloneRaisesAlarm(t *testing.T) {
	d := newTestEvaluator().Evaluate(point(100, 2.5), domain.TrendBaseline{}, testConfig(0, 1, 1, 5, 3))

	if d.State != StateAlarmRaised {
		t.Fatalf("expected alarm, got %s (%v)", d.State, d.Reason)
	}
	if !d.AbsExceeded || d.TrendExceeded {
		t.Fatalf("expected only absolute test to trigger, got abs=%v trend=%v", d.AbsExceeded, d.TrendExceeded)
	}
	if d.Record == nil || d.Record.TrendValue != nil {
		t.Fatalf("expected record with undefined trend, got %+v", d.Record)
	}
}

func TestWithinToleranceNoAlarm(t *testing.T) {
	d := newTestEvaluator().Evaluate(point(100, 11), domain.TrendBaseline{}, testConfig(10, 2, 0.1, 5, 3))

	if d.State != StateNoAlarm || d.Record != nil {
		t.Fatalf("expected no alarm, got %s", d.State)
	}
}

func TestTrendTestRaisesAlarm(t *testing.T) {
	trend := domain.TrendBaseline{Value: domain.Float(5), SupportingSampleCount: 300, Events: 3}
	d := newTestEvaluator().Evaluate(point(100, 6), trend, testConfig(6, 1, 0.5, 5, 3))

	if d.State != StateAlarmRaised || d.AbsExceeded || !d.TrendExceeded {
		t.Fatalf("expected trend-only alarm, got %+v", d)
	}
	if d.Record.TrendValue == nil || *d.Record.TrendValue != 5 || d.Record.TrendSampleCount != 300 {
		t.Fatalf("expected trend inputs on record, got %+v", d.Record)
	}
}

func TestTrendWithoutSupportIsIgnored(t *testing.T) {
	trend := domain.TrendBaseline{Value: domain.Float(0)}
	d := newTestEvaluator().Evaluate(point(100, 6), trend, testConfig(6, 1, 0.5, 5, 3))

	if d.State != StateNoAlarm {
		t.Fatalf("expected trend with zero supporting samples to be ignored, got %s", d.State)
	}
}

func TestInsufficientSamplesSkips(t *testing.T) {
	d := newTestEvaluator().Evaluate(point(2, 100), domain.TrendBaseline{}, testConfig(0, 1, 1, 5, 3))

	if d.State != StateSkipped {
		t.Fatalf("expected skipped evaluation, got %s", d.State)
	}
	if !errors.Is(d.Reason, domain.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", d.Reason)
	}
}

func TestMissingConfigSkips(t *testing.T) {
	cfg := testConfig(0, 1, 1, 5, 3)
	cfg.Sender = nil
	cfg.TrendTolerance = nil

	d := newTestEvaluator().Evaluate(point(100, 100), domain.TrendBaseline{}, cfg)

	var cfgErr *domain.ConfigError
	if d.State != StateSkipped || !errors.As(d.Reason, &cfgErr) {
		t.Fatalf("expected config error skip, got %s (%v)", d.State, d.Reason)
	}
	if strings.Join(cfgErr.Missing, ",") != "trend_tolerance,sender" {
		t.Fatalf("unexpected missing fields %v", cfgErr.Missing)
	}
}

func TestRenderPayload(t *testing.T) {
	trend := domain.TrendBaseline{Value: domain.Float(0.1055), SupportingSampleCount: 110, Events: 2}
	d := newTestEvaluator().Evaluate(point(55, 0.40), trend, testConfig(0.10, 0.05, 0.05, 10, 2))
	if d.Record == nil {
		t.Fatalf("expected alarm record")
	}

	payload := string(RenderPayload(*d.Record))
	for _, want := range []string{
		"Site: Albis",
		"Parameter: dBZ_bias",
		"Reference value: 0.1 +/- 0.05 (exceeded)",
		"0.1055 +/- 0.05 (exceeded)",
		"Number of points used to compute trend: 110",
		"Number of points of last event: 55",
		"Last value: 0.4",
	} {
		if !strings.Contains(payload, want) {
			t.Fatalf("payload missing %q:\n%s", want, payload)
		}
	}

	if got := Subject(*d.Record); got != "NO REPLY: dBZ_bias monitoring alarm for Albis on day 19-10-2026" {
		t.Fatalf("unexpected subject %q", got)
	}
}

func TestRenderPayloadUndefinedTrend(t *testing.T) {
	d := newTestEvaluator().Evaluate(point(100, 2.5), domain.TrendBaseline{}, testConfig(0, 1, 1, 5, 3))
	if !strings.Contains(string(RenderPayload(*d.Record)), "undefined (tolerance 1)") {
		t.Fatalf("expected undefined trend in payload")
	}
}
