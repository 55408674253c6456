// Package pipeline sequences one monitoring invocation: summarize, persist,
// reload, compute the trend, evaluate and notify.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ghalamif/QCFlow/internal/app/alarm"
	"github.com/ghalamif/QCFlow/internal/app/quantile"
	"github.com/ghalamif/QCFlow/internal/app/trend"
	"github.com/ghalamif/QCFlow/internal/domain"
	"github.com/ghalamif/QCFlow/internal/ports"
)

// Result reports what one invocation did. Diagnostics holds every non-fatal
// condition met on the way.
type Result struct {
	Point       domain.SummaryPoint
	Series      *domain.Series
	Trend       domain.TrendBaseline
	Decision    alarm.Decision
	AlarmRef    string
	Diagnostics []error
}

func (r *Result) diag(err error) {
	r.Diagnostics = append(r.Diagnostics, err)
}

// Options wires a Pipeline. Store is required; Archive and Notifier may be nil.
type Options struct {
	Store    ports.SeriesStore
	Archive  ports.AlarmArchive
	Notifier ports.Notifier
	Obs      ports.Observability
	Policy   ports.Policy
	Alarm    domain.AlarmConfig
	Meta     alarm.Meta
}

type Pipeline struct {
	store     ports.SeriesStore
	archive   ports.AlarmArchive
	notifier  ports.Notifier
	obs       ports.Observability
	pol       ports.Policy
	alarmCfg  domain.AlarmConfig
	analyzer  *trend.Analyzer
	evaluator *alarm.Evaluator
}

func New(opts Options) (*Pipeline, error) {
	if opts.Store == nil {
		return nil, errors.New("pipeline: series store is required")
	}
	obs := opts.Obs
	if obs == nil {
		obs = ports.NopObservability{}
	}
	return &Pipeline{
		store:     opts.Store,
		archive:   opts.Archive,
		notifier:  opts.Notifier,
		obs:       obs,
		pol:       opts.Policy,
		alarmCfg:  opts.Alarm,
		analyzer:  trend.NewAnalyzer(obs),
		evaluator: alarm.NewEvaluator(opts.Meta),
	}, nil
}

// RunInstant summarizes hist into a new point of series key and evaluates it.
// Only storage failures are returned as errors.
func (p *Pipeline) RunInstant(ctx context.Context, key string, hist domain.HistogramRecord) (Result, error) {
	defer p.observe(time.Now())

	var res Result
	point, err := quantile.Summarize(hist, p.pol.QuantileLevels)
	if err != nil {
		p.obs.LogWarn("histogram_rejected", ports.Field{Key: "key", Value: key}, ports.Field{Key: "err", Value: err.Error()})
		res.diag(err)
		return res, nil
	}
	if point.SampleCount == 0 {
		res.diag(fmt.Errorf("%w: zero total weight at %s", domain.ErrNoData, point.Timestamp.Format(time.RFC3339)))
	}
	return p.finish(ctx, key, point, res)
}

// RunSamples is RunInstant for raw unit-weight samples of one period.
func (p *Pipeline) RunSamples(ctx context.Context, key string, ts time.Time, samples []float64) (Result, error) {
	defer p.observe(time.Now())

	var res Result
	point, err := quantile.SummarizeSamples(ts, samples, p.pol.QuantileLevels)
	if err != nil {
		res.diag(err)
		return res, nil
	}
	if point.SampleCount == 0 {
		res.diag(fmt.Errorf("%w: no finite samples at %s", domain.ErrNoData, ts.Format(time.RFC3339)))
	}
	return p.finish(ctx, key, point, res)
}

// RunCumulative aggregates the points of sourceKey within [from, to) into one
// point of series key and evaluates it. Zero bounds are open.
func (p *Pipeline) RunCumulative(ctx context.Context, key, sourceKey string, from, to time.Time) (Result, error) {
	defer p.observe(time.Now())

	var res Result
	source, err := p.store.Load(ctx, sourceKey, ports.LoadOptions{SortByDate: true})
	if err != nil {
		return res, fmt.Errorf("load source %s: %w", sourceKey, err)
	}
	p.parseDiagnostics(&res, sourceKey, source)

	point, err := Aggregate(source.Window(from, to))
	if err != nil {
		p.obs.LogWarn("cumulative_window_empty",
			ports.Field{Key: "key", Value: key},
			ports.Field{Key: "source", Value: sourceKey})
		res.diag(err)
		return res, nil
	}
	if point.SampleCount == 0 {
		res.diag(fmt.Errorf("%w: cumulative window of %s holds no samples", domain.ErrNoData, sourceKey))
	}
	return p.finish(ctx, key, point, res)
}

// Drain runs every histogram of src in instant mode until src is exhausted.
// An empty key uses the metric named by each record.
func (p *Pipeline) Drain(ctx context.Context, key string, src ports.HistogramSource) ([]Result, error) {
	var results []Result
	for {
		hist, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return results, nil
		}
		if err != nil {
			return results, err
		}
		k := key
		if k == "" {
			k = hist.Metric
		}
		res, err := p.RunInstant(ctx, k, hist)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
}

func (p *Pipeline) finish(ctx context.Context, key string, point domain.SummaryPoint, res Result) (Result, error) {
	series, err := p.persist(ctx, key, point, &res)
	if err != nil {
		return res, err
	}
	res.Point = point
	res.Series = series

	current, ok := series.Last()
	if !ok {
		p.obs.LogWarn("series_empty", ports.Field{Key: "key", Value: key})
		res.diag(fmt.Errorf("%w: series %s holds no valid points", domain.ErrNoData, key))
		return res, nil
	}
	if current.Central != nil {
		p.obs.SetGauge(ports.MetricLastCentral, *current.Central)
	}

	if minPoints, minEvents, ok := p.alarmCfg.TrendLimits(); ok {
		res.Trend = p.analyzer.Compute(series.Prior(), minPoints, minEvents)
		if res.Trend.Defined() {
			p.obs.SetGauge(ports.MetricTrendValue, *res.Trend.Value)
		}
	}
	if !p.pol.AlarmEnabled {
		return res, nil
	}

	res.Decision = p.evaluator.Evaluate(current, res.Trend, p.alarmCfg)
	switch res.Decision.State {
	case alarm.StateSkipped:
		p.obs.IncCounter(ports.MetricEvaluationsSkipped, 1)
		p.obs.LogWarn("alarm_evaluation_skipped",
			ports.Field{Key: "key", Value: key},
			ports.Field{Key: "reason", Value: res.Decision.Reason.Error()})
		res.diag(res.Decision.Reason)
	case alarm.StateNoAlarm:
		p.obs.LogInfo("alarm_not_raised", ports.Field{Key: "key", Value: key})
	case alarm.StateAlarmRaised:
		if err := p.raise(ctx, key, *res.Decision.Record, &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

// persist appends point and reloads the authoritative series while holding
// the per-key lock.
func (p *Pipeline) persist(ctx context.Context, key string, point domain.SummaryPoint, res *Result) (*domain.Series, error) {
	unlock, err := p.store.Lock(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", key, err)
	}
	defer func() {
		if err := unlock(); err != nil {
			p.obs.LogError("series_unlock_failed", err, ports.Field{Key: "key", Value: key})
		}
	}()

	if err := p.store.Write(ctx, key, []domain.SummaryPoint{point}, ports.WriteAppend); err != nil {
		return nil, fmt.Errorf("append %s: %w", key, err)
	}
	p.obs.IncCounter(ports.MetricPointsAppended, 1)

	series, err := p.store.Load(ctx, key, ports.LoadOptions{SortByDate: p.pol.SortByDate})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	p.parseDiagnostics(res, key, series)

	if p.pol.Rewrite {
		if err := p.store.Write(ctx, key, series.Points, ports.WriteRewrite); err != nil {
			return nil, fmt.Errorf("rewrite %s: %w", key, err)
		}
		series.Points = domain.Normalize(series.Points)
	}
	return series, nil
}

func (p *Pipeline) raise(ctx context.Context, key string, rec domain.AlarmRecord, res *Result) error {
	p.obs.IncCounter(ports.MetricAlarmsRaised, 1)
	p.obs.LogWarn("alarm_raised",
		ports.Field{Key: "key", Value: key},
		ports.Field{Key: "alarm_id", Value: rec.ID},
		ports.Field{Key: "abs_exceeded", Value: rec.AbsExceeded},
		ports.Field{Key: "trend_exceeded", Value: rec.TrendExceeded})

	payload := alarm.RenderPayload(rec)
	if p.archive != nil {
		ref, err := p.archive.Save(ctx, key, rec, payload)
		if err != nil {
			return fmt.Errorf("archive alarm %s: %w", rec.ID, err)
		}
		res.AlarmRef = ref
	}
	if p.notifier == nil {
		return nil
	}

	err := p.notifier.Notify(ctx, ports.Notification{
		AlarmID:    rec.ID,
		Sender:     rec.Sender,
		Recipients: rec.Recipients,
		Subject:    alarm.Subject(rec),
		PayloadRef: res.AlarmRef,
		Payload:    payload,
	})
	if err != nil {
		var nerr *domain.NotifyError
		if !errors.As(err, &nerr) {
			err = &domain.NotifyError{Transport: p.notifier.Name(), Err: err}
		}
		p.obs.IncCounter(ports.MetricNotifyFailures, 1)
		p.obs.LogError("alarm_notify_failed", err,
			ports.Field{Key: "key", Value: key},
			ports.Field{Key: "alarm_id", Value: rec.ID})
		res.diag(err)
	}
	return nil
}

func (p *Pipeline) parseDiagnostics(res *Result, key string, series *domain.Series) {
	for _, w := range series.Warnings {
		res.diag(&domain.ParseError{Key: key, Line: w.Line, Content: w.Content, Err: errors.New(w.Reason)})
	}
}

func (p *Pipeline) observe(start time.Time) {
	p.obs.ObserveLatency(ports.MetricPipelineDuration, time.Since(start).Seconds())
}
