package qcflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ghalamif/QCFlow/internal/adapters/notify"
	"github.com/ghalamif/QCFlow/internal/adapters/observability"
	"github.com/ghalamif/QCFlow/internal/adapters/store"
	"github.com/ghalamif/QCFlow/internal/app/alarm"
	"github.com/ghalamif/QCFlow/internal/app/pipeline"
	"github.com/ghalamif/QCFlow/internal/ports"
)

// MonitorOption customizes the dependencies used by Monitor.
type MonitorOption func(*monitorOverrides)

type monitorOverrides struct {
	store         SeriesStore
	archive       AlarmArchive
	notifier      Notifier
	observability Observability
	logger        *logr.Logger
	registry      *prometheus.Registry
}

// WithStore injects a custom series store (object storage, another database, ...).
func WithStore(s SeriesStore) MonitorOption {
	return func(o *monitorOverrides) {
		o.store = s
	}
}

// WithArchive replaces the configured alarm archive.
func WithArchive(a AlarmArchive) MonitorOption {
	return func(o *monitorOverrides) {
		o.archive = a
	}
}

// WithNotifier replaces the configured alarm transport.
func WithNotifier(n Notifier) MonitorOption {
	return func(o *monitorOverrides) {
		o.notifier = n
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) MonitorOption {
	return func(o *monitorOverrides) {
		o.observability = obs
	}
}

// WithLogger routes the default observability backend through log instead of
// a zap logger built from Config.Log.
func WithLogger(log logr.Logger) MonitorOption {
	return func(o *monitorOverrides) {
		o.logger = &log
	}
}

// WithRegistry registers the default metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) MonitorOption {
	return func(o *monitorOverrides) {
		o.registry = reg
	}
}

// Monitor wires the configured store, archive, notifier and observability
// around one monitoring pipeline for Config.Metric.
type Monitor struct {
	cfg      *Config
	pipeline *pipeline.Pipeline
	store    SeriesStore
	obs      ports.Observability
	registry *prometheus.Registry
	db       *sql.DB
	nats     *notify.NATSNotifier
}

// NewMonitor bootstraps the default adapters named by cfg (file, memory or
// PostgreSQL store; file or PostgreSQL archive; log, NATS or SMTP notifier;
// logr + Prometheus observability). Options override any of them.
func NewMonitor(ctx context.Context, cfg *Config, opts ...MonitorOption) (*Monitor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides monitorOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	m := &Monitor{cfg: cfg, registry: overrides.registry}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.obs = overrides.observability
	if m.obs == nil {
		log, err := m.logger(overrides.logger)
		if err != nil {
			return nil, err
		}
		m.obs = observability.NewPromObs(log, m.registry)
	}

	if err := m.openStore(ctx, overrides); err != nil {
		m.Close()
		return nil, err
	}
	archive, err := m.openArchive(ctx, overrides)
	if err != nil {
		m.Close()
		return nil, err
	}
	notifier, err := m.openNotifier(overrides)
	if err != nil {
		m.Close()
		return nil, err
	}

	m.pipeline, err = pipeline.New(pipeline.Options{
		Store:    m.store,
		Archive:  archive,
		Notifier: notifier,
		Obs:      m.obs,
		Policy:   cfg.ToPolicy(),
		Alarm:    cfg.Alarm.AlarmConfig,
		Meta:     alarm.Meta{Metric: cfg.Metric, Site: cfg.Site},
	})
	if err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

func (m *Monitor) logger(override *logr.Logger) (logr.Logger, error) {
	if override != nil {
		return *override, nil
	}
	return observability.NewLogger(m.cfg.Log.Level, m.cfg.Log.Development)
}

func (m *Monitor) openStore(ctx context.Context, o monitorOverrides) error {
	if o.store != nil {
		m.store = o.store
		return nil
	}
	switch m.cfg.Store.Driver {
	case DriverMemory:
		m.store = store.NewMemStore()
	case DriverPostgres:
		db, err := m.openDB(ctx)
		if err != nil {
			return err
		}
		pg := store.NewPostgresStore(db, m.cfg.Store.Table)
		if err := pg.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("points schema: %w", err)
		}
		m.store = pg
	default:
		fs, err := store.NewFileStore(m.cfg.Store.Dir, m.obs)
		if err != nil {
			return err
		}
		m.store = fs
	}
	return nil
}

func (m *Monitor) openArchive(ctx context.Context, o monitorOverrides) (AlarmArchive, error) {
	if o.archive != nil {
		return o.archive, nil
	}
	if m.cfg.Store.Driver == DriverPostgres {
		db, err := m.openDB(ctx)
		if err != nil {
			return nil, err
		}
		pa := store.NewPostgresArchive(db, m.cfg.Store.AlarmTable)
		if err := pa.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("alarms schema: %w", err)
		}
		return pa, nil
	}
	return store.NewFileArchive(m.cfg.Alarm.Dir), nil
}

func (m *Monitor) openNotifier(o monitorOverrides) (Notifier, error) {
	if o.notifier != nil {
		return o.notifier, nil
	}
	switch m.cfg.Notify.Transport {
	case TransportNATS:
		n, err := notify.NewNATSNotifier(m.cfg.Notify.NATSURL, m.cfg.Notify.Subject)
		if err != nil {
			return nil, fmt.Errorf("nats connect: %w", err)
		}
		m.nats = n
		return n, nil
	case TransportSMTP:
		return notify.NewSMTPNotifier(m.cfg.Notify.SMTPAddr), nil
	default:
		return notify.NewLogNotifier(m.obs), nil
	}
}

func (m *Monitor) openDB(ctx context.Context) (*sql.DB, error) {
	if m.db != nil {
		return m.db, nil
	}
	db, err := store.OpenPostgres(ctx, m.cfg.Store.ConnString)
	if err != nil {
		return nil, err
	}
	m.db = db
	return db, nil
}

// Observe summarizes one histogram into the configured metric's series.
func (m *Monitor) Observe(ctx context.Context, hist HistogramRecord) (Result, error) {
	return m.pipeline.RunInstant(ctx, m.cfg.Metric, hist)
}

// ObserveSamples summarizes raw samples of the period starting at ts.
func (m *Monitor) ObserveSamples(ctx context.Context, ts time.Time, samples []float64) (Result, error) {
	return m.pipeline.RunSamples(ctx, m.cfg.Metric, ts, samples)
}

// Cumulate aggregates the configured source series within [from, to).
func (m *Monitor) Cumulate(ctx context.Context, from, to time.Time) (Result, error) {
	return m.pipeline.RunCumulative(ctx, m.cfg.Metric, m.cfg.Cumulative.SourceMetric, from, to)
}

// ObserveAll drains src in instant mode into the configured metric.
func (m *Monitor) ObserveAll(ctx context.Context, src HistogramSource) ([]Result, error) {
	return m.pipeline.Drain(ctx, m.cfg.Metric, src)
}

// Series loads the persisted series of the configured metric.
func (m *Monitor) Series(ctx context.Context) (*Series, error) {
	return m.store.Load(ctx, m.cfg.Metric, LoadOptions{SortByDate: m.cfg.SortByDate})
}

// Gatherer exposes the registry the default observability writes to.
func (m *Monitor) Gatherer() prometheus.Gatherer {
	return m.registry
}

// PushMetrics pushes the run's metrics when metrics.pushgateway_url is set.
func (m *Monitor) PushMetrics(ctx context.Context) error {
	return observability.Push(ctx, m.cfg.Metrics.PushgatewayURL, m.cfg.Metrics.Job, m.registry)
}

// Close releases the database pool and the NATS connection.
func (m *Monitor) Close() error {
	var errs []error
	if m.nats != nil {
		m.nats.Close()
	}
	if m.db != nil {
		if err := m.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
