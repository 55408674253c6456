package qcflow

import (
	"context"
	"errors"
	"fmt"
)

// Flow is a convenience builder that lets callers say Conf → Persist → Alert
// without touching the underlying hexagonal wiring.
type Flow struct {
	cfg  *Config
	opts []MonitorOption
}

// FlowOption mutates the Flow after configuration is loaded.
type FlowOption func(*Flow)

// PersistOption configures the store/archive side of the pipeline.
type PersistOption func(*Flow)

// AlertOption configures the notifier/observability side of the pipeline.
type AlertOption func(*Flow)

// Conf loads YAML from disk, applies FlowOption values, and returns a Flow builder.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return ConfFromConfig(cfg, opts...)
}

// ConfFromConfig bootstraps a Flow from an in-memory Config.
func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	f := &Flow{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// Config returns the underlying configuration so callers can tweak it before building a Monitor.
func (f *Flow) Config() *Config {
	if f == nil {
		return nil
	}
	return f.cfg
}

// Options appends raw MonitorOption values to the builder for advanced scenarios.
func (f *Flow) Options(opts ...MonitorOption) *Flow {
	if f == nil {
		return nil
	}
	f.appendOptions(opts...)
	return f
}

// Persist records store-side overrides (series store, archive, observability).
func (f *Flow) Persist(opts ...PersistOption) *Flow {
	if f == nil {
		return nil
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Alert records notifier-side overrides and builds a Monitor ready to run.
func (f *Flow) Alert(ctx context.Context, opts ...AlertOption) (*Monitor, error) {
	if f == nil {
		return nil, fmt.Errorf("flow is nil")
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return NewMonitor(ctx, f.cfg, f.opts...)
}

// Run is a shortcut for Alert + Monitor.ObserveAll over src, followed by a
// metrics push and Close.
func (f *Flow) Run(ctx context.Context, src HistogramSource, opts ...AlertOption) ([]Result, error) {
	m, err := f.Alert(ctx, opts...)
	if err != nil {
		return nil, err
	}
	results, runErr := m.ObserveAll(ctx, src)
	pushErr := m.PushMetrics(ctx)
	return results, errors.Join(runErr, pushErr, m.Close())
}

// WithFlowOptions appends MonitorOption values during Conf.
func WithFlowOptions(opts ...MonitorOption) FlowOption {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(opts...)
		}
	}
}

// PersistStore injects a custom series store.
func PersistStore(s SeriesStore) PersistOption {
	return func(f *Flow) {
		if f != nil && s != nil {
			f.appendOptions(WithStore(s))
		}
	}
}

// PersistArchive injects a custom alarm archive.
func PersistArchive(a AlarmArchive) PersistOption {
	return func(f *Flow) {
		if f != nil && a != nil {
			f.appendOptions(WithArchive(a))
		}
	}
}

// PersistObservability overrides the default logr + Prometheus observability stack.
func PersistObservability(obs Observability) PersistOption {
	return func(f *Flow) {
		if f != nil && obs != nil {
			f.appendOptions(WithObservability(obs))
		}
	}
}

// AlertNotifier injects a custom Notifier implementation.
func AlertNotifier(n Notifier) AlertOption {
	return func(f *Flow) {
		if f != nil && n != nil {
			f.appendOptions(WithNotifier(n))
		}
	}
}

// AlertObservability replaces the default observability backend.
func AlertObservability(obs Observability) AlertOption {
	return func(f *Flow) {
		if f != nil && obs != nil {
			f.appendOptions(WithObservability(obs))
		}
	}
}

// AlertCallback installs a notifier built from a simple callback function.
func AlertCallback(name string, fn AlarmHandler) AlertOption {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(WithNotifier(NewCallbackNotifier(name, fn)))
		}
	}
}

func (f *Flow) appendOptions(opts ...MonitorOption) {
	for _, opt := range opts {
		if opt != nil {
			f.opts = append(f.opts, opt)
		}
	}
}
