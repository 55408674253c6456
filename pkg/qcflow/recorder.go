package qcflow

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"
)

// ErrRecorderClosed is returned when samples are recorded after Close.
var ErrRecorderClosed = errors.New("qcflow: recorder closed")

// ResultHandler receives the outcome of every periodic flush.
type ResultHandler func(Result, error)

// Recorder buffers raw samples of the current period for callers that have
// no histogram, and hands them to the Monitor when the period closes.
type Recorder struct {
	monitor *Monitor

	mu      sync.Mutex
	start   time.Time
	samples []float64
	closed  bool
}

// NewRecorder starts the first period at start.
func NewRecorder(m *Monitor, start time.Time) (*Recorder, error) {
	if m == nil {
		return nil, errors.New("monitor is required")
	}
	return &Recorder{monitor: m, start: start}, nil
}

// Record appends samples to the current period. NaN and Inf are dropped.
func (r *Recorder) Record(values ...float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRecorderClosed
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		r.samples = append(r.samples, v)
	}
	return nil
}

// Pending returns the number of samples buffered for the current period.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// Flush closes the current period, runs it through the pipeline and starts
// the next period at next.
func (r *Recorder) Flush(ctx context.Context, next time.Time) (Result, error) {
	r.mu.Lock()
	start, samples := r.start, r.samples
	r.start, r.samples = next, nil
	r.mu.Unlock()

	return r.monitor.ObserveSamples(ctx, start, samples)
}

// Run flushes every period until ctx is done; the final partial period is
// flushed on the way out. handle may be nil.
func (r *Recorder) Run(ctx context.Context, period time.Duration, handle ResultHandler) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			res, err := r.Close(context.Background())
			if handle != nil && (err != nil || res.Series != nil) {
				handle(res, err)
			}
			return
		case now := <-ticker.C:
			res, err := r.Flush(ctx, now)
			if handle != nil {
				handle(res, err)
			}
		}
	}
}

// Close flushes pending samples, if any, and rejects further Record calls.
func (r *Recorder) Close(ctx context.Context) (Result, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return Result{}, nil
	}
	r.closed = true
	pending := len(r.samples)
	r.mu.Unlock()

	if pending == 0 {
		return Result{}, nil
	}
	return r.Flush(ctx, time.Time{})
}
