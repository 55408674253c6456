package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/ghalamif/QCFlow/internal/domain"
	"github.com/ghalamif/QCFlow/internal/ports"
)

// MemStore keeps series in memory. It is meant for tests and dry runs.
type MemStore struct {
	mu     sync.Mutex
	series map[string][]domain.SummaryPoint
	locks  map[string]chan struct{}
}

func NewMemStore() *MemStore {
	return &MemStore{
		series: make(map[string][]domain.SummaryPoint),
		locks:  make(map[string]chan struct{}),
	}
}

func (m *MemStore) Name() string { return "memory" }

func (m *MemStore) Load(ctx context.Context, key string, opts ports.LoadOptions) (*domain.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	points := make([]domain.SummaryPoint, len(m.series[key]))
	copy(points, m.series[key])
	m.mu.Unlock()

	series := &domain.Series{Metric: key, Points: points}
	if opts.SortByDate {
		series.SortByDate()
	}
	return series, nil
}

func (m *MemStore) Write(ctx context.Context, key string, points []domain.SummaryPoint, mode ports.WriteMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch mode {
	case ports.WriteAppend:
		m.series[key] = append(m.series[key], points...)
	case ports.WriteRewrite:
		m.series[key] = domain.Normalize(points)
	default:
		return fmt.Errorf("series %s: unknown write mode %d", key, mode)
	}
	return nil
}

// Lock waits until key is free or ctx is done.
func (m *MemStore) Lock(ctx context.Context, key string) (ports.Unlocker, error) {
	m.mu.Lock()
	ch, ok := m.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		m.locks[key] = ch
	}
	m.mu.Unlock()

	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() error {
		once.Do(func() { <-ch })
		return nil
	}, nil
}

// Held reports whether key is currently locked.
func (m *MemStore) Held(key string) bool {
	m.mu.Lock()
	ch, ok := m.locks[key]
	m.mu.Unlock()
	return ok && len(ch) > 0
}

var _ ports.SeriesStore = (*MemStore)(nil)
