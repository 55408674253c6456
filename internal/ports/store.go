package ports

import (
	"context"

	"github.com/ghalamif/QCFlow/internal/domain"
)

type WriteMode int

const (
	// WriteAppend adds points verbatim to the end of the persisted series.
	WriteAppend WriteMode = iota
	// WriteRewrite replaces the persisted series with the normalized points.
	WriteRewrite
)

func (m WriteMode) String() string {
	switch m {
	case WriteAppend:
		return "append"
	case WriteRewrite:
		return "rewrite"
	default:
		return "unknown"
	}
}

type LoadOptions struct {
	SortByDate bool
}

// Unlocker releases a lock taken by SeriesStore.Lock.
type Unlocker func() error

type SeriesStore interface {
	Load(ctx context.Context, key string, opts LoadOptions) (*domain.Series, error)
	Write(ctx context.Context, key string, points []domain.SummaryPoint, mode WriteMode) error
	Lock(ctx context.Context, key string) (Unlocker, error)
	Name() string
}
