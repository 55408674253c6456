package ports

import (
	"context"

	"github.com/ghalamif/QCFlow/internal/domain"
)

// HistogramSource yields the histogram of the period being processed.
type HistogramSource interface {
	Next(ctx context.Context) (domain.HistogramRecord, error)
}
