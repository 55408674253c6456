package pipeline

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/ghalamif/QCFlow/internal/app/quantile"
	"github.com/ghalamif/QCFlow/internal/domain"
)

// Aggregate folds a window of sorted points into one cumulative point. Each
// quantile is the SampleCount-weighted mean over the points that define it,
// SampleCount is the window total and Timestamp is the first point's.
func Aggregate(points []domain.SummaryPoint) (domain.SummaryPoint, error) {
	if len(points) == 0 {
		return domain.SummaryPoint{}, fmt.Errorf("%w: empty cumulative window", domain.ErrNoData)
	}

	out := domain.SummaryPoint{Timestamp: points[0].Timestamp}
	for _, p := range points {
		out.SampleCount += p.SampleCount
	}
	if out.SampleCount == 0 {
		return out, nil
	}
	out.Low = weighted(points, func(p domain.SummaryPoint) *float64 { return p.Low })
	out.Central = weighted(points, func(p domain.SummaryPoint) *float64 { return p.Central })
	out.High = weighted(points, func(p domain.SummaryPoint) *float64 { return p.High })
	return out, nil
}

func weighted(points []domain.SummaryPoint, field func(domain.SummaryPoint) *float64) *float64 {
	defined := lo.Filter(points, func(p domain.SummaryPoint, _ int) bool { return field(p) != nil })
	values := lo.Map(defined, func(p domain.SummaryPoint, _ int) float64 { return *field(p) })
	weights := lo.Map(defined, func(p domain.SummaryPoint, _ int) float64 { return float64(p.SampleCount) })
	mean, _ := quantile.WeightedMean(values, weights)
	return mean
}
