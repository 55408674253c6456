// Package trend computes the trailing baseline a new point is compared against.
package trend

import (
	"github.com/samber/lo"

	"github.com/ghalamif/QCFlow/internal/app/quantile"
	"github.com/ghalamif/QCFlow/internal/domain"
	"github.com/ghalamif/QCFlow/internal/ports"
)

type Analyzer struct {
	obs ports.Observability
}

func NewAnalyzer(obs ports.Observability) *Analyzer {
	if obs == nil {
		obs = ports.NopObservability{}
	}
	return &Analyzer{obs: obs}
}

// Compute returns the SampleCount-weighted mean central quantile of the last
// minEvents qualifying events in prior. prior must not contain the point
// under test. A qualifying event has at least minPoints samples and a defined
// central quantile; events that do not qualify are skipped, not counted.
//
// The baseline is undefined when prior holds fewer than minEvents qualifying
// events, i.e. when the qualifying events including the point under test do
// not exceed minEvents.
func (a *Analyzer) Compute(prior []domain.SummaryPoint, minPoints, minEvents int) domain.TrendBaseline {
	qualifying := Qualifying(prior, minPoints)
	if minEvents <= 0 || len(qualifying) < minEvents {
		a.obs.LogInfo("trend_undefined",
			ports.Field{Key: "qualifying_events", Value: len(qualifying)},
			ports.Field{Key: "min_events_for_trend", Value: minEvents})
		return domain.TrendBaseline{Events: len(qualifying)}
	}

	window := qualifying[len(qualifying)-minEvents:]
	values := lo.Map(window, func(p domain.SummaryPoint, _ int) float64 { return *p.Central })
	weights := lo.Map(window, func(p domain.SummaryPoint, _ int) float64 { return float64(p.SampleCount) })

	mean, total := quantile.WeightedMean(values, weights)
	if mean == nil {
		return domain.TrendBaseline{Events: len(window)}
	}
	return domain.TrendBaseline{
		Value:                 mean,
		SupportingSampleCount: int64(total),
		Events:                len(window),
	}
}

// Compute is Analyzer.Compute without diagnostics.
func Compute(prior []domain.SummaryPoint, minPoints, minEvents int) domain.TrendBaseline {
	return NewAnalyzer(nil).Compute(prior, minPoints, minEvents)
}

// Qualifying returns the events eligible for trend computation, in order.
func Qualifying(points []domain.SummaryPoint, minPoints int) []domain.SummaryPoint {
	return lo.Filter(points, func(p domain.SummaryPoint, _ int) bool {
		return p.Central != nil && p.SampleCount >= int64(minPoints)
	})
}
