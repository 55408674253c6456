// Package quantile estimates weighted quantiles from histograms or raw samples.
package quantile

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ghalamif/QCFlow/internal/domain"
)

// DefaultLevels are the low, central and high levels used when none are configured.
var DefaultLevels = []float64{0.25, 0.50, 0.75}

// FromHistogram returns one value per level. Every value is nil when the
// total weight is zero.
func FromHistogram(centers, weights, levels []float64) ([]*float64, error) {
	h := domain.HistogramRecord{BinCenters: centers, Counts: weights}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if err := checkLevels(levels); err != nil {
		return nil, err
	}
	xs, ws := make([]float64, 0, len(centers)), make([]float64, 0, len(centers))
	for i, w := range weights {
		if w == 0 {
			continue
		}
		xs = append(xs, centers[i])
		ws = append(ws, w)
	}
	return interpolate(xs, ws, levels), nil
}

// FromSamples returns one value per level for a raw weighted sample set.
// A nil weights slice gives every sample weight 1. NaN and Inf samples are
// ignored. Samples equal to a histogram's bin centers repeated by count give
// the same result as FromHistogram on that histogram.
func FromSamples(values, weights, levels []float64) ([]*float64, error) {
	if weights != nil && len(weights) != len(values) {
		return nil, fmt.Errorf("%w: %d samples but %d weights", domain.ErrInvalidHistogram, len(values), len(weights))
	}
	if err := checkLevels(levels); err != nil {
		return nil, err
	}

	type sample struct{ x, w float64 }
	samples := make([]sample, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight %v at sample %d", domain.ErrInvalidHistogram, w, i)
		}
		if w == 0 {
			continue
		}
		samples = append(samples, sample{x: v, w: w})
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].x < samples[j].x })

	// merge equal values so the sample set collapses onto its own histogram
	var xs, ws []float64
	for _, s := range samples {
		if n := len(xs); n > 0 && xs[n-1] == s.x {
			ws[n-1] += s.w
			continue
		}
		xs = append(xs, s.x)
		ws = append(ws, s.w)
	}
	return interpolate(xs, ws, levels), nil
}

// Summarize derives the SummaryPoint of one histogram. Low, central and high
// are the first, middle and last of the requested levels.
func Summarize(h domain.HistogramRecord, levels []float64) (domain.SummaryPoint, error) {
	if len(levels) == 0 {
		levels = DefaultLevels
	}
	values, err := FromHistogram(h.BinCenters, h.Counts, levels)
	if err != nil {
		return domain.SummaryPoint{}, err
	}
	return summaryPoint(h.Timestamp, h.Total(), values), nil
}

// SummarizeSamples is Summarize for raw unit-weight samples collected over
// one period. NaN and Inf samples are not counted.
func SummarizeSamples(ts time.Time, samples []float64, levels []float64) (domain.SummaryPoint, error) {
	if len(levels) == 0 {
		levels = DefaultLevels
	}
	values, err := FromSamples(samples, nil, levels)
	if err != nil {
		return domain.SummaryPoint{}, err
	}
	var n float64
	for _, v := range samples {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			n++
		}
	}
	return summaryPoint(ts, n, values), nil
}

func summaryPoint(ts time.Time, total float64, values []*float64) domain.SummaryPoint {
	point := domain.SummaryPoint{
		Timestamp:   ts,
		SampleCount: int64(math.Round(total)),
	}
	if point.SampleCount == 0 {
		return point
	}
	point.Low = values[0]
	point.Central = values[len(values)/2]
	point.High = values[len(values)-1]
	return point
}

// WeightedMean returns the weighted mean of values and the total weight used.
// Pairs with a NaN value or a non-positive weight are skipped.
func WeightedMean(values, weights []float64) (*float64, float64) {
	var xs, ws []float64
	for i, v := range values {
		if i >= len(weights) {
			break
		}
		if w := weights[i]; !math.IsNaN(v) && w > 0 {
			xs = append(xs, v)
			ws = append(ws, w)
		}
	}
	total := floats.Sum(ws)
	if total == 0 {
		return nil, 0
	}
	return domain.Float(stat.Mean(xs, ws)), total
}

// checkLevels requires every level in [0,1] and the list ascending, so the
// first, middle and last level give low <= central <= high.
func checkLevels(levels []float64) error {
	for i, q := range levels {
		if !(q >= 0 && q <= 1) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidLevel, q)
		}
		if i > 0 && q < levels[i-1] {
			return fmt.Errorf("%w: %v after %v, levels must be ascending", domain.ErrInvalidLevel, q, levels[i-1])
		}
	}
	return nil
}

// interpolate expects xs strictly ascending and ws strictly positive. Each
// bin sits at the midpoint of its cumulative weight step; levels falling
// between two midpoints are linearly interpolated and levels outside the
// first or last midpoint clamp to the edge value.
func interpolate(xs, ws, levels []float64) []*float64 {
	out := make([]*float64, len(levels))
	var total float64
	for _, w := range ws {
		total += w
	}
	if total == 0 || len(xs) == 0 {
		return out
	}

	pos := make([]float64, len(xs))
	var cum float64
	for i, w := range ws {
		cum += w
		pos[i] = (cum - w/2) / total
	}

	last := len(xs) - 1
	for k, q := range levels {
		switch {
		case q <= pos[0]:
			out[k] = domain.Float(xs[0])
		case q >= pos[last]:
			out[k] = domain.Float(xs[last])
		default:
			// first midpoint strictly above q; pos[0] <= q guarantees i >= 1
			i := sort.Search(len(pos), func(i int) bool { return pos[i] > q })
			frac := (q - pos[i-1]) / (pos[i] - pos[i-1])
			out[k] = domain.Float(xs[i-1] + frac*(xs[i]-xs[i-1]))
		}
	}
	return out
}
