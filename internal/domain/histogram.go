package domain

import (
	"fmt"
	"math"
	"time"
)

// HistogramRecord is the binned distribution of one metric over one acquisition period.
type HistogramRecord struct {
	Metric     string    `json:"metric"`
	Timestamp  time.Time `json:"timestamp"`
	BinCenters []float64 `json:"bin_centers"`
	Counts     []float64 `json:"counts"`
}

// Total returns the sum of all bin counts.
func (h HistogramRecord) Total() float64 {
	var sum float64
	for _, c := range h.Counts {
		sum += c
	}
	return sum
}

func (h HistogramRecord) Validate() error {
	if len(h.BinCenters) != len(h.Counts) {
		return fmt.Errorf("%w: %d bin centers but %d counts", ErrInvalidHistogram, len(h.BinCenters), len(h.Counts))
	}
	for i, c := range h.Counts {
		if c < 0 || math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: count %v at bin %d", ErrInvalidHistogram, c, i)
		}
	}
	for i := 1; i < len(h.BinCenters); i++ {
		if !(h.BinCenters[i] > h.BinCenters[i-1]) {
			return fmt.Errorf("%w: bin centers not strictly ascending at index %d", ErrInvalidHistogram, i)
		}
	}
	return nil
}
