package domain

import "time"

// SummaryPoint holds the robust statistics derived from one period.
// A nil quantile is masked: the period had no valid data for it.
type SummaryPoint struct {
	Timestamp   time.Time `json:"ts"`
	SampleCount int64     `json:"np"`
	Low         *float64  `json:"low_quantile,omitempty"`
	Central     *float64  `json:"central_quantile,omitempty"`
	High        *float64  `json:"high_quantile,omitempty"`
}

// Valid reports whether every quantile is defined.
func (p SummaryPoint) Valid() bool {
	return p.Low != nil && p.Central != nil && p.High != nil
}

// Float returns a pointer to a copy of v.
func Float(v float64) *float64 {
	return &v
}

// Equal compares two points field by field, treating two nil quantiles as equal.
func (p SummaryPoint) Equal(o SummaryPoint) bool {
	return p.Timestamp.Equal(o.Timestamp) &&
		p.SampleCount == o.SampleCount &&
		equalOpt(p.Low, o.Low) &&
		equalOpt(p.Central, o.Central) &&
		equalOpt(p.High, o.High)
}

func equalOpt(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
