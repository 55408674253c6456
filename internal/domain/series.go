package domain

import (
	"sort"
	"time"
)

// ParseWarning describes a persisted line that could not be decoded.
type ParseWarning struct {
	Line    int    `json:"line"`
	Content string `json:"content"`
	Reason  string `json:"reason"`
}

// Series is the persisted history of summary points for one metric.
type Series struct {
	Metric   string
	Points   []SummaryPoint
	Warnings []ParseWarning
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// Last returns the most recent point in series order.
func (s *Series) Last() (SummaryPoint, bool) {
	if s.Len() == 0 {
		return SummaryPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Prior returns every point except the last one.
func (s *Series) Prior() []SummaryPoint {
	if s.Len() < 2 {
		return nil
	}
	return s.Points[:len(s.Points)-1]
}

// SortByDate orders the points ascending by timestamp, keeping the relative
// order of equal timestamps.
func (s *Series) SortByDate() {
	if s == nil {
		return
	}
	SortPoints(s.Points)
}

// Window returns the points with from <= ts < to. A zero bound is open.
func (s *Series) Window(from, to time.Time) []SummaryPoint {
	if s == nil {
		return nil
	}
	out := make([]SummaryPoint, 0, len(s.Points))
	for _, p := range s.Points {
		if !from.IsZero() && p.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && !p.Timestamp.Before(to) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func SortPoints(points []SummaryPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
}

// Normalize removes duplicate timestamps, keeping the last occurrence, and
// returns the remaining points sorted ascending. The input is not modified.
func Normalize(points []SummaryPoint) []SummaryPoint {
	if len(points) == 0 {
		return nil
	}
	latest := make(map[int64]int, len(points))
	for i, p := range points {
		latest[p.Timestamp.UnixNano()] = i
	}
	out := make([]SummaryPoint, 0, len(latest))
	for i, p := range points {
		if latest[p.Timestamp.UnixNano()] == i {
			out = append(out, p)
		}
	}
	SortPoints(out)
	return out
}
