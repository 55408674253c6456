package domain

import "time"

// TrendBaseline is the trailing weighted mean of recent qualifying events.
// Value is nil when there was not enough qualifying history.
type TrendBaseline struct {
	Value                 *float64 `json:"value,omitempty"`
	SupportingSampleCount int64    `json:"supporting_sample_count"`
	Events                int      `json:"events"`
}

func (t TrendBaseline) Defined() bool {
	return t.Value != nil && t.SupportingSampleCount > 0
}

// AlarmConfig is the per-invocation alarm configuration. Every field is
// optional at the type level so that missing configuration can be reported.
type AlarmConfig struct {
	ReferenceValue    *float64 `yaml:"reference_value" json:"reference_value,omitempty"`
	AbsTolerance      *float64 `yaml:"abs_tolerance" json:"abs_tolerance,omitempty"`
	TrendTolerance    *float64 `yaml:"trend_tolerance" json:"trend_tolerance,omitempty"`
	MinPointsPerEvent *int     `yaml:"min_points_per_event" json:"min_points_per_event,omitempty"`
	MinEventsForTrend *int     `yaml:"min_events_for_trend" json:"min_events_for_trend,omitempty"`
	Sender            *string  `yaml:"sender" json:"sender,omitempty"`
	Recipients        []string `yaml:"recipients" json:"recipients,omitempty"`
}

// Validate returns a *ConfigError naming every missing field, or nil.
func (c AlarmConfig) Validate() error {
	var missing []string
	if c.ReferenceValue == nil {
		missing = append(missing, "reference_value")
	}
	if c.AbsTolerance == nil {
		missing = append(missing, "abs_tolerance")
	}
	if c.TrendTolerance == nil {
		missing = append(missing, "trend_tolerance")
	}
	if c.MinPointsPerEvent == nil {
		missing = append(missing, "min_points_per_event")
	}
	if c.MinEventsForTrend == nil {
		missing = append(missing, "min_events_for_trend")
	}
	if c.Sender == nil || *c.Sender == "" {
		missing = append(missing, "sender")
	}
	if len(c.Recipients) == 0 {
		missing = append(missing, "recipients")
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}

// TrendLimits reports whether both trend parameters are configured.
func (c AlarmConfig) TrendLimits() (minPoints, minEvents int, ok bool) {
	if c.MinPointsPerEvent == nil || c.MinEventsForTrend == nil {
		return 0, 0, false
	}
	return *c.MinPointsPerEvent, *c.MinEventsForTrend, true
}

// AlarmRecord carries both deviation tests for one raised alarm.
type AlarmRecord struct {
	ID                  string    `json:"id"`
	Metric              string    `json:"metric"`
	Site                string    `json:"site,omitempty"`
	Timestamp           time.Time `json:"ts"`
	ReferenceValue      float64   `json:"reference_value"`
	AbsTolerance        float64   `json:"abs_tolerance"`
	TrendValue          *float64  `json:"trend_value,omitempty"`
	TrendTolerance      float64   `json:"trend_tolerance"`
	MinEventsForTrend   int       `json:"min_events_for_trend"`
	MinPointsPerEvent   int       `json:"min_points_per_event"`
	TrendSampleCount    int64     `json:"trend_sample_count"`
	ObservedSampleCount int64     `json:"observed_sample_count"`
	ObservedValue       float64   `json:"observed_value"`
	AbsExceeded         bool      `json:"abs_exceeded"`
	TrendExceeded       bool      `json:"trend_exceeded"`
	Sender              string    `json:"sender"`
	Recipients          []string  `json:"recipients"`
}
