package ports

const (
	HistInstant    = "instant"
	HistCumulative = "cumulative"
)

// Policy controls how a pipeline run treats the persisted series.
type Policy struct {
	HistType       string
	QuantileLevels []float64 // fractions in [0,1]
	SortByDate     bool
	Rewrite        bool
	AlarmEnabled   bool
}
