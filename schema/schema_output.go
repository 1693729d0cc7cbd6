package schema

import "time"

// RateChoice is the resolved growth rate fed into the projector.
type RateChoice struct {
	Source   RateSource `json:"source"`
	Scenario string     `json:"scenario,omitempty"`
	Value    float64    `json:"value"`
}

// OutputRow is one row of the merged history and projection.
// Historical rows leave ProjectedCases nil; projected rows leave the observed columns nil.
type OutputRow struct {
	Date           time.Time `json:"date"`
	RawCases       *int64    `json:"raw_cases"`
	SmoothCases    *int64    `json:"smooth_cases"`
	Reff           *float64  `json:"reff"`
	ProjectedCases *int64    `json:"projected_cases"`
	ProjectedReff  *float64  `json:"projected_reff"`
}

// Projected reports whether the row came from the projector.
func (r OutputRow) Projected() bool {
	return r.ProjectedCases != nil
}

// OutputSeries is the full pipeline result for one location.
type OutputSeries struct {
	Location    string       `json:"location"`
	Title       string       `json:"title"`
	Caption     string       `json:"caption"`
	Window      int          `json:"window"`
	LagDays     int          `json:"lag_days"`
	HorizonDays int          `json:"horizon_days"`
	Estimate    ReffEstimate `json:"estimate"`
	Rate        RateChoice   `json:"rate"`
	Rows        []OutputRow  `json:"rows"`
}

// LastHistorical returns the last row that is not a projection.
func (o OutputSeries) LastHistorical() (OutputRow, bool) {
	for i := len(o.Rows) - 1; i >= 0; i-- {
		if !o.Rows[i].Projected() {
			return o.Rows[i], true
		}
	}
	return OutputRow{}, false
}

// Trend labels derived from an R_eff value.
const (
	SurgingTrend   = "Surging"
	GrowingTrend   = "Growing"
	StableTrend    = "Stable"
	DecliningTrend = "Declining"
)

// GetTrendLabel returns a plain label describing the direction implied by an R_eff value.
func GetTrendLabel(reff float64) string {
	switch {
	case reff >= 1.2:
		return SurgingTrend
	case reff >= 1.05:
		return GrowingTrend
	case reff > 0.95:
		return StableTrend
	default:
		return DecliningTrend
	}
}

// LocationSummary describes what the loaded data holds for one location.
type LocationSummary struct {
	Location  string    `json:"location"`
	Rows      int       `json:"rows"`
	FirstDate time.Time `json:"first_date"`
	LastDate  time.Time `json:"last_date"`
}
