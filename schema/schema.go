// Package schema has the models and enums shared by every part of casetrack.
package schema

import "time"

// RawRecord is one upstream row: a daily confirmed count for one location.
// A nil Confirmed means the upstream value was missing.
type RawRecord struct {
	Location  string    `json:"location"`
	Date      time.Time `json:"date"`
	Confirmed *int64    `json:"confirmed"`
}

// SeriesRow is one day of a location's history.
type SeriesRow struct {
	Date        time.Time `json:"date"`
	RawCases    int64     `json:"raw_cases"`
	SmoothCases *int64    `json:"smooth_cases"` // nil until a full window is available
	Reff        *float64  `json:"reff"`         // nil where no estimate is defined
}

// Series is a single location's daily history, strictly increasing by date.
type Series struct {
	Location string      `json:"location"`
	Rows     []SeriesRow `json:"rows"`
}

// Clone returns a copy of the series that shares no memory with the receiver.
func (s Series) Clone() Series {
	rows := make([]SeriesRow, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = SeriesRow{
			Date:        r.Date,
			RawCases:    r.RawCases,
			SmoothCases: CloneInt64(r.SmoothCases),
			Reff:        CloneFloat64(r.Reff),
		}
	}
	return Series{Location: s.Location, Rows: rows}
}

// LastSmoothed returns the index of the latest row with a smoothed value, or -1.
func (s Series) LastSmoothed() int {
	for i := len(s.Rows) - 1; i >= 0; i-- {
		if s.Rows[i].SmoothCases != nil {
			return i
		}
	}
	return -1
}

// ReffEstimate is a point estimate of R_eff at a date.
// Value is nil when the lagged smoothed count is zero.
type ReffEstimate struct {
	Date    time.Time `json:"date"`
	LagDays int       `json:"lag_days"`
	Value   *float64  `json:"value"`
}

// ProjectionRequest holds everything the projector needs for one call.
type ProjectionRequest struct {
	GrowthRate  float64   `json:"growth_rate"`
	HorizonDays int       `json:"horizon_days"`
	LagDays     int       `json:"lag_days"`
	AnchorDate  time.Time `json:"anchor_date"`
	AnchorValue int64     `json:"anchor_value"`
}

// ProjectedPoint is a single extrapolated day.
type ProjectedPoint struct {
	Date           time.Time `json:"date"`
	ProjectedCases int64     `json:"projected_cases"`
	GrowthRateUsed float64   `json:"growth_rate_used"`
}
