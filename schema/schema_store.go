package schema

import "time"

// ForecastRunRecord represents a row from the casetrack_forecast_runs table.
type ForecastRunRecord struct {
	RunID         string
	Location      string
	CreatedAt     time.Time
	AsOf          time.Time
	Window        int32
	LagDays       int32
	HorizonDays   int32
	RateSource    string
	Scenario      *string
	RateUsed      float64
	EstimatedReff *float64
	ConfigParams  *string
}

// ForecastPointRecord represents a row from the casetrack_forecast_points table.
type ForecastPointRecord struct {
	RunID          string
	PointDate      time.Time
	RawCases       *int64
	SmoothCases    *int64
	Reff           *float64
	ProjectedCases *int64
}
