package core

import (
	"fmt"
	"math"

	"github.com/jansen-zhang20/covid-dashy-personal/schema"
)

// ValidateRate rejects growth rates the projector cannot use.
func ValidateRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return fmt.Errorf("%w (received %v)", ErrInvalidRate, rate)
	}
	return nil
}

// NewProjectionRequest anchors a projection on the latest smoothed row of series.
func NewProjectionRequest(series schema.Series, rate float64, horizonDays, lagDays int) (schema.ProjectionRequest, error) {
	if err := ValidateRate(rate); err != nil {
		return schema.ProjectionRequest{}, err
	}
	if horizonDays < 0 {
		return schema.ProjectionRequest{}, fmt.Errorf("%w (received %d)", ErrInvalidHorizon, horizonDays)
	}
	if lagDays <= 0 {
		return schema.ProjectionRequest{}, fmt.Errorf("%w (received %d)", ErrInvalidLag, lagDays)
	}
	last := series.LastSmoothed()
	if last < 0 {
		return schema.ProjectionRequest{}, ErrEmptySeries
	}
	return schema.ProjectionRequest{
		GrowthRate:  rate,
		HorizonDays: horizonDays,
		LagDays:     lagDays,
		AnchorDate:  series.Rows[last].Date,
		AnchorValue: *series.Rows[last].SmoothCases,
	}, nil
}

// ProjectRequest extrapolates anchor_value * rate^(k/lag) for k = 1..horizon.
// It fails with ErrProjectionOverflow once a day no longer fits in an int64.
func ProjectRequest(req schema.ProjectionRequest) ([]schema.ProjectedPoint, error) {
	points := make([]schema.ProjectedPoint, 0, req.HorizonDays)
	for k := 1; k <= req.HorizonDays; k++ {
		v := float64(req.AnchorValue) * math.Pow(req.GrowthRate, float64(k)/float64(req.LagDays))
		if math.IsNaN(v) || math.IsInf(v, 0) || v+0.5 >= math.MaxInt64 {
			return nil, fmt.Errorf("%w: day %d of %d at rate %v",
				ErrProjectionOverflow, k, req.HorizonDays, req.GrowthRate)
		}
		points = append(points, schema.ProjectedPoint{
			Date:           req.AnchorDate.AddDate(0, 0, k),
			ProjectedCases: roundHalfUp(v),
			GrowthRateUsed: req.GrowthRate,
		})
	}
	return points, nil
}

// Project builds a request from series and runs it. A zero horizon returns an empty slice.
func Project(series schema.Series, rate float64, horizonDays, lagDays int) ([]schema.ProjectedPoint, error) {
	req, err := NewProjectionRequest(series, rate, horizonDays, lagDays)
	if err != nil {
		return nil, err
	}
	return ProjectRequest(req)
}
