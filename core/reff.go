package core

import (
	"fmt"
	"math"
	"time"

	"github.com/jansen-zhang20/covid-dashy-personal/schema"
)

// dateIndex maps a calendar day to its row position.
type dateIndex map[int64]int

func indexByDate(rows []schema.SeriesRow) dateIndex {
	idx := make(dateIndex, len(rows))
	for i, r := range rows {
		idx[schema.Day(r.Date).Unix()] = i
	}
	return idx
}

// smoothedAt returns the smoothed value on the given calendar day, if the series has one.
func (idx dateIndex) smoothedAt(rows []schema.SeriesRow, d time.Time) (int64, bool) {
	i, ok := idx[schema.Day(d).Unix()]
	if !ok || rows[i].SmoothCases == nil {
		return 0, false
	}
	return *rows[i].SmoothCases, true
}

// EstimatePoint computes R_eff at the latest smoothed date as (s[d]/s[d-lag])^(1/lag).
// The lagged date is looked up by calendar day, not by row offset.
// A zero lagged value yields an estimate with a nil Value instead of an error.
func EstimatePoint(series schema.Series, lagDays int) (schema.ReffEstimate, error) {
	if lagDays <= 0 {
		return schema.ReffEstimate{}, fmt.Errorf("%w (received %d)", ErrInvalidLag, lagDays)
	}
	last := series.LastSmoothed()
	if last < 0 {
		return schema.ReffEstimate{}, ErrEmptySeries
	}

	anchor := series.Rows[last]
	lagDate := anchor.Date.AddDate(0, 0, -lagDays)
	prev, ok := indexByDate(series.Rows).smoothedAt(series.Rows, lagDate)
	if !ok {
		return schema.ReffEstimate{}, fmt.Errorf("%w: no smoothed value on %s, %d days before %s",
			ErrInsufficientHistory, lagDate.Format(schema.DateLayout), lagDays, anchor.Date.Format(schema.DateLayout))
	}

	est := schema.ReffEstimate{Date: anchor.Date, LagDays: lagDays}
	if prev == 0 {
		return est, nil
	}
	v := roundTo(math.Pow(float64(*anchor.SmoothCases)/float64(prev), 1/float64(lagDays)), 2)
	est.Value = &v
	return est, nil
}

// EstimateSeries returns a copy of series with a per-date R_eff filled in.
// Dates whose reference value is missing or zero get a nil Reff.
func EstimateSeries(series schema.Series, lagDays int, convention schema.ReffConvention) (schema.Series, error) {
	if lagDays <= 0 {
		return schema.Series{}, fmt.Errorf("%w (received %d)", ErrInvalidLag, lagDays)
	}
	if convention == "" {
		convention = schema.IncubationConvention
	}
	if _, ok := schema.ValidReffConventions[convention]; !ok {
		return schema.Series{}, fmt.Errorf("%w %q", ErrInvalidConvention, convention)
	}

	out := series.Clone()
	idx := indexByDate(out.Rows)
	for i := range out.Rows {
		row := &out.Rows[i]
		row.Reff = nil
		if row.SmoothCases == nil {
			continue
		}

		var v float64
		switch convention {
		case schema.DailyCompoundedConvention:
			prev, ok := idx.smoothedAt(out.Rows, row.Date.AddDate(0, 0, -1))
			if !ok || prev == 0 {
				continue
			}
			v = math.Pow(float64(*row.SmoothCases)/float64(prev), float64(lagDays))
		default:
			prev, ok := idx.smoothedAt(out.Rows, row.Date.AddDate(0, 0, -lagDays))
			if !ok || prev == 0 {
				continue
			}
			v = math.Pow(float64(*row.SmoothCases)/float64(prev), 1/float64(lagDays))
		}
		row.Reff = schema.Float64Ptr(roundTo(v, 2))
	}
	return out, nil
}
