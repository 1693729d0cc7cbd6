package core

import (
	"fmt"

	"github.com/jansen-zhang20/covid-dashy-personal/schema"
)

// Assemble concatenates historical rows and projected points into one ordered slice.
func Assemble(series schema.Series, projected []schema.ProjectedPoint) ([]schema.OutputRow, error) {
	rows := make([]schema.OutputRow, 0, len(series.Rows)+len(projected))
	for _, r := range series.Rows {
		rows = append(rows, schema.OutputRow{
			Date:        r.Date,
			RawCases:    schema.Int64Ptr(r.RawCases),
			SmoothCases: schema.CloneInt64(r.SmoothCases),
			Reff:        schema.CloneFloat64(r.Reff),
		})
	}

	for _, p := range projected {
		if n := len(rows); n > 0 && !p.Date.After(rows[n-1].Date) {
			return nil, fmt.Errorf("%w: %s is not after %s", ErrOverlappingProjection,
				p.Date.Format(schema.DateLayout), rows[n-1].Date.Format(schema.DateLayout))
		}
		rows = append(rows, schema.OutputRow{
			Date:           p.Date,
			ProjectedCases: schema.Int64Ptr(p.ProjectedCases),
			ProjectedReff:  schema.Float64Ptr(p.GrowthRateUsed),
		})
	}
	return rows, nil
}
