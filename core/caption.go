package core

import (
	"fmt"
	"strconv"

	"github.com/jansen-zhang20/covid-dashy-personal/schema"
)

// Title is the chart heading for a location.
func Title(location string) string {
	return fmt.Sprintf("Projected %s COVID-19 cases", schema.NormalizeLocation(location))
}

// Caption describes which rate drove the projection and the date it was taken at.
func Caption(out schema.OutputSeries) string {
	var asAt string
	if last, ok := out.LastHistorical(); ok {
		asAt = last.Date.Format(schema.CaptionDateLayout)
	}
	rate := strconv.FormatFloat(out.Rate.Value, 'f', -1, 64)

	switch out.Rate.Source {
	case schema.CustomRate:
		return fmt.Sprintf("Projected cases are based on inputted R_eff of %s as at %s.", rate, asAt)
	case schema.ScenarioRate:
		return fmt.Sprintf("Projected cases are based on the %s scenario R_eff of %s as at %s.", out.Rate.Scenario, rate, asAt)
	default:
		return fmt.Sprintf("Projected cases are based on an estimated current R_eff of %s as at %s.", rate, asAt)
	}
}
