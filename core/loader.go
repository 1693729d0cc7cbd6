package core

import (
	"fmt"
	"sort"

	"github.com/jansen-zhang20/covid-dashy-personal/schema"
)

// Load filters records down to one location and returns its daily series in date order.
// Missing counts become zero. Two records for the same date are rejected rather than merged.
func Load(records []schema.RawRecord, location string) (schema.Series, error) {
	loc := schema.NormalizeLocation(location)

	var rows []schema.SeriesRow
	for _, r := range records {
		if schema.NormalizeLocation(r.Location) != loc {
			continue
		}
		var cases int64
		if r.Confirmed != nil {
			cases = *r.Confirmed
		}
		rows = append(rows, schema.SeriesRow{Date: schema.Day(r.Date), RawCases: cases})
	}
	if len(rows) == 0 {
		return schema.Series{}, fmt.Errorf("%w: %q", ErrUnknownLocation, location)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
	for i := 1; i < len(rows); i++ {
		if rows[i].Date.Equal(rows[i-1].Date) {
			return schema.Series{}, fmt.Errorf("%w: %s has more than one record for %s",
				ErrDuplicateDate, loc, rows[i].Date.Format(schema.DateLayout))
		}
	}

	return schema.Series{Location: loc, Rows: rows}, nil
}

// Locations summarizes every location present in records, sorted by code.
func Locations(records []schema.RawRecord) []schema.LocationSummary {
	byLoc := make(map[string]*schema.LocationSummary)
	for _, r := range records {
		loc := schema.NormalizeLocation(r.Location)
		if loc == "" {
			continue
		}
		d := schema.Day(r.Date)
		s, ok := byLoc[loc]
		if !ok {
			byLoc[loc] = &schema.LocationSummary{Location: loc, Rows: 1, FirstDate: d, LastDate: d}
			continue
		}
		s.Rows++
		if d.Before(s.FirstDate) {
			s.FirstDate = d
		}
		if d.After(s.LastDate) {
			s.LastDate = d
		}
	}

	out := make([]schema.LocationSummary, 0, len(byLoc))
	for _, s := range byLoc {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Location < out[j].Location
	})
	return out
}
