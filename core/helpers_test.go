package core

import (
	"time"

	"github.com/jansen-zhang20/covid-dashy-personal/schema"
)

var march1 = time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)

// rawSeries builds consecutive daily rows starting at start.
func rawSeries(loc string, start time.Time, raw ...int64) schema.Series {
	rows := make([]schema.SeriesRow, len(raw))
	for i, v := range raw {
		rows[i] = schema.SeriesRow{Date: start.AddDate(0, 0, i), RawCases: v}
	}
	return schema.Series{Location: loc, Rows: rows}
}

// smoothedSeries builds consecutive daily rows whose smoothed value equals the raw value.
func smoothedSeries(loc string, start time.Time, vals ...int64) schema.Series {
	s := rawSeries(loc, start, vals...)
	for i := range s.Rows {
		s.Rows[i].SmoothCases = schema.Int64Ptr(vals[i])
	}
	return s
}

// records builds consecutive daily raw records for one location.
func records(loc string, start time.Time, raw ...int64) []schema.RawRecord {
	out := make([]schema.RawRecord, len(raw))
	for i, v := range raw {
		out[i] = schema.RawRecord{Location: loc, Date: start.AddDate(0, 0, i), Confirmed: schema.Int64Ptr(v)}
	}
	return out
}

// repeat returns n copies of v.
func repeat(v int64, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
