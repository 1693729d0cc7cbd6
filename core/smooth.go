package core

import (
	"fmt"
	"math"
	"time"

	"github.com/jansen-zhang20/covid-dashy-personal/schema"
)

// SmoothOptions controls the trend smoother.
type SmoothOptions struct {
	Window int
	Mode   schema.SmoothingMode

	// Cutoff drops rows dated before it after smoothing. Zero keeps everything.
	Cutoff time.Time
}

// Smooth returns a copy of series with a trailing rolling mean of raw counts.
// The window counts observations, not calendar days, so gaps in the data are not filled.
// Rows without a full window keep a nil SmoothCases in retain mode and are removed in drop mode.
func Smooth(series schema.Series, opts SmoothOptions) (schema.Series, error) {
	if opts.Window <= 0 {
		return schema.Series{}, fmt.Errorf("%w (received %d)", ErrInvalidWindow, opts.Window)
	}
	mode := opts.Mode
	if mode == "" {
		mode = schema.DropSmoothing
	}
	if _, ok := schema.ValidSmoothingModes[mode]; !ok {
		return schema.Series{}, fmt.Errorf("invalid smoothing mode %q", mode)
	}

	rows := make([]schema.SeriesRow, 0, len(series.Rows))
	var sum int64
	for i, r := range series.Rows {
		sum += r.RawCases
		if i >= opts.Window {
			sum -= series.Rows[i-opts.Window].RawCases
		}

		row := schema.SeriesRow{Date: r.Date, RawCases: r.RawCases}
		if i+1 >= opts.Window {
			row.SmoothCases = schema.Int64Ptr(roundHalfUp(float64(sum) / float64(opts.Window)))
		}

		if !opts.Cutoff.IsZero() && row.Date.Before(schema.Day(opts.Cutoff)) {
			continue
		}
		if row.SmoothCases == nil && mode == schema.DropSmoothing {
			continue
		}
		rows = append(rows, row)
	}

	return schema.Series{Location: series.Location, Rows: rows}, nil
}

// roundHalfUp rounds to the nearest integer with halves going up.
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Floor(v*p+0.5) / p
}
