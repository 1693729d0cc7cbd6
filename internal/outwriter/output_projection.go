package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/internal/parquet"
	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// projectionHeader is shared by the CSV output and the table.
var projectionHeader = []string{"date", "raw_cases", "smooth_cases", "reff", "projected_cases", "projected_reff"}

// jsonRow is an OutputRow with the date rendered as a calendar day.
type jsonRow struct {
	Date           string   `json:"date"`
	RawCases       *int64   `json:"raw_cases"`
	SmoothCases    *int64   `json:"smooth_cases"`
	Reff           *float64 `json:"reff"`
	ProjectedCases *int64   `json:"projected_cases"`
	ProjectedReff  *float64 `json:"projected_reff"`
}

// jsonProjection is the JSON document written for a projection.
type jsonProjection struct {
	Location    string            `json:"location"`
	Title       string            `json:"title"`
	Caption     string            `json:"caption"`
	Window      int               `json:"window"`
	LagDays     int               `json:"lag_days"`
	HorizonDays int               `json:"horizon_days"`
	Rate        schema.RateChoice `json:"rate"`
	EstimateAt  string            `json:"estimate_at"`
	Estimate    *float64          `json:"estimate"`
	Rows        []jsonRow         `json:"rows"`
}

// WriteProjectionResults outputs a projection, dispatching based on the output format configured.
func WriteProjectionResults(out schema.OutputSeries, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, toJSONProjection(out))
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForProjection(w, out.Rows, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteOutputPoints(w, parquet.ConvertOutputSeries(out))
		}, "Wrote Parquet")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeProjectionTable(w, out, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

// toJSONProjection flattens dates so consumers see plain calendar days.
func toJSONProjection(out schema.OutputSeries) jsonProjection {
	doc := jsonProjection{
		Location:    out.Location,
		Title:       out.Title,
		Caption:     out.Caption,
		Window:      out.Window,
		LagDays:     out.LagDays,
		HorizonDays: out.HorizonDays,
		Rate:        out.Rate,
		Estimate:    out.Estimate.Value,
		Rows:        make([]jsonRow, len(out.Rows)),
	}
	if !out.Estimate.Date.IsZero() {
		doc.EstimateAt = out.Estimate.Date.Format(schema.DateLayout)
	}
	for i, r := range out.Rows {
		doc.Rows[i] = jsonRow{
			Date:           r.Date.Format(schema.DateLayout),
			RawCases:       r.RawCases,
			SmoothCases:    r.SmoothCases,
			Reff:           r.Reff,
			ProjectedCases: r.ProjectedCases,
			ProjectedReff:  r.ProjectedReff,
		}
	}
	return doc
}

// writeCSVResultsForProjection writes one CSV line per output row. Missing values are blank.
func writeCSVResultsForProjection(w io.Writer, rows []schema.OutputRow, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, projectionHeader, func(cw *csv.Writer) error {
		for _, r := range rows {
			record := []string{
				r.Date.Format(schema.DateLayout),
				optInt(r.RawCases),
				optInt(r.SmoothCases),
				optFloat(r.Reff, fmtFloat),
				optInt(r.ProjectedCases),
				optFloat(r.ProjectedReff, fmtFloat),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// writeProjectionTable renders the title, the merged rows and the caption.
func writeProjectionTable(w io.Writer, out schema.OutputSeries, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	_, _ = fmt.Fprintln(w, out.Title)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", "Cases", "Smoothed", "R_eff", "Trend", "Projected"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(out.Rows))
	for _, r := range out.Rows {
		reff := r.Reff
		if r.Projected() {
			reff = r.ProjectedReff
		}
		trend := ""
		if reff != nil {
			trend = contract.GetColorLabel(*reff)
		}
		data = append(data, []string{
			r.Date.Format(schema.DateLayout),
			optInt(r.RawCases),
			optInt(r.SmoothCases),
			optFloat(reff, fmtFloat),
			trend,
			optInt(r.ProjectedCases),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w, wrapText(out.Caption, GetMaxCaptionWidth(cfg)))
	_, _ = fmt.Fprintf(w, "Projection completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend)
	return nil
}
