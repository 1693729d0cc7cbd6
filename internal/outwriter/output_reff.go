package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/internal/parquet"
	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// jsonReff is the JSON document written for an R_eff series.
type jsonReff struct {
	Location   string    `json:"location"`
	LagDays    int       `json:"lag_days"`
	EstimateAt string    `json:"estimate_at"`
	Estimate   *float64  `json:"estimate"`
	Rows       []jsonRow `json:"rows"`
}

// WriteReffResults outputs the smoothed series with its R_eff values.
func WriteReffResults(series schema.Series, est schema.ReffEstimate, cfg *contract.Config) error {
	fmtFloat := createFormatters(cfg.Precision)
	rows := seriesRows(series)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			doc := jsonReff{Location: series.Location, LagDays: est.LagDays, Estimate: est.Value}
			if !est.Date.IsZero() {
				doc.EstimateAt = est.Date.Format(schema.DateLayout)
			}
			doc.Rows = toJSONProjection(schema.OutputSeries{Rows: rows}).Rows
			return writeJSON(w, doc)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForReff(w, series, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			out := schema.OutputSeries{Location: series.Location, Rows: rows}
			return parquet.WriteOutputPoints(w, parquet.ConvertOutputSeries(out))
		}, "Wrote Parquet")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReffTable(w, series, est, fmtFloat)
		}, "Wrote table")
	}
}

// seriesRows lifts a series into output rows without a projection.
func seriesRows(series schema.Series) []schema.OutputRow {
	rows := make([]schema.OutputRow, len(series.Rows))
	for i, r := range series.Rows {
		rows[i] = schema.OutputRow{
			Date:        r.Date,
			RawCases:    schema.Int64Ptr(r.RawCases),
			SmoothCases: schema.CloneInt64(r.SmoothCases),
			Reff:        schema.CloneFloat64(r.Reff),
		}
	}
	return rows
}

// writeCSVResultsForReff writes date, counts and R_eff per row.
func writeCSVResultsForReff(w io.Writer, series schema.Series, fmtFloat func(float64) string) error {
	header := []string{"date", "raw_cases", "smooth_cases", "reff"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range series.Rows {
			record := []string{
				r.Date.Format(schema.DateLayout),
				fmt.Sprintf("%d", r.RawCases),
				optInt(r.SmoothCases),
				optFloat(r.Reff, fmtFloat),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// writeReffTable prints the series followed by the headline estimate.
func writeReffTable(w io.Writer, series schema.Series, est schema.ReffEstimate, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", "Cases", "Smoothed", "R_eff", "Trend"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(series.Rows))
	for _, r := range series.Rows {
		trend := ""
		if r.Reff != nil {
			trend = contract.GetColorLabel(*r.Reff)
		}
		data = append(data, []string{
			r.Date.Format(schema.DateLayout),
			fmt.Sprintf("%d", r.RawCases),
			optInt(r.SmoothCases),
			optFloat(r.Reff, fmtFloat),
			trend,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if est.Value == nil {
		_, _ = fmt.Fprintf(w, "%s R_eff is undefined as at %s (zero cases %d days earlier)\n",
			series.Location, est.Date.Format(schema.CaptionDateLayout), est.LagDays)
		return nil
	}
	_, _ = fmt.Fprintf(w, "%s R_eff is %s as at %s (%d day lag)\n",
		series.Location, fmtFloat(*est.Value), est.Date.Format(schema.CaptionDateLayout), est.LagDays)
	return nil
}
