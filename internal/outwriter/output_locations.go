package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jansen-zhang20/covid-dashy-personal/core"
	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"github.com/olekukonko/tablewriter"
)

// jsonLocation is one location summary with calendar-day dates.
type jsonLocation struct {
	Location  string `json:"location"`
	Rows      int    `json:"rows"`
	FirstDate string `json:"first_date"`
	LastDate  string `json:"last_date"`
}

// jsonScenario is one named growth rate.
type jsonScenario struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// WriteLocationResults outputs the location summaries.
func WriteLocationResults(summaries []schema.LocationSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			docs := make([]jsonLocation, len(summaries))
			for i, s := range summaries {
				docs[i] = jsonLocation{
					Location:  s.Location,
					Rows:      s.Rows,
					FirstDate: s.FirstDate.Format(schema.DateLayout),
					LastDate:  s.LastDate.Format(schema.DateLayout),
				}
			}
			return writeJSON(w, docs)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"location", "rows", "first_date", "last_date"}, func(cw *csv.Writer) error {
				for _, s := range summaries {
					if err := cw.Write(locationRecord(s)); err != nil {
						return fmt.Errorf("failed to write CSV row: %w", err)
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for locations")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			data := make([][]string, len(summaries))
			for i, s := range summaries {
				data[i] = locationRecord(s)
			}
			return renderTable(w, []string{"Location", "Rows", "First", "Last"}, data)
		}, "Wrote table")
	}
}

// WriteScenarioResults outputs the scenario names and their rates in name order.
func WriteScenarioResults(scenarios map[string]float64, cfg *contract.Config) error {
	fmtFloat := createFormatters(cfg.Precision)
	names := core.ScenarioNames(scenarios)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			docs := make([]jsonScenario, len(names))
			for i, name := range names {
				docs[i] = jsonScenario{Name: name, Value: scenarios[name]}
			}
			return writeJSON(w, docs)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"name", "value"}, func(cw *csv.Writer) error {
				for _, name := range names {
					if err := cw.Write([]string{name, fmtFloat(scenarios[name])}); err != nil {
						return fmt.Errorf("failed to write CSV row: %w", err)
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for scenarios")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			data := make([][]string, len(names))
			for i, name := range names {
				data[i] = []string{name, fmtFloat(scenarios[name]), contract.GetColorLabel(scenarios[name])}
			}
			return renderTable(w, []string{"Scenario", "R_eff", "Trend"}, data)
		}, "Wrote table")
	}
}

// locationRecord renders a summary as plain strings.
func locationRecord(s schema.LocationSummary) []string {
	return []string{
		s.Location,
		strconv.Itoa(s.Rows),
		s.FirstDate.Format(schema.DateLayout),
		s.LastDate.Format(schema.DateLayout),
	}
}

// renderTable writes a simple left-aligned table.
func renderTable(w io.Writer, headers []string, data [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
