// Package parquet exports casetrack projections and forecast history to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"github.com/parquet-go/parquet-go"
)

// ForecastRun is one stored projection run.
// This struct maps to the casetrack_forecast_runs database table.
type ForecastRun struct {
	RunID       string    `parquet:"run_id,snappy"`
	Location    string    `parquet:"location,snappy,dict"`
	CreatedAt   time.Time `parquet:"created_at,snappy"`
	AsOf        time.Time `parquet:"as_of,snappy"`
	WindowDays  int32     `parquet:"window_days,snappy"`
	LagDays     int32     `parquet:"lag_days,snappy"`
	HorizonDays int32     `parquet:"horizon_days,snappy"`
	RateSource  string    `parquet:"rate_source,snappy,dict"`

	// Scenario is set only when a named scenario drove the projection
	Scenario *string `parquet:"scenario,optional,snappy"`

	RateUsed float64 `parquet:"rate_used,snappy"`

	// EstimatedReff is nil when the estimate was undefined
	EstimatedReff *float64 `parquet:"estimated_reff,optional,snappy"`

	// ConfigParams contains the JSON-encoded run settings
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// ForecastPoint is one dated row emitted by a run.
// This struct maps to the casetrack_forecast_points database table.
type ForecastPoint struct {
	RunID          string    `parquet:"run_id,snappy,dict"`
	PointDate      time.Time `parquet:"point_date,snappy"`
	RawCases       *int64    `parquet:"raw_cases,optional,snappy"`
	SmoothCases    *int64    `parquet:"smooth_cases,optional,snappy"`
	Reff           *float64  `parquet:"reff,optional,snappy"`
	ProjectedCases *int64    `parquet:"projected_cases,optional,snappy"`
}

// OutputPoint is one row of a projection written by the parquet output mode.
type OutputPoint struct {
	Location       string    `parquet:"location,snappy,dict"`
	Date           time.Time `parquet:"date,snappy"`
	RawCases       *int64    `parquet:"raw_cases,optional,snappy"`
	SmoothCases    *int64    `parquet:"smooth_cases,optional,snappy"`
	Reff           *float64  `parquet:"reff,optional,snappy"`
	ProjectedCases *int64    `parquet:"projected_cases,optional,snappy"`
	ProjectedReff  *float64  `parquet:"projected_reff,optional,snappy"`
}

// WriteForecastRunsParquet writes forecast runs to a Parquet file.
func WriteForecastRunsParquet(data []ForecastRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteForecastPointsParquet writes forecast points to a Parquet file.
func WriteForecastPointsParquet(data []ForecastPoint, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteOutputPoints streams projection rows to w in Parquet format.
func WriteOutputPoints(w io.Writer, data []OutputPoint) error {
	return write(w, data)
}

// writeFile creates outputPath and writes data into it.
func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// write encodes data using a schema derived from the struct tags of T.
func write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertForecastRunRecords converts stored runs for Parquet export.
func ConvertForecastRunRecords(records []schema.ForecastRunRecord) []ForecastRun {
	result := make([]ForecastRun, len(records))
	for i, record := range records {
		result[i] = ForecastRun{
			RunID:         record.RunID,
			Location:      record.Location,
			CreatedAt:     record.CreatedAt,
			AsOf:          record.AsOf,
			WindowDays:    record.Window,
			LagDays:       record.LagDays,
			HorizonDays:   record.HorizonDays,
			RateSource:    record.RateSource,
			Scenario:      record.Scenario,
			RateUsed:      record.RateUsed,
			EstimatedReff: record.EstimatedReff,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertForecastPointRecords converts stored points for Parquet export.
func ConvertForecastPointRecords(records []schema.ForecastPointRecord) []ForecastPoint {
	result := make([]ForecastPoint, len(records))
	for i, record := range records {
		result[i] = ForecastPoint{
			RunID:          record.RunID,
			PointDate:      record.PointDate,
			RawCases:       record.RawCases,
			SmoothCases:    record.SmoothCases,
			Reff:           record.Reff,
			ProjectedCases: record.ProjectedCases,
		}
	}
	return result
}

// ConvertOutputSeries flattens a projection into Parquet rows.
func ConvertOutputSeries(out schema.OutputSeries) []OutputPoint {
	result := make([]OutputPoint, len(out.Rows))
	for i, row := range out.Rows {
		result[i] = OutputPoint{
			Location:       out.Location,
			Date:           row.Date,
			RawCases:       row.RawCases,
			SmoothCases:    row.SmoothCases,
			Reff:           row.Reff,
			ProjectedCases: row.ProjectedCases,
			ProjectedReff:  row.ProjectedReff,
		}
	}
	return result
}
