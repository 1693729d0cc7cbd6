package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/internal/parquet"
)

// Suffixes appended to the export target for each table.
const (
	runsExportSuffix   = ".forecast_runs.parquet"
	pointsExportSuffix = ".forecast_points.parquet"
)

// ExecuteRunExport writes the forecast run history in store to Parquet files derived from outputFile.
func ExecuteRunExport(w io.Writer, store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no forecast runs found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total forecast runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total forecast points: %d\n", status.TotalPoints)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve forecast runs: %w", err)
	}
	points, err := store.GetAllPoints()
	if err != nil {
		return fmt.Errorf("failed to retrieve forecast points: %w", err)
	}

	runsFile := outputFile + runsExportSuffix
	parquetRuns := parquet.ConvertForecastRunRecords(runs)
	if err := parquet.WriteForecastRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write forecast runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d forecast runs to: %s\n", len(parquetRuns), runsFile)

	pointsFile := outputFile + pointsExportSuffix
	parquetPoints := parquet.ConvertForecastPointRecords(points)
	if err := parquet.WriteForecastPointsParquet(parquetPoints, pointsFile); err != nil {
		return fmt.Errorf("failed to write forecast points: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d forecast points to: %s\n", len(parquetPoints), pointsFile)
	return nil
}
