package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/internal/iocache"
	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runBackendFromConfig reads and validates the run backend settings.
func runBackendFromConfig() (schema.DatabaseBackend, string, error) {
	if err := readConfigFile(); err != nil {
		return "", "", err
	}

	backendStr := viper.GetString("run-backend")
	connStr := viper.GetString("run-db-connect")

	// Handle empty backend as NoneBackend
	backend := schema.NoneBackend
	if backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", backendStr)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run history operations.
func runsSetup() error {
	backend, connStr, err := runBackendFromConfig()
	if err != nil {
		return err
	}

	// No source cache for runs commands
	if err := iocache.InitCaching("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}

	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetupWrapper loads configuration for migrations without creating any tables,
// so migrations can run on a fresh database.
func runsMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runBackendFromConfig()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunDBFilePath()
	}
	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	return nil
}

// runsCmd focused on forecast run history.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage stored forecast runs and exports",
	Long: `Manage the history of projections recorded by "casetrack project".

When --run-backend is set, every projection stores:
- Run metadata (location, parameters, rate used, estimated R_eff)
- Every historical and projected row of the merged series

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run history statistics
  export  - Export runs and rows to Parquet
  clear   - Remove all stored runs
  migrate - Run database schema migrations

Examples:
  casetrack runs status --run-backend sqlite
  casetrack runs export --run-backend sqlite --output-file history`,
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored forecast runs",
	Long: `Delete all stored forecast runs and their rows.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  casetrack runs export --run-backend sqlite --output-file backup
  casetrack runs clear --run-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the SQLite handle before removing its file
		iocache.CloseCaching()
		dbFile := sqliteFilePath(cfg.RunDBConnect, iocache.GetRunDBFilePath())
		if err := iocache.ClearRuns(cfg.RunBackend, dbFile, cfg.RunDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// runsStatusCmd shows run history status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show the backend, connection state, run and row counts, traced locations,
run timestamps and table sizes of the run history.

Examples:
  casetrack runs status --run-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Failed to get run status", errors.New("run store is not initialized"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(os.Stdout, status)
	},
}

// runsExportCmd exports the run history to Parquet.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored runs to Parquet files",
	Long: `Write the run history to two Parquet files derived from --output-file:
  <output-file>.forecast_runs.parquet
  <output-file>.forecast_points.parquet

Examples:
  casetrack runs export --run-backend sqlite --output-file history`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunExport(os.Stdout, iocache.Manager.GetRunStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// runsMigrateCmd runs schema migrations on the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations for the run history",
	Long: `Apply or roll back schema migrations on the run history database.

--target-version -1 migrates to the latest version, 0 rolls back everything,
and any other value migrates to that version.

Examples:
  casetrack runs migrate --run-backend sqlite
  casetrack runs migrate --run-backend postgresql --target-version 1`,
	PreRunE: runsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		result, err := iocache.MigrateRuns(cfg.RunBackend, cfg.RunDBConnect, viper.GetInt("target-version"))
		if err != nil {
			contract.LogFatal("Migration failed", err)
		}
		fmt.Println(result.String())
	},
}
