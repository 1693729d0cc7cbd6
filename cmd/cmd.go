// Package cmd defines the command-line interface for casetrack.
package cmd

import (
	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(reffCmd)
	rootCmd.AddCommand(locationsCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("source", schema.DefaultSourceURL, "URL or local path of the per-state case CSV")
	rootCmd.PersistentFlags().StringP("location", "L", schema.DefaultLocation, "State or territory code such as NSW or VIC")
	rootCmd.PersistentFlags().Int("window", schema.DefaultWindow, "Trailing smoothing window in observations")
	rootCmd.PersistentFlags().Int("lag", schema.DefaultLagDays, "Days between infection generations")
	rootCmd.PersistentFlags().Int("horizon", schema.DefaultHorizonDays, "Number of days to project")
	rootCmd.PersistentFlags().String("rate", contract.DefaultRateSource, "Growth rate: estimated or custom:<value> or a scenario name")
	rootCmd.PersistentFlags().String("smoothing", string(schema.DropSmoothing), "Rows without a full window: drop or retain")
	rootCmd.PersistentFlags().String("reff-mode", string(schema.PointReff), "R_eff estimation: point or series")
	rootCmd.PersistentFlags().String("reff-convention", string(schema.IncubationConvention), "Series R_eff convention: incubation or daily-compounded")
	rootCmd.PersistentFlags().Int("cutoff-days", schema.DefaultCutoffDays, "Days of smoothed history kept before the as-of date (0 keeps all)")
	rootCmd.PersistentFlags().String("as-of", contract.AsOfLatest, "Reference date: latest or today or an ISO date")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Source cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-ttl", contract.DefaultCacheTTL.String(), "How long a downloaded source is reused")
	rootCmd.PersistentFlags().String("run-backend", "", "Forecast run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for run history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format: console or json")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultAddr, "Listen address for the HTTP API")
	serveCmd.Flags().String("refresh", contract.DefaultRefresh.String(), "Interval between dataset refreshes (0 disables)")
	serveCmd.Flags().Float64("rate-limit", contract.DefaultRateLimit, "Requests per second allowed per client IP (0 disables)")
	serveCmd.Flags().Int("rate-burst", contract.DefaultRateBurst, "Burst size for the per-IP rate limit")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
