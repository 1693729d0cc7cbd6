package contract

import (
	"fmt"
	"maps"
	"math"
	"strings"
	"time"

	"github.com/jansen-zhang20/covid-dashy-personal/core"
	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"go.uber.org/zap"
)

// Default values for configuration.
const (
	DefaultPrecision  = 2
	DefaultCacheTTL   = 6 * time.Hour
	DefaultRefresh    = 6 * time.Hour
	DefaultAddr       = ":8050"
	DefaultRateLimit  = 10.0
	DefaultRateBurst  = 20
	MaxWindowDays     = 90
	MaxLagDays        = 30
	MaxHorizonDays    = 365
	DefaultRateSource = "estimated"
)

// As-of keywords accepted by --as-of.
const (
	AsOfLatest = "latest"
	AsOfToday  = "today"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for the pipeline and its surfaces.
// This struct is the "final, validated" config.
type Config struct {
	Source   string
	Location string

	Window      int
	LagDays     int
	HorizonDays int
	Smoothing   schema.SmoothingMode
	ReffMode    schema.ReffMode
	Convention  schema.ReffConvention
	CutoffDays  int // 0 disables the cutoff

	// AsOf is the reference date for the cutoff. Zero means the last date in the data,
	// unless AsOfToday is set.
	AsOf      time.Time
	AsOfToday bool

	RateSpec  string
	Selection schema.Selection
	Scenarios map[string]float64

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	LogLevel  string
	LogFormat string

	Addr      string
	Refresh   time.Duration
	RateLimit float64
	RateBurst int
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Source         string `mapstructure:"source"`
	Location       string `mapstructure:"location"`
	Window         int    `mapstructure:"window"`
	Lag            int    `mapstructure:"lag"`
	Horizon        int    `mapstructure:"horizon"`
	Rate           string `mapstructure:"rate"`
	Smoothing      string `mapstructure:"smoothing"`
	ReffMode       string `mapstructure:"reff-mode"`
	ReffConvention string `mapstructure:"reff-convention"`
	CutoffDays     int    `mapstructure:"cutoff-days"`
	AsOf           string `mapstructure:"as-of"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Precision      int    `mapstructure:"precision"`
	Color          string `mapstructure:"color"`
	Width          int    `mapstructure:"width"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	CacheTTL       string `mapstructure:"cache-ttl"`
	RunBackend     string `mapstructure:"run-backend"`
	RunDBConnect   string `mapstructure:"run-db-connect"`
	LogLevel       string `mapstructure:"log-level"`
	LogFormat      string `mapstructure:"log-format"`

	// --- Fields from serveCmd.Flags() ---
	Addr      string  `mapstructure:"addr"`
	Refresh   string  `mapstructure:"refresh"`
	RateLimit float64 `mapstructure:"rate-limit"`
	RateBurst int     `mapstructure:"rate-burst"`

	// --- Named scenarios from config file ---
	Scenarios map[string]float64 `mapstructure:"scenarios"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Scenarios != nil {
		clone.Scenarios = maps.Clone(c.Scenarios)
	}
	return &clone
}

// ReferenceDate resolves the as-of setting against the last date present in the data.
func (c *Config) ReferenceDate(lastDataDate time.Time) time.Time {
	switch {
	case c.AsOfToday:
		return schema.Day(time.Now())
	case !c.AsOf.IsZero():
		return c.AsOf
	default:
		return schema.Day(lastDataDate)
	}
}

// Cutoff returns the earliest date kept after smoothing, or the zero time when disabled.
func (c *Config) Cutoff(lastDataDate time.Time) time.Time {
	if c.CutoffDays <= 0 {
		return time.Time{}
	}
	return c.ReferenceDate(lastDataDate).AddDate(0, 0, -c.CutoffDays)
}

// PipelineParams builds the pipeline parameters for one location.
// Records dated after an explicit as-of date are not considered.
func (c *Config) PipelineParams(location string, records []schema.RawRecord) (core.Params, []schema.RawRecord) {
	if !c.AsOf.IsZero() {
		kept := make([]schema.RawRecord, 0, len(records))
		for _, r := range records {
			if !schema.Day(r.Date).After(c.AsOf) {
				kept = append(kept, r)
			}
		}
		records = kept
	}

	var last time.Time
	loc := schema.NormalizeLocation(location)
	for _, r := range records {
		if schema.NormalizeLocation(r.Location) == loc && r.Date.After(last) {
			last = r.Date
		}
	}

	return core.Params{
		Location:    loc,
		Window:      c.Window,
		LagDays:     c.LagDays,
		HorizonDays: c.HorizonDays,
		Smoothing:   c.Smoothing,
		ReffMode:    c.ReffMode,
		Convention:  c.Convention,
		Cutoff:      c.Cutoff(last),
		Selection:   c.Selection,
		Scenarios:   maps.Clone(c.Scenarios),
	}, records
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processPipelineInputs(cfg, input); err != nil {
		return err
	}
	if err := processScenarios(cfg, input); err != nil {
		return err
	}
	if err := processAsOf(cfg, input); err != nil {
		return err
	}
	if err := processServeInputs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and run store backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTL != "" {
		ttl, err := time.ParseDuration(input.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid --cache-ttl value %q: %w", input.CacheTTL, err)
		}
		if ttl < 0 {
			return fmt.Errorf("cache-ttl cannot be negative (received %s)", ttl)
		}
		cfg.CacheTTL = ttl
	}

	// --- Run Backend Validation ---
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if cfg.RunBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
	}
	cfg.RunDBConnect = input.RunDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return fmt.Errorf("run-db-connect: %w", err)
	}

	// Cache and run history must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		runDBPath := cfg.RunDBConnect
		if runDBPath == "" {
			runDBPath = GetRunDBFilePath()
		}
		if cacheDBPath == runDBPath {
			return fmt.Errorf("cache and run storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates the output and storage fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.Source = strings.TrimSpace(input.Source)
	if cfg.Source == "" {
		cfg.Source = schema.DefaultSourceURL
	}
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.LogLevel = input.LogLevel
	cfg.LogFormat = input.LogFormat

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Precision and Output Validation ---
	if input.Precision < 0 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 0 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required when using parquet output")
	}

	// --- 2. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// processPipelineInputs validates the numeric and mode settings of the pipeline.
func processPipelineInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Location = schema.NormalizeLocation(input.Location)
	if cfg.Location == "" {
		return fmt.Errorf("location cannot be empty")
	}

	if input.Window < 1 || input.Window > MaxWindowDays {
		return fmt.Errorf("window must be between 1 and %d days (received %d)", MaxWindowDays, input.Window)
	}
	cfg.Window = input.Window

	if input.Lag < 1 || input.Lag > MaxLagDays {
		return fmt.Errorf("lag must be between 1 and %d days (received %d)", MaxLagDays, input.Lag)
	}
	cfg.LagDays = input.Lag

	if input.Horizon < 0 || input.Horizon > MaxHorizonDays {
		return fmt.Errorf("horizon must be between 0 and %d days (received %d)", MaxHorizonDays, input.Horizon)
	}
	cfg.HorizonDays = input.Horizon

	if input.CutoffDays < 0 {
		return fmt.Errorf("cutoff-days cannot be negative (received %d)", input.CutoffDays)
	}
	cfg.CutoffDays = input.CutoffDays

	cfg.Smoothing = schema.SmoothingMode(strings.ToLower(input.Smoothing))
	if _, ok := schema.ValidSmoothingModes[cfg.Smoothing]; !ok {
		return fmt.Errorf("invalid smoothing mode '%s'. must be drop, retain", input.Smoothing)
	}

	cfg.ReffMode = schema.ReffMode(strings.ToLower(input.ReffMode))
	if _, ok := schema.ValidReffModes[cfg.ReffMode]; !ok {
		return fmt.Errorf("invalid reff mode '%s'. must be point, series", input.ReffMode)
	}

	cfg.Convention = schema.ReffConvention(strings.ToLower(input.ReffConvention))
	if _, ok := schema.ValidReffConventions[cfg.Convention]; !ok {
		return fmt.Errorf("invalid reff convention '%s'. must be incubation, daily-compounded", input.ReffConvention)
	}
	if cfg.Convention == schema.DailyCompoundedConvention {
		zap.L().Warn("daily-compounded R_eff is not comparable with the incubation convention used by point estimates",
			zap.String("convention", string(cfg.Convention)))
	}

	return nil
}

// processScenarios merges named scenarios from the config file over the defaults
// and resolves the --rate flag against them.
func processScenarios(cfg *Config, input *ConfigRawInput) error {
	scenarios := maps.Clone(schema.DefaultScenarios)
	for name, rate := range input.Scenarios {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || name == string(schema.EstimatedRate) || name == string(schema.CustomRate) {
			return fmt.Errorf("invalid scenario name %q", name)
		}
		if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
			return fmt.Errorf("scenario %q must have a positive rate (received %v)", name, rate)
		}
		scenarios[name] = rate
	}
	cfg.Scenarios = scenarios

	cfg.RateSpec = input.Rate
	if cfg.RateSpec == "" {
		cfg.RateSpec = DefaultRateSource
	}
	sel, err := core.ParseRateSource(cfg.RateSpec, scenarios)
	if err != nil {
		return fmt.Errorf("invalid --rate value: %w", err)
	}
	cfg.Selection = sel
	return nil
}

// processAsOf resolves the --as-of flag.
func processAsOf(cfg *Config, input *ConfigRawInput) error {
	cfg.AsOf = time.Time{}
	cfg.AsOfToday = false

	switch v := strings.ToLower(strings.TrimSpace(input.AsOf)); v {
	case "", AsOfLatest:
		return nil
	case AsOfToday:
		cfg.AsOfToday = true
		return nil
	default:
		t, err := schema.ParseDate(v)
		if err != nil {
			return fmt.Errorf("invalid --as-of value. Expected latest, today or YYYY-MM-DD: %w", err)
		}
		cfg.AsOf = t
		return nil
	}
}

// processServeInputs handles the settings used only by the serve command.
func processServeInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Addr = input.Addr
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	cfg.Refresh = DefaultRefresh
	if input.Refresh != "" {
		d, err := time.ParseDuration(input.Refresh)
		if err != nil {
			return fmt.Errorf("invalid --refresh value %q: %w", input.Refresh, err)
		}
		if d < 0 {
			return fmt.Errorf("refresh cannot be negative (received %s)", d)
		}
		cfg.Refresh = d
	}

	cfg.RateLimit = input.RateLimit
	cfg.RateBurst = input.RateBurst
	if cfg.RateLimit < 0 || cfg.RateBurst < 0 {
		return fmt.Errorf("rate-limit and rate-burst cannot be negative")
	}
	return nil
}

// RevalidatePipeline re-checks pipeline settings after a request overrides them,
// and applies rateSpec to the selection when it is set.
func RevalidatePipeline(cfg *Config, rateSpec string) error {
	cfg.Location = schema.NormalizeLocation(cfg.Location)
	if cfg.Location == "" {
		return fmt.Errorf("location cannot be empty")
	}
	if cfg.Window < 1 || cfg.Window > MaxWindowDays {
		return fmt.Errorf("window must be between 1 and %d days (received %d)", MaxWindowDays, cfg.Window)
	}
	if cfg.LagDays < 1 || cfg.LagDays > MaxLagDays {
		return fmt.Errorf("lag must be between 1 and %d days (received %d)", MaxLagDays, cfg.LagDays)
	}
	if cfg.HorizonDays < 0 || cfg.HorizonDays > MaxHorizonDays {
		return fmt.Errorf("horizon must be between 0 and %d days (received %d)", MaxHorizonDays, cfg.HorizonDays)
	}

	if rateSpec == "" {
		return nil
	}
	sel, err := core.ParseRateSource(rateSpec, cfg.Scenarios)
	if err != nil {
		return fmt.Errorf("invalid rate value: %w", err)
	}
	cfg.RateSpec = rateSpec
	cfg.Selection = sel
	return nil
}
