package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run history.
	DatabaseBackend string

	// SmoothingMode decides what happens to rows without enough history for a full window.
	SmoothingMode string

	// ReffMode selects between a single latest estimate and a per-date series.
	ReffMode string

	// ReffConvention selects the growth-rate formula used in series mode.
	ReffConvention string

	// RateSource identifies where the projection growth rate came from.
	RateSource string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All smoothing modes supported.
const (
	DropSmoothing   SmoothingMode = "drop" // default
	RetainSmoothing SmoothingMode = "retain"
)

// All R_eff modes supported.
const (
	PointReff  ReffMode = "point" // default
	SeriesReff ReffMode = "series"
)

// All R_eff conventions supported.
const (
	// IncubationConvention is (s[d]/s[d-lag])^(1/lag), a rate per incubation period.
	IncubationConvention ReffConvention = "incubation" // default

	// DailyCompoundedConvention is (s[d]/s[d-1])^lag, kept for older dashboards.
	DailyCompoundedConvention ReffConvention = "daily-compounded"
)

// All growth rate sources supported.
const (
	EstimatedRate RateSource = "estimated" // default
	CustomRate    RateSource = "custom"
	ScenarioRate  RateSource = "scenario"
)

// Pipeline defaults.
const (
	DefaultLocation    = "NSW"
	DefaultWindow      = 7
	DefaultLagDays     = 5
	DefaultHorizonDays = 14
	DefaultCutoffDays  = 60
	DefaultCustomRate  = 2.0
)

// DefaultSourceURL is the upstream per-state daily case table.
const DefaultSourceURL = "https://raw.githubusercontent.com/M3IT/COVID-19_Data/master/Data/COVID_AU_state.csv"

// DateLayout is the calendar date layout used on the wire and in CSV files.
const DateLayout = "2006-01-02"

// CaptionDateLayout renders dates as "12 March 2022".
const CaptionDateLayout = "02 January 2006"

// DefaultScenarios are the named rates offered when no config file overrides them.
var DefaultScenarios = map[string]float64{
	"stable": 1.02,
	"worse":  1.35,
}

// KnownLocations lists the Australian state and territory codes published upstream.
var KnownLocations = []string{"ACT", "NSW", "NT", "QLD", "SA", "TAS", "VIC", "WA"}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidSmoothingModes lists all valid smoothing modes.
var ValidSmoothingModes = map[SmoothingMode]struct{}{
	DropSmoothing:   {},
	RetainSmoothing: {},
}

// ValidReffModes lists all valid R_eff modes.
var ValidReffModes = map[ReffMode]struct{}{
	PointReff:  {},
	SeriesReff: {},
}

// ValidReffConventions lists all valid R_eff conventions.
var ValidReffConventions = map[ReffConvention]struct{}{
	IncubationConvention:      {},
	DailyCompoundedConvention: {},
}
