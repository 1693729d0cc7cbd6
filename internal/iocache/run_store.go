package iocache

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/schema"
)

// Table names for forecast run history.
const (
	forecastRunsTable   = "casetrack_forecast_runs"
	forecastPointsTable = "casetrack_forecast_points"
)

// RunStoreImpl records every projection the tool produces along with the rows it emitted.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetRunDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}
	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunTables creates the forecast history tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{forecastRunsTable, getCreateForecastRunsQuery(backend)},
		{forecastPointsTable, getCreateForecastPointsQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateForecastRunsQuery returns the CREATE TABLE query for casetrack_forecast_runs.
func getCreateForecastRunsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(forecastRunsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) PRIMARY KEY,
				location VARCHAR(16) NOT NULL,
				created_at DATETIME(6) NOT NULL,
				as_of DATETIME(6) NOT NULL,
				window_days INT NOT NULL,
				lag_days INT NOT NULL,
				horizon_days INT NOT NULL,
				rate_source VARCHAR(16) NOT NULL,
				scenario VARCHAR(64),
				rate_used DOUBLE NOT NULL,
				estimated_reff DOUBLE,
				config_params TEXT
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) PRIMARY KEY,
				location TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				as_of TIMESTAMPTZ NOT NULL,
				window_days INT NOT NULL,
				lag_days INT NOT NULL,
				horizon_days INT NOT NULL,
				rate_source TEXT NOT NULL,
				scenario TEXT,
				rate_used DOUBLE PRECISION NOT NULL,
				estimated_reff DOUBLE PRECISION,
				config_params TEXT
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				location TEXT NOT NULL,
				created_at TEXT NOT NULL,
				as_of TEXT NOT NULL,
				window_days INTEGER NOT NULL,
				lag_days INTEGER NOT NULL,
				horizon_days INTEGER NOT NULL,
				rate_source TEXT NOT NULL,
				scenario TEXT,
				rate_used REAL NOT NULL,
				estimated_reff REAL,
				config_params TEXT
			);
		`, quoted)
	}
}

// getCreateForecastPointsQuery returns the CREATE TABLE query for casetrack_forecast_points.
func getCreateForecastPointsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(forecastPointsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) NOT NULL,
				point_date DATETIME(6) NOT NULL,
				raw_cases BIGINT,
				smooth_cases BIGINT,
				reff DOUBLE,
				projected_cases BIGINT,
				PRIMARY KEY (run_id, point_date)
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) NOT NULL,
				point_date TIMESTAMPTZ NOT NULL,
				raw_cases BIGINT,
				smooth_cases BIGINT,
				reff DOUBLE PRECISION,
				projected_cases BIGINT,
				PRIMARY KEY (run_id, point_date)
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT NOT NULL,
				point_date TEXT NOT NULL,
				raw_cases INTEGER,
				smooth_cases INTEGER,
				reff REAL,
				projected_cases INTEGER,
				PRIMARY KEY (run_id, point_date)
			);
		`, quoted)
	}
}

// BeginRun stores the run header and returns its generated ID.
// RunID and CreatedAt are filled in when the record leaves them empty.
func (rs *RunStoreImpl) BeginRun(run schema.ForecastRunRecord) (string, error) {
	if rs.db == nil {
		return "", nil
	}
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, location, created_at, as_of, window_days, lag_days, horizon_days,
		rate_source, scenario, rate_used, estimated_reff, config_params) VALUES (%s)`,
		quoteTableName(forecastRunsTable, rs.backend), placeholders(rs.backend, 12))
	_, err := rs.db.Exec(query,
		run.RunID, run.Location, formatTime(run.CreatedAt, rs.backend), formatTime(run.AsOf, rs.backend),
		run.Window, run.LagDays, run.HorizonDays,
		run.RateSource, run.Scenario, run.RateUsed, run.EstimatedReff, run.ConfigParams)
	if err != nil {
		return "", fmt.Errorf("failed to insert forecast run: %w", err)
	}
	return run.RunID, nil
}

// RecordPoints stores the output rows of a run in a single transaction.
func (rs *RunStoreImpl) RecordPoints(runID string, rows []schema.OutputRow) error {
	if rs.db == nil || len(rows) == 0 {
		return nil
	}

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT INTO %s (run_id, point_date, raw_cases, smooth_cases, reff, projected_cases) VALUES (%s)`,
		quoteTableName(forecastPointsTable, rs.backend), placeholders(rs.backend, 6))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare point insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		reff := row.Reff
		if row.Projected() {
			reff = row.ProjectedReff
		}
		if _, err := stmt.Exec(runID, formatTime(row.Date, rs.backend),
			row.RawCases, row.SmoothCases, reff, row.ProjectedCases); err != nil {
			return fmt.Errorf("failed to insert point %s: %w", row.Date.Format(schema.DateLayout), err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.db == nil {
		return status, nil
	}

	for _, table := range []string{forecastRunsTable, forecastPointsTable} {
		var count int64
		if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalRuns = int(status.TableSizes[forecastRunsTable])
	status.TotalPoints = int(status.TableSizes[forecastPointsTable])
	if status.TotalRuns == 0 {
		return status, nil
	}

	runs, err := rs.GetAllRuns()
	if err != nil {
		return status, err
	}
	seen := make(map[string]struct{})
	for _, run := range runs {
		seen[run.Location] = struct{}{}
	}
	for loc := range seen {
		status.LocationsTraced = append(status.LocationsTraced, loc)
	}
	sort.Strings(status.LocationsTraced)

	// GetAllRuns orders by creation time
	status.OldestRunTime = runs[0].CreatedAt
	last := runs[len(runs)-1]
	status.LastRunID = last.RunID
	status.LastRunTime = last.CreatedAt
	return status, nil
}

// GetAllRuns retrieves all forecast runs, oldest first.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.ForecastRunRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, location, created_at, as_of, window_days, lag_days, horizon_days,
		rate_source, scenario, rate_used, estimated_reff, config_params FROM %s ORDER BY created_at, run_id`,
		quoteTableName(forecastRunsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecast runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ForecastRunRecord
	for rows.Next() {
		var rec schema.ForecastRunRecord
		createdAt := timeScanner{backend: rs.backend}
		asOf := timeScanner{backend: rs.backend}
		if err := rows.Scan(&rec.RunID, &rec.Location, &createdAt, &asOf, &rec.Window, &rec.LagDays, &rec.HorizonDays,
			&rec.RateSource, &rec.Scenario, &rec.RateUsed, &rec.EstimatedReff, &rec.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan forecast run: %w", err)
		}
		rec.CreatedAt = createdAt.t
		rec.AsOf = asOf.t
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating forecast runs: %w", err)
	}
	// Text timestamps do not sort reliably when fractional seconds vary in length
	sort.SliceStable(results, func(i, j int) bool { return results[i].CreatedAt.Before(results[j].CreatedAt) })
	return results, nil
}

// GetAllPoints retrieves all forecast points ordered by run and date.
func (rs *RunStoreImpl) GetAllPoints() ([]schema.ForecastPointRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, point_date, raw_cases, smooth_cases, reff, projected_cases
		FROM %s ORDER BY run_id, point_date`, quoteTableName(forecastPointsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecast points: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ForecastPointRecord
	for rows.Next() {
		var rec schema.ForecastPointRecord
		pointDate := timeScanner{backend: rs.backend}
		if err := rows.Scan(&rec.RunID, &pointDate, &rec.RawCases, &rec.SmoothCases, &rec.Reff, &rec.ProjectedCases); err != nil {
			return nil, fmt.Errorf("failed to scan forecast point: %w", err)
		}
		rec.PointDate = pointDate.t
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating forecast points: %w", err)
	}
	return results, nil
}

// timeScanner reads a time column stored as RFC3339 text on SQLite and natively elsewhere.
type timeScanner struct {
	backend schema.DatabaseBackend
	t       time.Time
}

// Scan implements sql.Scanner.
func (ts *timeScanner) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		ts.t = v.UTC()
		return nil
	case string:
		t, err := parseTime(v)
		if err != nil {
			return fmt.Errorf("failed to parse %s time %q: %w", ts.backend, v, err)
		}
		ts.t = t.UTC()
		return nil
	case []byte:
		return ts.Scan(string(v))
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}
}
