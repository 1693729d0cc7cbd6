// Package contract provides interfaces and shared utilities for the casetrack internals.
package contract

import (
	"context"

	"github.com/jansen-zhang20/covid-dashy-personal/schema"
)

// RecordSource yields the full upstream case table.
// This allows the serving layers to be tested without network access.
type RecordSource interface {
	Fetch(ctx context.Context) ([]schema.RawRecord, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetSourceStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for recording forecast runs and their rows.
type RunStore interface {
	// BeginRun stores the run header and returns its unique ID
	BeginRun(run schema.ForecastRunRecord) (string, error)

	// RecordPoints stores the merged history and projection rows of a run
	RecordPoints(runID string, rows []schema.OutputRow) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every stored run header, oldest first
	GetAllRuns() ([]schema.ForecastRunRecord, error)

	// GetAllPoints returns every stored row ordered by run and date
	GetAllPoints() ([]schema.ForecastPointRecord, error)

	// Close closes the underlying connection
	Close() error
}
