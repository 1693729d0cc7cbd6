//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestCasetrackWithMySQL tests the casetrack CLI with a MySQL backend.
func TestCasetrackWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "casetrack",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/casetrack?parseTime=true", host, port.Port())
	runBackendScenario(t, "mysql", connStr)
}

// TestCasetrackWithPostgres tests the casetrack CLI with a PostgreSQL backend.
func TestCasetrackWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	runBackendScenario(t, "postgresql", connStr)
}

// runBackendScenario drives cache and run history commands against one database.
func runBackendScenario(t *testing.T, backend, connStr string) {
	t.Helper()
	home := t.TempDir()
	env := []string{
		"CASETRACK_CACHE_BACKEND=" + backend,
		"CASETRACK_CACHE_DB_CONNECT=" + connStr,
		"CASETRACK_RUN_BACKEND=" + backend,
		"CASETRACK_RUN_DB_CONNECT=" + connStr,
	}

	_, err := runCasetrack(t, home, env, "cache", "clear")
	require.NoError(t, err)

	_, err = runCasetrack(t, home, env, "runs", "clear")
	require.NoError(t, err)

	_, err = runCasetrack(t, home, env, "project", "--source", fixturePath(t), "--location", "NSW", "--output", "csv")
	require.NoError(t, err)

	out, err := runCasetrack(t, home, env, "cache", "status")
	require.NoError(t, err)
	require.Contains(t, out, backend)

	out, err = runCasetrack(t, home, env, "runs", "status")
	require.NoError(t, err)
	require.Contains(t, out, "NSW")
}
