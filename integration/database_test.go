//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// exerciseBackend runs the persistence commands against one database.
func exerciseBackend(t *testing.T, backend, connStr string) {
	t.Helper()
	root := gitFixture(t)
	env := []string{
		"REPOMETRICS_CACHE_BACKEND=" + backend,
		"REPOMETRICS_CACHE_DB_CONNECT=" + connStr,
		"REPOMETRICS_SNAPSHOT_BACKEND=" + backend,
		"REPOMETRICS_SNAPSHOT_DB_CONNECT=" + connStr,
	}

	runCommand(t, root, env, "cache", "clear")
	runCommand(t, root, env, "snapshot", "clear")

	out := runCommand(t, root, env, "snapshot", "migrate")
	assert.Regexp(t, `(?i)snapshot schema`, out)

	runCommand(t, root, env, "scan", "--since", "1 year ago", "--save")
	runCommand(t, root, env, "scan", "--since", "1 year ago", "--save")

	out = runCommand(t, root, env, "cache", "status")
	assert.Contains(t, out, backend)

	out = runCommand(t, root, env, "snapshot", "status")
	assert.Contains(t, out, "Total Runs: 2")

	prefix := t.TempDir() + "/metrics"
	out = runCommand(t, root, env, "snapshot", "export", "--output-file", prefix)
	assert.Contains(t, out, "Exported 2 sync runs")
}

// TestRepometricsWithMySQL tests the CLI with a MySQL backend.
func TestRepometricsWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "repometrics",
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

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/repometrics", host, port.Port())
	exerciseBackend(t, "mysql", connStr)
}

// TestRepometricsWithPostgres tests the CLI with a PostgreSQL backend.
func TestRepometricsWithPostgres(t *testing.T) {
	ctx := context.Background()

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

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	exerciseBackend(t, "postgresql", connStr)
}
