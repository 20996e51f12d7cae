//go:build integration

package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Container is a running database for integration tests.
type Container struct {
	DB     *sql.DB
	Driver string
	DSN    string
}

// StartPostgres starts a PostgreSQL container and returns an open pool.
// The test is skipped when containers cannot run.
func StartPostgres(t *testing.T) *Container {
	t.Helper()

	req := tc.ContainerRequest{
		Image:        "postgres:16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "autofk",
			"POSTGRES_PASSWORD": "autofk",
			"POSTGRES_DB":       "autofk_test",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		),
	}
	return start(t, req, "5432/tcp", "pgx", func(host, port string) string {
		return fmt.Sprintf("postgres://autofk:autofk@%s:%s/autofk_test?sslmode=disable", host, port)
	})
}

// StartMySQL starts a MySQL container and returns an open pool.
// The test is skipped when containers cannot run.
func StartMySQL(t *testing.T) *Container {
	t.Helper()

	req := tc.ContainerRequest{
		Image:        "mysql:8.4",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "autofk",
			"MYSQL_DATABASE":      "autofk_test",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("3306/tcp"),
			wait.ForLog("port: 3306  MySQL Community Server"),
		),
	}
	return start(t, req, "3306/tcp", "mysql", func(host, port string) string {
		return fmt.Sprintf("root:autofk@tcp(%s:%s)/autofk_test?parseTime=true", host, port)
	})
}

func start(t *testing.T, req tc.ContainerRequest, port, driver string, dsnFor func(host, port string) string) *Container {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("skipping container test: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, nat.Port(port))
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	dsn := dsnFor(host, mapped.Port())

	db, err := waitForDSN(driver, dsn, 60*time.Second)
	if err != nil {
		t.Fatalf("database not ready: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return &Container{DB: db, Driver: driver, DSN: dsn}
}

// waitForDSN pings the DSN until it responds or timeout elapses.
func waitForDSN(driver, dsn string, timeout time.Duration) (*sql.DB, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		db, err := sql.Open(driver, dsn)
		if err == nil {
			if lastErr = db.Ping(); lastErr == nil {
				return db, nil
			}
			_ = db.Close()
		} else {
			lastErr = err
		}
		time.Sleep(500 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for %s", driver)
	}
	return nil, lastErr
}
