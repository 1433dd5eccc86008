//go:build integration

package db

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

var (
	sharedDSN     string
	sharedDSNOnce sync.Once
	sharedDSNErr  error
)

// getTestDB returns a migrated, empty database. TEST_DATABASE_URL is used
// when set; otherwise a PostgreSQL container is started once per run.
func getTestDB(t *testing.T) *DB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedDSNOnce.Do(func() {
		if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
			sharedDSN = dsn
		} else {
			sharedDSN, sharedDSNErr = startPostgres()
		}
		if sharedDSNErr == nil {
			sharedDSNErr = RunMigrations(sharedDSN, Up, zap.NewNop())
		}
	})
	if sharedDSNErr != nil {
		t.Skipf("test database unavailable: %v", sharedDSNErr)
	}

	ctx := context.Background()
	db, err := Connect(ctx, sharedDSN, 4, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(db.Close)

	// Clean up test data before each test
	for _, table := range []string{"ai_patterns", "experiences", "content_entities", "personal_info", "skills", "website_content", "media_files", "contact_submissions"} {
		if _, err := db.pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("failed to clean %s: %v", table, err)
		}
	}
	return db
}

func startPostgres() (string, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "portfolio_test",
			"POSTGRES_USER":     "portfolio",
			"POSTGRES_PASSWORD": "test_password",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("failed to get container port: %w", err)
	}

	return fmt.Sprintf("postgres://portfolio:test_password@%s:%s/portfolio_test?sslmode=disable", host, port.Port()), nil
}
