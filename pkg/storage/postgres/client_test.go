package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"stockchart/pkg/storage/postgres"
)

// testDSN returns the warehouse DSN for integration tests, skipping when unset.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("STOCKCHART_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("STOCKCHART_TEST_PG_DSN not set")
	}
	return dsn
}

// go test -v --run ^TestPostgresInvalidDSN$
func TestPostgresInvalidDSN(t *testing.T) {
	testDSN(t)
	invalidDSN := "host=invalid port=5432 user=fail password=fail dbname=fail sslmode=disable connect_timeout=2"

	_, err := postgres.NewClient(invalidDSN)
	if err == nil {
		t.Fatal("expected error for invalid DSN, got nil")
	}
}

// go test -v --run ^TestPostgresClientHealthy$
func TestPostgresClientHealthy(t *testing.T) {
	client, err := postgres.NewClient(testDSN(t))
	if err != nil {
		t.Fatalf("failed to create Postgres client: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if !client.IsHealthy(ctx) {
		t.Fatal("expected healthy DB connection")
	}

	if err := client.AutoMigrateDailyBarRecord(); err != nil {
		t.Fatalf("auto migration failed: %v", err)
	}
}
