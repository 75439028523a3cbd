package postgres_test

import (
	"os"
	"testing"

	"stockchart/config"
	"stockchart/pkg/storage/postgres"
)

// go test -v --run TestCreateDatabase
func TestCreateDatabase(t *testing.T) {
	if os.Getenv("STOCKCHART_TEST_PG_PASSWORD") == "" {
		t.Skip("STOCKCHART_TEST_PG_PASSWORD not set")
	}
	cfg := config.PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: os.Getenv("STOCKCHART_TEST_PG_PASSWORD"),
		DBName:   "stockchart_test",
		SSLMode:  "disable",
	}

	if err := postgres.CreateDatabase(cfg, "dev"); err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	// second call is a no-op
	if err := postgres.CreateDatabase(cfg, "dev"); err != nil {
		t.Fatalf("second create should succeed: %v", err)
	}
}
