package main

import (
	"errors"
	"testing"

	"stockchart/internal/quote"

	"github.com/spf13/afero"
)

// go test -v --run TestReadBars
func TestReadBars(t *testing.T) {
	fs := afero.NewMemMapFs()
	csv := "Date,Open,High,Low,Close,Volume\n2024-01-03,2,2,2,2,20\n1999-12-31,1,1,1,1,10\n"
	if err := afero.WriteFile(fs, "bars.csv", []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := readBars(fs, "bars.csv", "AAPL")
	if err != nil {
		t.Fatalf("readBars returned error: %v", err)
	}
	if table.Symbol != "AAPL" || table.Len() != 2 {
		t.Fatalf("unexpected table: %s with %d bars", table.Symbol, table.Len())
	}
	if table.Bars[0].Date.Year() != 1999 {
		t.Errorf("bars should be ascending, got %v first", table.Bars[0].Date)
	}
}

// go test -v --run TestReadBarsMalformed
func TestReadBarsMalformed(t *testing.T) {
	fs := afero.NewMemMapFs()
	csv := "date,open,high,low,close\n2024-01-03,2,2,2,n/a\n"
	if err := afero.WriteFile(fs, "bars.csv", []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := readBars(fs, "bars.csv", "AAPL"); !errors.Is(err, quote.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
}
