package quote

import (
	"errors"
	"testing"
	"time"

	"stockchart/pkg/alphavantage"
)

func day(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func rec(o, h, l, c, v string) alphavantage.DailyRecord {
	return alphavantage.DailyRecord{Open: o, High: h, Low: l, Close: c, Volume: v}
}

// go test -v --run TestNormalizeOrdersAndFilters
func TestNormalizeOrdersAndFilters(t *testing.T) {
	raw := alphavantage.DailySeries{
		"2024-01-05": rec("105", "106", "104", "105.5", "500"),
		"2024-01-02": rec("101", "102", "100", "101.5", "200"),
		"2024-01-04": rec("104", "105", "103", "104.5", "400"),
		"2023-12-29": rec("99", "100", "98", "99.5", "100"),
		"2024-01-03": rec("103", "104", "102", "103.5", "300"),
		"2024-01-08": rec("108", "109", "107", "108.5", "800"),
	}

	table, err := Normalize(raw, day("2024-01-02"), day("2024-01-05"))
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	wantDates := []string{"2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}
	if table.Len() != len(wantDates) {
		t.Fatalf("expected %d bars, got %d", len(wantDates), table.Len())
	}
	for i, b := range table.Bars {
		if got := b.Date.Format(DateLayout); got != wantDates[i] {
			t.Errorf("bar %d date = %s, want %s", i, got, wantDates[i])
		}
		if i > 0 && !table.Bars[i-1].Date.Before(b.Date) {
			t.Errorf("dates not strictly ascending at %d", i)
		}
	}

	first := table.Bars[0]
	if first.Open != 101 || first.High != 102 || first.Low != 100 || first.Close != 101.5 || first.Volume != 200 {
		t.Errorf("unexpected first bar: %+v", first)
	}
}

// go test -v --run TestNormalizeEmptyWindow
func TestNormalizeEmptyWindow(t *testing.T) {
	raw := alphavantage.DailySeries{
		"2024-01-02": rec("101", "102", "100", "101.5", "200"),
		"2024-01-03": rec("103", "104", "102", "103.5", "300"),
	}

	cases := map[string][2]string{
		"start after end":      {"2024-01-03", "2024-01-02"},
		"window before data":   {"2020-01-01", "2020-12-31"},
		"window after data":    {"2025-01-01", "2025-12-31"},
		"weekend between bars": {"2024-01-06", "2024-01-07"},
	}
	for name, w := range cases {
		t.Run(name, func(t *testing.T) {
			table, err := Normalize(raw, day(w[0]), day(w[1]))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !table.Empty() {
				t.Fatalf("expected empty table, got %d bars", table.Len())
			}
			if table.Bars == nil {
				t.Error("empty table should carry a non-nil slice")
			}
		})
	}
}

// go test -v --run TestNormalizeInclusiveBounds
func TestNormalizeInclusiveBounds(t *testing.T) {
	raw := alphavantage.DailySeries{
		"2024-01-02": rec("101", "102", "100", "101.5", "200"),
	}
	table, err := Normalize(raw, day("2024-01-02"), day("2024-01-02"))
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("single-day window should include its bar, got %d", table.Len())
	}
}

// go test -v --run TestNormalizeMalformed
func TestNormalizeMalformed(t *testing.T) {
	good := rec("101", "102", "100", "101.5", "200")
	cases := map[string]struct {
		record alphavantage.DailyRecord
		field  string
	}{
		"non-numeric close": {rec("101", "102", "100", "abc", "200"), alphavantage.FieldClose},
		"missing open":      {rec("", "102", "100", "101.5", "200"), alphavantage.FieldOpen},
		"negative price":    {rec("101", "102", "-1", "101.5", "200"), alphavantage.FieldLow},
		"NaN high":          {rec("101", "NaN", "100", "101.5", "200"), alphavantage.FieldHigh},
		"fractional volume": {rec("101", "102", "100", "101.5", "12.5"), alphavantage.FieldVolume},
		"negative volume":   {rec("101", "102", "100", "101.5", "-3"), alphavantage.FieldVolume},
		"missing volume":    {rec("101", "102", "100", "101.5", ""), alphavantage.FieldVolume},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			raw := alphavantage.DailySeries{
				"2024-01-02": good,
				"2024-01-03": tc.record,
			}
			_, err := Normalize(raw, day("2024-01-01"), day("2024-01-31"))
			if !errors.Is(err, ErrMalformedRecord) {
				t.Fatalf("expected ErrMalformedRecord, got %v", err)
			}
			var mre *MalformedRecordError
			if !errors.As(err, &mre) {
				t.Fatalf("expected *MalformedRecordError, got %T", err)
			}
			if mre.Date != "2024-01-03" || mre.Field != tc.field {
				t.Errorf("error points at %s/%s, want 2024-01-03/%s", mre.Date, mre.Field, tc.field)
			}
		})
	}
}

// go test -v --run TestNormalizeIgnoresMalformedOutsideWindow
func TestNormalizeIgnoresMalformedOutsideWindow(t *testing.T) {
	raw := alphavantage.DailySeries{
		"2024-01-02": rec("101", "102", "100", "101.5", "200"),
		"2023-06-01": rec("x", "y", "z", "w", "v"),
	}
	table, err := Normalize(raw, day("2024-01-01"), day("2024-01-31"))
	if err != nil {
		t.Fatalf("out-of-window record should not be validated: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("expected 1 bar, got %d", table.Len())
	}
}

// go test -v --run TestNormalizeBadDateKey
func TestNormalizeBadDateKey(t *testing.T) {
	raw := alphavantage.DailySeries{"01/02/2024": rec("101", "102", "100", "101.5", "200")}
	if _, err := Normalize(raw, day("2024-01-01"), day("2024-01-31")); !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord for bad date key, got %v", err)
	}
}

// go test -v --run TestNormalizeIntegralFloatVolume
func TestNormalizeIntegralFloatVolume(t *testing.T) {
	raw := alphavantage.DailySeries{"2024-01-02": rec("101", "102", "100", "101.5", "1500.0")}
	table, err := Normalize(raw, day("2024-01-01"), day("2024-01-31"))
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if table.Bars[0].Volume != 1500 {
		t.Errorf("volume = %d, want 1500", table.Bars[0].Volume)
	}
}
