package quote

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"stockchart/pkg/alphavantage"
)

// Normalize converts the provider's date-keyed string records into an ascending
// PriceTable restricted to [start, end]. Only in-window records are validated.
// An empty window yields an empty table, not an error.
func Normalize(raw alphavantage.DailySeries, start, end time.Time) (PriceTable, error) {
	window := Window{Start: start, End: end}
	bars := make([]PriceBar, 0, len(raw))

	for key, rec := range raw {
		date, err := ParseDate(strings.TrimSpace(key))
		if err != nil {
			return PriceTable{}, &MalformedRecordError{Date: key, Reason: "date is not YYYY-MM-DD"}
		}
		if !window.Contains(date) {
			continue
		}

		bar, err := parseRecord(key, date, rec)
		if err != nil {
			return PriceTable{}, err
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	return PriceTable{Bars: bars}, nil
}

func parseRecord(key string, date time.Time, rec alphavantage.DailyRecord) (PriceBar, error) {
	open, err := parsePrice(key, alphavantage.FieldOpen, rec.Open)
	if err != nil {
		return PriceBar{}, err
	}
	high, err := parsePrice(key, alphavantage.FieldHigh, rec.High)
	if err != nil {
		return PriceBar{}, err
	}
	low, err := parsePrice(key, alphavantage.FieldLow, rec.Low)
	if err != nil {
		return PriceBar{}, err
	}
	closeVal, err := parsePrice(key, alphavantage.FieldClose, rec.Close)
	if err != nil {
		return PriceBar{}, err
	}
	volume, err := parseVolume(key, rec.Volume)
	if err != nil {
		return PriceBar{}, err
	}

	return PriceBar{
		Date:   date,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closeVal,
		Volume: volume,
	}, nil
}

func parsePrice(date, field, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &MalformedRecordError{Date: date, Field: field, Reason: "missing"}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &MalformedRecordError{Date: date, Field: field, Value: s, Reason: "not a number"}
	}
	if v <= 0 {
		return 0, &MalformedRecordError{Date: date, Field: field, Value: s, Reason: "price must be positive"}
	}
	return v, nil
}

func parseVolume(date, s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &MalformedRecordError{Date: date, Field: alphavantage.FieldVolume, Reason: "missing"}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// some exports write volumes as "1234.0"
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f > math.MaxInt64 {
			return 0, &MalformedRecordError{Date: date, Field: alphavantage.FieldVolume, Value: s, Reason: "not an integer"}
		}
		v = int64(f)
	}
	if v < 0 {
		return 0, &MalformedRecordError{Date: date, Field: alphavantage.FieldVolume, Value: s, Reason: "volume must be non-negative"}
	}
	return v, nil
}
