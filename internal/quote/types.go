package quote

import (
	"fmt"
	"time"

	"stockchart/pkg/alphavantage"

	"github.com/guregu/null/v6"
)

// PriceBar is one trading day. Date is midnight UTC.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceTable is an ascending, date-unique run of bars for one symbol.
// OHLCV values never change after construction; derived columns are attached
// through WithColumn, which returns a new table.
type PriceTable struct {
	Symbol  string
	Bars    []PriceBar
	derived map[string][]null.Float
}

func (t PriceTable) Len() int { return len(t.Bars) }

func (t PriceTable) Empty() bool { return len(t.Bars) == 0 }

func (t PriceTable) Dates() []time.Time {
	out := make([]time.Time, len(t.Bars))
	for i, b := range t.Bars {
		out[i] = b.Date
	}
	return out
}

func (t PriceTable) Closes() []float64 {
	out := make([]float64, len(t.Bars))
	for i, b := range t.Bars {
		out[i] = b.Close
	}
	return out
}

func (t PriceTable) Volumes() []int64 {
	out := make([]int64, len(t.Bars))
	for i, b := range t.Bars {
		out[i] = b.Volume
	}
	return out
}

// WithColumn returns a copy of t carrying an extra derived column aligned to Bars.
func (t PriceTable) WithColumn(name string, values []null.Float) (PriceTable, error) {
	if len(values) != len(t.Bars) {
		return t, fmt.Errorf("column %s has %d values for %d bars", name, len(values), len(t.Bars))
	}
	derived := make(map[string][]null.Float, len(t.derived)+1)
	for k, v := range t.derived {
		derived[k] = v
	}
	col := make([]null.Float, len(values))
	copy(col, values)
	derived[name] = col
	return PriceTable{Symbol: t.Symbol, Bars: t.Bars, derived: derived}, nil
}

// WithoutColumn returns a copy of t with the named derived column removed.
func (t PriceTable) WithoutColumn(name string) PriceTable {
	if _, ok := t.derived[name]; !ok {
		return t
	}
	derived := make(map[string][]null.Float, len(t.derived))
	for k, v := range t.derived {
		if k != name {
			derived[k] = v
		}
	}
	return PriceTable{Symbol: t.Symbol, Bars: t.Bars, derived: derived}
}

// Column returns a derived column by name.
func (t PriceTable) Column(name string) ([]null.Float, bool) {
	col, ok := t.derived[name]
	return col, ok
}

// Window is an inclusive calendar date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// ParseWindow parses two YYYY-MM-DD dates. Start after End is allowed and
// selects nothing.
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Window{}, fmt.Errorf("start date: %w", err)
	}
	e, err := ParseDate(end)
	if err != nil {
		return Window{}, fmt.Errorf("end date: %w", err)
	}
	return Window{Start: s, End: e}, nil
}

func (w Window) Contains(d time.Time) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

func (w Window) String() string {
	return w.Start.Format(DateLayout) + ".." + w.End.Format(DateLayout)
}

// DateLayout matches the provider's date keys.
const DateLayout = alphavantage.DateLayout

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// VWAPColumn is the name of the derived VWAP column.
const VWAPColumn = "VWAP"

// WithVWAP attaches a VWAP column. OHLCV values are untouched.
func (t PriceTable) WithVWAP(values []null.Float) (PriceTable, error) {
	return t.WithColumn(VWAPColumn, values)
}

// VWAP returns the attached VWAP column, if any.
func (t PriceTable) VWAP() ([]null.Float, bool) {
	return t.Column(VWAPColumn)
}
