package quote

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"stockchart/pkg/alphavantage"

	"github.com/spf13/afero"
)

// FixtureSource reads bars from a local CSV instead of calling the provider.
// The file needs date, open, high, low and close columns. A volume column is
// optional (missing volume reads as 0). When a symbol column exists, rows are
// filtered by ticker; otherwise every row belongs to whatever was asked for.
type FixtureSource struct {
	fs   afero.Fs
	path string
}

func NewFixtureSource(fs afero.Fs, path string) *FixtureSource {
	return &FixtureSource{fs: fs, path: path}
}

func (s *FixtureSource) Name() string { return "fixture" }

func (s *FixtureSource) Fetch(ctx context.Context, symbol string, w Window) (PriceTable, error) {
	if err := ctx.Err(); err != nil {
		return PriceTable{}, err
	}
	symbol = NormalizeSymbol(symbol)

	f, err := s.fs.Open(s.path)
	if err != nil {
		return PriceTable{}, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	series, err := ReadFixtureCSV(f, symbol)
	if err != nil {
		return PriceTable{}, fmt.Errorf("read fixture %s: %w", s.path, err)
	}

	table, err := Normalize(series, w.Start, w.End)
	if err != nil {
		return PriceTable{}, fmt.Errorf("normalize %s: %w", symbol, err)
	}
	table.Symbol = symbol
	return table, nil
}

// ReadFixtureCSV converts a fixture CSV into the provider's raw shape so it
// goes through the same normalization as live data. An empty symbol keeps all rows.
func ReadFixtureCSV(r io.Reader, symbol string) (alphavantage.DailySeries, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return alphavantage.DailySeries{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "open", "high", "low", "close"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}
	volCol, hasVolume := cols["volume"]
	symCol, hasSymbol := cols["symbol"]

	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	series := alphavantage.DailySeries{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		if hasSymbol && symbol != "" && NormalizeSymbol(cell(row, symCol)) != symbol {
			continue
		}

		date := cell(row, cols["date"])
		// pandas exports sometimes carry a time part
		if len(date) > len(DateLayout) {
			date = date[:len(DateLayout)]
		}
		if _, dup := series[date]; dup {
			return nil, &MalformedRecordError{Date: date, Reason: "duplicate date"}
		}

		volume := "0"
		if hasVolume {
			volume = cell(row, volCol)
		}

		series[date] = alphavantage.DailyRecord{
			Open:   cell(row, cols["open"]),
			High:   cell(row, cols["high"]),
			Low:    cell(row, cols["low"]),
			Close:  cell(row, cols["close"]),
			Volume: volume,
		}
	}
	return series, nil
}
