package quote

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"stockchart/pkg/alphavantage"
	"stockchart/pkg/storage/postgres"
)

// DailyBarReader is the read side of the bar warehouse.
type DailyBarReader interface {
	GetDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]postgres.DailyBarRecord, error)
}

// WarehouseSource serves bars previously imported into Postgres.
type WarehouseSource struct {
	reader DailyBarReader
}

func NewWarehouseSource(reader DailyBarReader) *WarehouseSource {
	return &WarehouseSource{reader: reader}
}

func (s *WarehouseSource) Name() string { return "warehouse" }

func (s *WarehouseSource) Fetch(ctx context.Context, symbol string, w Window) (PriceTable, error) {
	symbol = NormalizeSymbol(symbol)
	if w.Start.After(w.End) {
		return PriceTable{Symbol: symbol, Bars: []PriceBar{}}, nil
	}

	records, err := s.reader.GetDailyBars(ctx, symbol, w.Start, w.End)
	if err != nil {
		return PriceTable{}, fmt.Errorf("%w: warehouse query: %w", ErrNetworkFailure, err)
	}

	table, err := Normalize(recordsToSeries(records), w.Start, w.End)
	if err != nil {
		return PriceTable{}, fmt.Errorf("normalize %s: %w", symbol, err)
	}
	table.Symbol = symbol
	return table, nil
}

// recordsToSeries formats warehouse rows back into provider strings so the
// normalizer applies the same checks to every source.
func recordsToSeries(records []postgres.DailyBarRecord) alphavantage.DailySeries {
	series := make(alphavantage.DailySeries, len(records))
	for _, r := range records {
		series[r.Date.UTC().Format(DateLayout)] = alphavantage.DailyRecord{
			Open:   strconv.FormatFloat(r.Open, 'f', -1, 64),
			High:   strconv.FormatFloat(r.High, 'f', -1, 64),
			Low:    strconv.FormatFloat(r.Low, 'f', -1, 64),
			Close:  strconv.FormatFloat(r.Close, 'f', -1, 64),
			Volume: strconv.FormatInt(r.Volume, 10),
		}
	}
	return series
}

// ToDailyBarRecords converts a table into warehouse rows tagged with source.
func ToDailyBarRecords(table PriceTable, source string) []postgres.DailyBarRecord {
	out := make([]postgres.DailyBarRecord, len(table.Bars))
	for i, b := range table.Bars {
		out[i] = postgres.DailyBarRecord{
			Symbol: table.Symbol,
			Date:   b.Date,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
			Source: source,
		}
	}
	return out
}
