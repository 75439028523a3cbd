package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stockchart/pkg/alphavantage"
)

// Source produces a normalized table for one symbol and window.
type Source interface {
	Name() string
	Fetch(ctx context.Context, symbol string, w Window) (PriceTable, error)
}

// LiveSource fetches TIME_SERIES_DAILY from Alpha Vantage.
type LiveSource struct {
	client *alphavantage.RESTClient
}

func NewLiveSource(client *alphavantage.RESTClient) *LiveSource {
	return &LiveSource{client: client}
}

func (s *LiveSource) Name() string { return "live" }

func (s *LiveSource) Fetch(ctx context.Context, symbol string, w Window) (PriceTable, error) {
	symbol = NormalizeSymbol(symbol)

	resp, err := s.client.GetDailySeries(ctx, symbol)
	if err != nil {
		var reqErr *alphavantage.RequestError
		if errors.As(err, &reqErr) {
			return PriceTable{}, fmt.Errorf("%w: %w", ErrNetworkFailure, err)
		}
		return PriceTable{}, fmt.Errorf("fetch %s: %w", symbol, err)
	}

	table, err := Normalize(resp.TimeSeries, w.Start, w.End)
	if err != nil {
		return PriceTable{}, fmt.Errorf("normalize %s: %w", symbol, err)
	}
	table.Symbol = symbol
	return table, nil
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
