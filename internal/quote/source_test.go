package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockchart/pkg/alphavantage"
)

const dailyBody = `{
  "Meta Data": {"2. Symbol": "AAPL"},
  "Time Series (Daily)": {
    "2024-01-03": {"1. open": "184.22", "2. high": "185.88", "3. low": "183.43", "4. close": "184.25", "5. volume": "58414500"},
    "2024-01-02": {"1. open": "187.15", "2. high": "188.44", "3. low": "183.89", "4. close": "185.64", "5. volume": "82488700"}
  }
}`

func newLiveSource(t *testing.T, h http.HandlerFunc) *LiveSource {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewLiveSource(alphavantage.NewRESTClient(srv.URL, "demo", 5*time.Second))
}

// go test -v --run TestLiveSourceFetch
func TestLiveSourceFetch(t *testing.T) {
	src := newLiveSource(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "AAPL" {
			t.Errorf("symbol query = %q, want AAPL", got)
		}
		fmt.Fprint(w, dailyBody)
	})

	table, err := src.Fetch(context.Background(), "aapl", Window{Start: day("2024-01-01"), End: day("2024-01-31")})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if table.Symbol != "AAPL" || table.Len() != 2 {
		t.Fatalf("unexpected table: %s with %d bars", table.Symbol, table.Len())
	}
	if !table.Bars[0].Date.Equal(day("2024-01-02")) {
		t.Errorf("first bar should be 2024-01-02, got %s", table.Bars[0].Date)
	}
}

// go test -v --run TestLiveSourceNetworkFailure
func TestLiveSourceNetworkFailure(t *testing.T) {
	src := newLiveSource(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := src.Fetch(context.Background(), "AAPL", Window{Start: day("2024-01-01"), End: day("2024-01-31")})
	if !errors.Is(err, ErrNetworkFailure) {
		t.Fatalf("expected ErrNetworkFailure, got %v", err)
	}
}

// go test -v --run TestLiveSourceProviderMessage
func TestLiveSourceProviderMessage(t *testing.T) {
	src := newLiveSource(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Error Message": "Invalid API call."}`)
	})

	_, err := src.Fetch(context.Background(), "ZZZZ", Window{Start: day("2024-01-01"), End: day("2024-01-31")})
	var perr *alphavantage.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *alphavantage.ProviderError, got %v", err)
	}
	if errors.Is(err, ErrNetworkFailure) {
		t.Error("provider messages are not network failures")
	}
}

// go test -v --run TestLiveSourceMalformed
func TestLiveSourceMalformed(t *testing.T) {
	src := newLiveSource(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Time Series (Daily)": {"2024-01-02": {"1. open": "1", "2. high": "1", "3. low": "1", "4. close": "abc", "5. volume": "1"}}}`)
	})

	_, err := src.Fetch(context.Background(), "AAPL", Window{Start: day("2024-01-01"), End: day("2024-01-31")})
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
}

// go test -v --run TestLiveSourceNonStringFields
func TestLiveSourceNonStringFields(t *testing.T) {
	window := Window{Start: day("2024-01-01"), End: day("2024-01-31")}

	numeric := newLiveSource(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Time Series (Daily)": {"2024-01-02": {"1. open": 1.5, "2. high": 2, "3. low": 1, "4. close": 1.75, "5. volume": 100}}}`)
	})
	table, err := numeric.Fetch(context.Background(), "AAPL", window)
	if err != nil {
		t.Fatalf("numeric fields should normalize, got %v", err)
	}
	if len(table.Bars) != 1 || table.Bars[0].Close != 1.75 || table.Bars[0].Volume != 100 {
		t.Errorf("unexpected bars: %+v", table.Bars)
	}

	boolean := newLiveSource(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Time Series (Daily)": {"2024-01-02": {"1. open": "1", "2. high": "1", "3. low": "1", "4. close": true, "5. volume": "1"}}}`)
	})
	_, err = boolean.Fetch(context.Background(), "AAPL", window)
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
	if errors.Is(err, ErrNetworkFailure) {
		t.Fatalf("malformed field reported as network failure: %v", err)
	}
}
