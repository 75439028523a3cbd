package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const dailyFixture = `{
  "Meta Data": {
    "1. Information": "Daily Prices (open, high, low, close) and Volumes",
    "2. Symbol": "IBM",
    "3. Last Refreshed": "2024-12-13",
    "4. Output Size": "Full size",
    "5. Time Zone": "US/Eastern"
  },
  "Time Series (Daily)": {
    "2024-12-13": {"1. open": "229.9500", "2. high": "231.2000", "3. low": "228.3100", "4. close": "230.8200", "5. volume": "3140357"},
    "2024-12-12": {"1. open": "231.5000", "2. high": "232.2800", "3. low": "229.6100", "4. close": "229.8100", "5. volume": "2942355"}
  }
}`

// go test -v --run TestGetDailySeries
func TestGetDailySeries(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(dailyFixture))
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL+"/", "secret", 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.GetDailySeries(ctx, "IBM")
	if err != nil {
		t.Fatalf("GetDailySeries returned error: %v", err)
	}

	want := map[string]string{
		"function":   "TIME_SERIES_DAILY",
		"symbol":     "IBM",
		"outputsize": "full",
		"apikey":     "secret",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}

	if resp.MetaData.Symbol != "IBM" {
		t.Errorf("unexpected symbol: %s", resp.MetaData.Symbol)
	}
	if len(resp.TimeSeries) != 2 {
		t.Fatalf("expected 2 records, got %d", len(resp.TimeSeries))
	}
	if rec := resp.TimeSeries["2024-12-12"]; rec.Close != "229.8100" || rec.Volume != "2942355" {
		t.Errorf("unexpected record: %+v", rec)
	}
}

// go test -v --run TestGetDailySeriesNonStringFields
func TestGetDailySeriesNonStringFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Time Series (Daily)": {
			"2024-12-12": {"1. open": "231.5000", "2. high": 232.28, "3. low": null, "4. close": 229.81, "5. volume": 2942355},
			"2024-12-13": {"1. open": "229.9500", "2. high": "231.2000", "3. low": "228.3100", "4. close": true}
		}}`))
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL+"/", "secret", 5*time.Second)
	resp, err := client.GetDailySeries(context.Background(), "IBM")
	if err != nil {
		t.Fatalf("GetDailySeries returned error: %v", err)
	}

	want := DailyRecord{Open: "231.5000", High: "232.28", Low: "", Close: "229.81", Volume: "2942355"}
	if got := resp.TimeSeries["2024-12-12"]; got != want {
		t.Errorf("record = %+v, want %+v", got, want)
	}
	if got := resp.TimeSeries["2024-12-13"]; got.Close != "true" || got.Volume != "" {
		t.Errorf("unexpected record: %+v", got)
	}
}

// go test -v --run TestGetDailySeriesProviderMessages
func TestGetDailySeriesProviderMessages(t *testing.T) {
	cases := map[string]struct {
		body string
		kind string
	}{
		"invalid symbol": {`{"Error Message": "Invalid API call."}`, "Error Message"},
		"rate limited":   {`{"Note": "Thank you for using Alpha Vantage!"}`, "Note"},
		"missing key":    {`{"Information": "The **demo** API key is for demo purposes only."}`, "Information"},
		"no series":      {`{"Meta Data": {}}`, "Error Message"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewRESTClient(srv.URL, "", time.Second).GetDailySeries(context.Background(), "XXXX")
			var perr *ProviderError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ProviderError, got %v", err)
			}
			if perr.Kind != tc.kind {
				t.Errorf("kind = %q, want %q", perr.Kind, tc.kind)
			}
		})
	}
}

// go test -v --run TestGetDailySeriesRequestErrors
func TestGetDailySeriesRequestErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	}))

	_, err := NewRESTClient(srv.URL, "k", time.Second).GetDailySeries(context.Background(), "IBM")
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected RequestError with status 503, got %v", err)
	}

	// closed server: transport failure without a status
	srv.Close()
	_, err = NewRESTClient(srv.URL, "k", time.Second).GetDailySeries(context.Background(), "IBM")
	if !errors.As(err, &reqErr) || reqErr.StatusCode != 0 {
		t.Fatalf("expected transport RequestError, got %v", err)
	}
}
