package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type RESTClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewRESTClient(baseURL, apiKey string, timeout time.Duration) *RESTClient {
	return &RESTClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *RESTClient) HTTPClient() *http.Client {
	return c.httpClient
}

// DailyURL builds the TIME_SERIES_DAILY query. The key is sent even when empty.
func (c *RESTClient) DailyURL(symbol string, size OutputSize) string {
	q := url.Values{}
	q.Set("function", string(FunctionTimeSeriesDaily))
	q.Set("symbol", symbol)
	q.Set("outputsize", string(size))
	q.Set("apikey", c.apiKey)
	return c.baseURL + "/query?" + q.Encode()
}

// GetDailySeries fetches the full daily history for symbol in one request.
func (c *RESTClient) GetDailySeries(ctx context.Context, symbol string) (*DailyResponse, error) {
	endpoint := c.DailyURL(symbol, OutputSizeFull)

	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &RequestError{StatusCode: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(body)))}
	}

	var out DailyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &RequestError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	if err := out.providerError(); err != nil {
		return nil, err
	}
	return &out, nil
}
