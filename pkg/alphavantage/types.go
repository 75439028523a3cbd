package alphavantage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DailyResponse is the TIME_SERIES_DAILY envelope. Error conditions come back
// with status 200 and one of the message fields set instead of the series.
type DailyResponse struct {
	MetaData     MetaData    `json:"Meta Data"`
	TimeSeries   DailySeries `json:"Time Series (Daily)"`
	ErrorMessage string      `json:"Error Message"` // invalid symbol or API call
	Note         string      `json:"Note"`          // rate limit notice
	Information  string      `json:"Information"`   // premium endpoint or missing key
}

type MetaData struct {
	Information   string `json:"1. Information"`
	Symbol        string `json:"2. Symbol"`
	LastRefreshed string `json:"3. Last Refreshed"`
	OutputSize    string `json:"4. Output Size"`
	TimeZone      string `json:"5. Time Zone"`
}

// DailySeries maps a YYYY-MM-DD date to its record. Map order carries no meaning.
type DailySeries map[string]DailyRecord

// DailyRecord holds the provider's string-typed OHLCV fields.
// An empty string means the field was absent from the payload.
type DailyRecord struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// UnmarshalJSON accepts any JSON value per field. Strings are unquoted, null
// reads as absent, and anything else keeps its literal text so that record
// validation can judge it.
func (r *DailyRecord) UnmarshalJSON(b []byte) error {
	var raw struct {
		Open   json.RawMessage `json:"1. open"`
		High   json.RawMessage `json:"2. high"`
		Low    json.RawMessage `json:"3. low"`
		Close  json.RawMessage `json:"4. close"`
		Volume json.RawMessage `json:"5. volume"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = DailyRecord{
		Open:   rawField(raw.Open),
		High:   rawField(raw.High),
		Low:    rawField(raw.Low),
		Close:  rawField(raw.Close),
		Volume: rawField(raw.Volume),
	}
	return nil
}

func rawField(m json.RawMessage) string {
	m = bytes.TrimSpace(m)
	if len(m) == 0 || bytes.Equal(m, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(m, &s); err == nil {
		return s
	}
	return string(m)
}

// ProviderError is returned when the provider answers with a message instead of data.
type ProviderError struct {
	Kind    string // "Error Message", "Note" or "Information"
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("alphavantage %s: %s", strings.ToLower(e.Kind), e.Message)
}

// RequestError covers transport failures and non-200 responses.
type RequestError struct {
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("alphavantage request: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("alphavantage request: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

func (r *DailyResponse) providerError() error {
	switch {
	case r.ErrorMessage != "":
		return &ProviderError{Kind: "Error Message", Message: r.ErrorMessage}
	case r.Note != "" && r.TimeSeries == nil:
		return &ProviderError{Kind: "Note", Message: r.Note}
	case r.Information != "" && r.TimeSeries == nil:
		return &ProviderError{Kind: "Information", Message: r.Information}
	case r.TimeSeries == nil:
		return &ProviderError{Kind: "Error Message", Message: "response has no \"Time Series (Daily)\""}
	}
	return nil
}
