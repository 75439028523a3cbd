package quote

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord marks an in-window record that cannot be parsed.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrNetworkFailure marks a transport-level failure reaching a quote source.
	ErrNetworkFailure = errors.New("network failure")

	// ErrMissingCredential is reported when no provider API key is configured.
	// Requests are still sent; the provider's answer decides what happens.
	ErrMissingCredential = errors.New("missing provider credential")
)

// MalformedRecordError describes which record and field failed to parse.
type MalformedRecordError struct {
	Date   string
	Field  string
	Value  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed record %s: %s", e.Date, e.Reason)
	}
	return fmt.Sprintf("malformed record %s: field %q=%q: %s", e.Date, e.Field, e.Value, e.Reason)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}
