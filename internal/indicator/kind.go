package indicator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned for a Kind outside the closed set below.
var ErrUnknownKind = errors.New("unknown indicator kind")

// Kind identifies one overlay indicator. The set is closed; every switch over
// Kind lists all four values.
type Kind int

const (
	SMA20 Kind = iota + 1
	EMA20
	BollingerBands20
	VWAP
)

// Window is the fixed look-back for the rolling indicators.
const Window = 20

// Display names of the series each kind produces.
const (
	NameSMA     = "SMA (20)"
	NameEMA     = "EMA (20)"
	NameBBUpper = "BB Upper"
	NameBBLower = "BB Lower"
	NameVWAP    = "VWAP"
)

// Kinds lists every kind in UI order.
func Kinds() []Kind {
	return []Kind{SMA20, EMA20, BollingerBands20, VWAP}
}

func (k Kind) String() string {
	switch k {
	case SMA20:
		return "SMA20"
	case EMA20:
		return "EMA20"
	case BollingerBands20:
		return "BollingerBands20"
	case VWAP:
		return "VWAP"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Label is the multi-select label shown in the browser.
func (k Kind) Label() string {
	switch k {
	case SMA20:
		return "20-Day SMA"
	case EMA20:
		return "20-Day EMA"
	case BollingerBands20:
		return "20-Day Bollinger Bands"
	case VWAP:
		return "VWAP"
	}
	return k.String()
}

// SeriesNames returns the names of the series Compute produces for k.
func (k Kind) SeriesNames() []string {
	switch k {
	case SMA20:
		return []string{NameSMA}
	case EMA20:
		return []string{NameEMA}
	case BollingerBands20:
		return []string{NameBBUpper, NameBBLower}
	case VWAP:
		return []string{NameVWAP}
	}
	return nil
}

func (k Kind) Valid() bool {
	switch k {
	case SMA20, EMA20, BollingerBands20, VWAP:
		return true
	}
	return false
}

// ParseKind accepts the canonical name or the UI label, case-insensitively.
func ParseKind(s string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds() {
		if key == strings.ToLower(k.String()) || key == strings.ToLower(k.Label()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// ParseKinds parses a selection, dropping duplicates and keeping first-seen order.
func ParseKinds(names []string) ([]Kind, error) {
	out := make([]Kind, 0, len(names))
	seen := make(map[Kind]bool, len(names))
	for _, name := range names {
		k, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out, nil
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
