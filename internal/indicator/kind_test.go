package indicator_test

import (
	"testing"

	"stockchart/internal/indicator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -v --run TestParseKind
func TestParseKind(t *testing.T) {
	cases := map[string]indicator.Kind{
		"SMA20":                  indicator.SMA20,
		"sma20":                  indicator.SMA20,
		"20-Day SMA":             indicator.SMA20,
		"20-Day EMA":             indicator.EMA20,
		"BollingerBands20":       indicator.BollingerBands20,
		"20-day bollinger bands": indicator.BollingerBands20,
		" VWAP ":                 indicator.VWAP,
	}
	for in, want := range cases {
		got, err := indicator.ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := indicator.ParseKind("RSI14")
	assert.ErrorIs(t, err, indicator.ErrUnknownKind)
}

// go test -v --run TestParseKindsDedup
func TestParseKindsDedup(t *testing.T) {
	kinds, err := indicator.ParseKinds([]string{"VWAP", "20-Day SMA", "vwap", "SMA20"})
	require.NoError(t, err)
	assert.Equal(t, []indicator.Kind{indicator.VWAP, indicator.SMA20}, kinds)

	_, err = indicator.ParseKinds([]string{"SMA20", "MACD"})
	assert.ErrorIs(t, err, indicator.ErrUnknownKind)
}

// go test -v --run TestKindText
func TestKindText(t *testing.T) {
	for _, k := range indicator.Kinds() {
		b, err := k.MarshalText()
		require.NoError(t, err)

		var back indicator.Kind
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, k, back)
		assert.NotEmpty(t, k.SeriesNames())
	}

	_, err := indicator.Kind(0).MarshalText()
	assert.ErrorIs(t, err, indicator.ErrUnknownKind)
}
