package indicator

import (
	"fmt"
	"math"

	"stockchart/internal/quote"

	"github.com/guregu/null/v6"
)

// Series is one overlay aligned 1:1 with the table's bars. Invalid entries
// are undefined points and marshal to JSON null.
type Series struct {
	Name   string       `json:"name"`
	Kind   Kind         `json:"kind"`
	Values []null.Float `json:"values"`
}

// Compute derives the series for kind from table. It does not modify table
// and returns identical output for identical input.
func Compute(table quote.PriceTable, kind Kind) ([]Series, error) {
	closes := table.Closes()

	switch kind {
	case SMA20:
		return []Series{{Name: NameSMA, Kind: kind, Values: SMA(closes, Window)}}, nil
	case EMA20:
		return []Series{{Name: NameEMA, Kind: kind, Values: EMA(closes, Window)}}, nil
	case BollingerBands20:
		upper, lower := BollingerBands(closes, Window, 2)
		return []Series{
			{Name: NameBBUpper, Kind: kind, Values: upper},
			{Name: NameBBLower, Kind: kind, Values: lower},
		}, nil
	case VWAP:
		return []Series{{Name: NameVWAP, Kind: kind, Values: CumulativeVWAP(closes, table.Volumes())}}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
}

// ComputeAll computes every kind in order and concatenates the series.
func ComputeAll(table quote.PriceTable, kinds []Kind) ([]Series, error) {
	var out []Series
	for _, k := range kinds {
		series, err := Compute(table, k)
		if err != nil {
			return nil, err
		}
		out = append(out, series...)
	}
	return out, nil
}

// SMA is the trailing mean over period values. The first period-1 points are
// undefined, as is everything when len(values) < period.
func SMA(values []float64, period int) []null.Float {
	out := make([]null.Float, len(values))
	for i := period - 1; i < len(values); i++ {
		out[i] = null.FloatFrom(mean(values[i-period+1 : i+1]))
	}
	return out
}

// EMA uses alpha = 2/(span+1) with bias-adjusted weights: each point is the
// weighted mean of all prior values with weights (1-alpha)^age. It is defined
// from the first value.
func EMA(values []float64, span int) []null.Float {
	out := make([]null.Float, len(values))
	decay := 1 - 2/float64(span+1)

	var num, den float64
	for i, v := range values {
		num = v + decay*num
		den = 1 + decay*den
		out[i] = null.FloatFrom(num / den)
	}
	return out
}

// BollingerBands returns mean ± k·σ over trailing period values, with σ the
// sample standard deviation. Undefined points match SMA.
func BollingerBands(values []float64, period int, k float64) (upper, lower []null.Float) {
	upper = make([]null.Float, len(values))
	lower = make([]null.Float, len(values))
	if period < 2 {
		return upper, lower
	}
	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		m := mean(window)
		var ss float64
		for _, v := range window {
			d := v - m
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(period-1))
		upper[i] = null.FloatFrom(m + k*sd)
		lower[i] = null.FloatFrom(m - k*sd)
	}
	return upper, lower
}

// CumulativeVWAP is running Σ(close·volume) / running Σ(volume). Points where
// the running volume is zero are undefined.
func CumulativeVWAP(closes []float64, volumes []int64) []null.Float {
	out := make([]null.Float, len(closes))
	var pv float64
	var vol int64
	for i := range closes {
		pv += closes[i] * float64(volumes[i])
		vol += volumes[i]
		if vol == 0 {
			continue
		}
		out[i] = null.FloatFrom(pv / float64(vol))
	}
	return out
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
