package chart

import (
	"stockchart/internal/indicator"
	"stockchart/internal/quote"
	"stockchart/internal/session"
)

// Candle and Point use the field names lightweight-charts expects.
type Candle struct {
	Time  string  `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Point omits Value for undefined points, which the browser draws as a gap.
type Point struct {
	Time  string   `json:"time"`
	Value *float64 `json:"value,omitempty"`
}

type Line struct {
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Points []Point `json:"points"`
}

// Payload is the JSON the browser renders.
type Payload struct {
	Session  string           `json:"session"`
	Version  uint64           `json:"version"`
	State    session.State    `json:"state"`
	Symbol   string           `json:"symbol,omitempty"`
	Start    string           `json:"start,omitempty"`
	End      string           `json:"end,omitempty"`
	Selected []indicator.Kind `json:"selected"`
	Candles  []Candle         `json:"candles"`
	Lines    []Line           `json:"lines"`
}

// FromView builds the browser payload for a session view.
func FromView(v session.View) Payload {
	p := Payload{
		Session:  v.ID,
		Version:  v.Version,
		State:    v.State,
		Symbol:   v.Symbol,
		Start:    v.Start,
		End:      v.End,
		Selected: v.Selected,
		Candles:  make([]Candle, len(v.Bars)),
		Lines:    make([]Line, 0, len(v.Overlays)),
	}

	times := make([]string, len(v.Bars))
	for i, b := range v.Bars {
		times[i] = b.Date.Format(quote.DateLayout)
		p.Candles[i] = Candle{Time: times[i], Open: b.Open, High: b.High, Low: b.Low, Close: b.Close}
	}

	for idx, s := range v.Overlays {
		line := Line{Name: s.Name, Color: SeriesColor(s.Name, idx), Points: make([]Point, len(s.Values))}
		for i, val := range s.Values {
			line.Points[i] = Point{Time: times[i], Value: val.Ptr()}
		}
		p.Lines = append(p.Lines, line)
	}
	return p
}

var seriesColors = map[string]string{
	indicator.NameSMA:     "#2962ff",
	indicator.NameEMA:     "#ff6d00",
	indicator.NameBBUpper: "#7e57c2",
	indicator.NameBBLower: "#7e57c2",
	indicator.NameVWAP:    "#00897b",
}

var fallbackColors = []string{"#546e7a", "#8d6e63", "#c2185b"}

// SeriesColor gives each overlay the same color in the PNG and the browser.
func SeriesColor(name string, idx int) string {
	if c, ok := seriesColors[name]; ok {
		return c
	}
	return fallbackColors[idx%len(fallbackColors)]
}
