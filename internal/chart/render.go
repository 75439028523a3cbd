package chart

import (
	"fmt"
	"io"
	"math"

	"stockchart/internal/indicator"
	"stockchart/internal/quote"

	"github.com/fogleman/gg"
)

// Options controls the PNG snapshot.
type Options struct {
	Width  int
	Height int
	Title  string
}

// DefaultOptions matches the browser chart's aspect.
var DefaultOptions = Options{Width: 1200, Height: 700}

const (
	marginLeft   = 70.0
	marginRight  = 20.0
	marginTop    = 40.0
	marginBottom = 40.0
	priceTicks   = 5
)

const (
	colorBackground = "#ffffff"
	colorGrid       = "#e6e6e6"
	colorAxis       = "#333333"
	colorUp         = "#26a69a"
	colorDown       = "#ef5350"
)

// Render draws candlesticks with overlays and writes a PNG to w. An empty
// table still produces a valid image with axes and no candles.
func Render(w io.Writer, bars []quote.PriceBar, overlays []indicator.Series, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = DefaultOptions.Width, DefaultOptions.Height
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetHexColor(colorBackground)
	dc.Clear()

	plot := plotArea{
		left:   marginLeft,
		top:    marginTop,
		width:  float64(opts.Width) - marginLeft - marginRight,
		height: float64(opts.Height) - marginTop - marginBottom,
	}

	lo, hi := priceRange(bars, overlays)
	plot.lo, plot.hi = lo, hi

	drawGrid(dc, plot)
	if opts.Title != "" {
		dc.SetHexColor(colorAxis)
		dc.DrawStringAnchored(opts.Title, plot.left, marginTop/2, 0, 0.5)
	}

	if len(bars) == 0 {
		dc.SetHexColor(colorAxis)
		dc.DrawStringAnchored("no data in the selected range", plot.left+plot.width/2, plot.top+plot.height/2, 0.5, 0.5)
		return encode(dc, w)
	}

	step := plot.width / float64(len(bars))
	drawCandles(dc, plot, bars, step)
	for i, s := range overlays {
		drawOverlay(dc, plot, s, step, i)
	}
	drawDateLabels(dc, plot, bars, step)
	drawLegend(dc, plot, overlays)

	return encode(dc, w)
}

type plotArea struct {
	left, top, width, height float64
	lo, hi                   float64
}

func (p plotArea) y(price float64) float64 {
	return p.top + (p.hi-price)/(p.hi-p.lo)*p.height
}

func (p plotArea) x(i int, step float64) float64 {
	return p.left + (float64(i)+0.5)*step
}

// priceRange spans every low, high and defined overlay value, padded 5%.
func priceRange(bars []quote.PriceBar, overlays []indicator.Series) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, b := range bars {
		lo = math.Min(lo, b.Low)
		hi = math.Max(hi, b.High)
	}
	for _, s := range overlays {
		for _, v := range s.Values {
			if v.Valid {
				lo = math.Min(lo, v.Float64)
				hi = math.Max(hi, v.Float64)
			}
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	if hi == lo {
		hi, lo = hi+1, lo-1
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

func drawGrid(dc *gg.Context, p plotArea) {
	dc.SetLineWidth(1)
	for i := 0; i <= priceTicks; i++ {
		price := p.lo + (p.hi-p.lo)*float64(i)/priceTicks
		y := p.y(price)
		dc.SetHexColor(colorGrid)
		dc.DrawLine(p.left, y, p.left+p.width, y)
		dc.Stroke()
		dc.SetHexColor(colorAxis)
		dc.DrawStringAnchored(fmt.Sprintf("%.2f", price), p.left-8, y, 1, 0.5)
	}
	dc.SetHexColor(colorAxis)
	dc.DrawRectangle(p.left, p.top, p.width, p.height)
	dc.Stroke()
}

func drawCandles(dc *gg.Context, p plotArea, bars []quote.PriceBar, step float64) {
	body := math.Max(1, step*0.7)
	for i, b := range bars {
		x := p.x(i, step)
		if b.Close >= b.Open {
			dc.SetHexColor(colorUp)
		} else {
			dc.SetHexColor(colorDown)
		}

		dc.SetLineWidth(1)
		dc.DrawLine(x, p.y(b.High), x, p.y(b.Low))
		dc.Stroke()

		top := p.y(math.Max(b.Open, b.Close))
		h := math.Max(1, p.y(math.Min(b.Open, b.Close))-top)
		dc.DrawRectangle(x-body/2, top, body, h)
		dc.Fill()
	}
}

// drawOverlay strokes a series, breaking the line at undefined points.
func drawOverlay(dc *gg.Context, p plotArea, s indicator.Series, step float64, idx int) {
	dc.SetHexColor(SeriesColor(s.Name, idx))
	dc.SetLineWidth(1.5)

	open := false
	for i, v := range s.Values {
		if !v.Valid {
			open = false
			continue
		}
		x, y := p.x(i, step), p.y(v.Float64)
		if !open {
			dc.NewSubPath()
			dc.MoveTo(x, y)
			open = true
			continue
		}
		dc.LineTo(x, y)
	}
	dc.Stroke()
}

func drawDateLabels(dc *gg.Context, p plotArea, bars []quote.PriceBar, step float64) {
	dc.SetHexColor(colorAxis)
	idx := []int{0, len(bars) / 2, len(bars) - 1}
	last := -1
	for _, i := range idx {
		if i == last {
			continue
		}
		last = i
		dc.DrawStringAnchored(bars[i].Date.Format(quote.DateLayout), p.x(i, step), p.top+p.height+16, 0.5, 0.5)
	}
}

func drawLegend(dc *gg.Context, p plotArea, overlays []indicator.Series) {
	x := p.left + p.width
	for i := len(overlays) - 1; i >= 0; i-- {
		name := overlays[i].Name
		tw, _ := dc.MeasureString(name)
		x -= tw
		dc.SetHexColor(SeriesColor(name, i))
		dc.DrawStringAnchored(name, x, marginTop/2, 0, 0.5)
		x -= 16
	}
}

func encode(dc *gg.Context, w io.Writer) error {
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
