package chart

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrEmptyDataset is returned for a nil or empty dataset.
var ErrEmptyDataset = errors.New("chart needs at least one point")

// singlePointPad widens the x axis around a lone sample.
const singlePointPad = time.Minute

// Instance is a live chart bound to one target.
type Instance interface {
	Destroy() error
}

// Renderer creates chart instances. It is the only way instances come to exist.
type Renderer interface {
	Create(target Target, ds *Dataset) (Instance, error)
}

var (
	lineColor       = drawing.Color{R: 76, G: 175, B: 80, A: 255}
	fillColor       = drawing.Color{R: 76, G: 175, B: 80, A: 26}
	annotationColor = drawing.Color{R: 76, G: 175, B: 80, A: 178}
)

// PNGRenderer draws a line chart with go-chart and writes the PNG onto the target.
type PNGRenderer struct {
	Width      int
	Height     int
	TimeLayout string // x-axis tick layout
}

// NewPNGRenderer returns a renderer with the given canvas size.
func NewPNGRenderer(width, height int) *PNGRenderer {
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 400
	}
	return &PNGRenderer{Width: width, Height: height, TimeLayout: "01-02 15:04"}
}

func (r *PNGRenderer) Create(target Target, ds *Dataset) (Instance, error) {
	if ds == nil || ds.Len() < 1 {
		return nil, ErrEmptyDataset
	}
	graph := r.build(ds)

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	if err := target.Draw(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("draw on %s: %w", target.ID(), err)
	}
	return &pngInstance{target: target}, nil
}

func (r *PNGRenderer) build(ds *Dataset) chart.Chart {
	ys := make([]float64, ds.Len())
	lo, hi := 0.0, 0.0
	for i, v := range ds.Values {
		f := v.InexactFloat64()
		ys[i] = f
		if i == 0 || f < lo {
			lo = f
		}
		if i == 0 || f > hi {
			hi = f
		}
	}
	ann := ds.Annotation.InexactFloat64()
	first, last := ds.Times[0], ds.Times[len(ds.Times)-1]

	var xRange, yRange chart.Range
	if lo == hi {
		// flat series; go-chart rejects a zero-height axis
		yRange = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	dot := 0.0
	if first.Equal(last) {
		xRange = &chart.ContinuousRange{
			Min: chart.TimeToFloat64(first.Add(-singlePointPad)),
			Max: chart.TimeToFloat64(last.Add(singlePointPad)),
		}
		dot = 4
	}

	return chart.Chart{
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 16, Right: 72, Bottom: 12}},
		XAxis: chart.XAxis{
			Name:           "Time",
			Range:          xRange,
			ValueFormatter: chart.TimeValueFormatterWithFormat(r.TimeLayout),
		},
		YAxis: chart.YAxis{
			Name:  ds.Title,
			Range: yRange,
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    ds.Title,
				XValues: ds.Times,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 2,
					FillColor:   fillColor,
					DotColor:    lineColor,
					DotWidth:    dot,
				},
			},
			chart.TimeSeries{
				Name:    "current",
				XValues: []time.Time{first, last},
				YValues: []float64{ann, ann},
				Style: chart.Style{
					StrokeColor: annotationColor,
					StrokeWidth: 2,
				},
			},
			chart.AnnotationSeries{
				Annotations: []chart.Value2{{
					XValue: chart.TimeToFloat64(last),
					YValue: ann,
					Label:  fmt.Sprintf("$%s", ds.Annotation.StringFixed(2)),
				}},
				Style: chart.Style{
					FillColor:   annotationColor,
					FontColor:   drawing.ColorWhite,
					StrokeColor: annotationColor,
				},
			},
		},
	}
}

type pngInstance struct {
	target    Target
	mu        sync.Mutex
	destroyed bool
}

// Destroy clears the target once; later calls are no-ops.
func (i *pngInstance) Destroy() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return nil
	}
	i.destroyed = true
	return i.target.Clear()
}
