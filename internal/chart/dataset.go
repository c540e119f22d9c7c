package chart

import (
	"time"

	"github.com/shopspring/decimal"

	"PriceBoard/internal/model"
)

const (
	DefaultTitle = "Price in USD"
	// DefaultLabelLayout mirrors the en-US toLocaleString shape.
	DefaultLabelLayout = "1/2/2006, 3:04:05 PM"
)

// Dataset is the renderer input derived 1:1 from a PriceSeries.
type Dataset struct {
	Title      string
	Labels     []string
	Times      []time.Time
	Values     []decimal.Decimal
	Annotation decimal.Decimal // latest price, drawn as a horizontal reference line
}

// Len returns the number of points.
func (d *Dataset) Len() int { return len(d.Values) }

// LabelFormat controls how sample times become display labels.
type LabelFormat struct {
	Layout   string
	Location *time.Location
}

func (f LabelFormat) format(t time.Time) string {
	layout := f.Layout
	if layout == "" {
		layout = DefaultLabelLayout
	}
	if f.Location != nil {
		t = t.In(f.Location)
	}
	return t.Format(layout)
}

// Adapt builds the dataset for a non-empty series. It has no side effects and
// returns nil for an empty series.
func Adapt(series *model.PriceSeries, lf LabelFormat) *Dataset {
	n := series.Len()
	if n == 0 {
		return nil
	}
	ds := &Dataset{
		Title:  DefaultTitle,
		Labels: make([]string, n),
		Times:  make([]time.Time, n),
		Values: make([]decimal.Decimal, n),
	}
	for i, s := range series.Samples {
		ds.Labels[i] = lf.format(s.Time)
		ds.Times[i] = s.Time
		ds.Values[i] = s.Price
	}
	ds.Annotation = ds.Values[n-1]
	return ds
}
