package chart

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceBoard/internal/model"
	"PriceBoard/internal/timeframe"
)

var t0 = time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)

func seriesOf(prices ...string) *model.PriceSeries {
	s := &model.PriceSeries{Symbol: "BTCUSDT", Timeframe: timeframe.OneDay}
	for i, p := range prices {
		s.Samples = append(s.Samples, model.PriceSample{
			Time:  t0.Add(time.Duration(i) * time.Minute),
			Price: decimal.RequireFromString(p),
		})
	}
	return s
}

func TestAdapt_EndToEndExample(t *testing.T) {
	ds := Adapt(seriesOf("100", "110", "90"), LabelFormat{Location: time.UTC})
	require.NotNil(t, ds)

	values := make([]string, len(ds.Values))
	for i, v := range ds.Values {
		values[i] = v.String()
	}
	assert.Equal(t, []string{"100", "110", "90"}, values)
	assert.Equal(t, "90", ds.Annotation.String())
	assert.Equal(t, DefaultTitle, ds.Title)
	assert.Equal(t, "3/9/2024, 2:05:00 PM", ds.Labels[0])
}

func TestAdapt_LengthsAndAnnotation(t *testing.T) {
	series := seriesOf("64000.12", "64010.5", "63999.999", "64123.4567")
	ds := Adapt(series, LabelFormat{})
	require.NotNil(t, ds)

	assert.Len(t, ds.Labels, series.Len())
	assert.Len(t, ds.Values, series.Len())
	assert.Len(t, ds.Times, series.Len())
	assert.True(t, ds.Annotation.Equal(ds.Values[ds.Len()-1]))
	// no precision loss between the raw sample and the annotation
	assert.Equal(t, "64123.4567", ds.Annotation.String())
}

func TestAdapt_Idempotent(t *testing.T) {
	series := seriesOf("1", "2", "3")
	lf := LabelFormat{Layout: "2006-01-02 15:04", Location: time.UTC}
	assert.Equal(t, Adapt(series, lf), Adapt(series, lf))
}

func TestAdapt_CustomLayoutAndLocation(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	ds := Adapt(seriesOf("1"), LabelFormat{Layout: "2006-01-02 15:04", Location: loc})
	assert.Equal(t, "2024-03-09 22:05", ds.Labels[0])
}

func TestAdapt_Empty(t *testing.T) {
	assert.Nil(t, Adapt(&model.PriceSeries{}, LabelFormat{}))
}
