package calculator

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceBoard/internal/model"
	"PriceBoard/internal/timeframe"
)

func seriesOf(prices ...string) *model.PriceSeries {
	base := time.UnixMilli(1700000000000)
	s := &model.PriceSeries{Symbol: "BTCUSDT", Timeframe: timeframe.OneDay}
	for i, p := range prices {
		s.Samples = append(s.Samples, model.PriceSample{
			Time:  base.Add(time.Duration(i) * time.Minute),
			Price: decimal.RequireFromString(p),
		})
	}
	return s
}

func TestDeriveSummary_EndToEndExample(t *testing.T) {
	sum, err := DeriveSummary(seriesOf("100", "110", "90"))
	require.NoError(t, err)
	assert.Equal(t, "90.00", sum.Current.StringFixed(2))
	assert.Equal(t, "-10.00", sum.ChangePercent.StringFixed(2))
	assert.True(t, sum.ChangeDefined)
}

func TestDeriveSummary_Rounding(t *testing.T) {
	tests := []struct {
		name    string
		prices  []string
		current string
		change  string
	}{
		{"gain", []string{"30000", "30123.456"}, "30123.46", "0.41"},
		{"third", []string{"3", "4"}, "4.00", "33.33"},
		{"flat", []string{"42.1", "42.1"}, "42.10", "0.00"},
		{"single", []string{"64000.999"}, "64001.00", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := seriesOf(tt.prices...)
			sum, err := DeriveSummary(series)
			require.NoError(t, err)
			assert.Equal(t, tt.current, sum.Current.StringFixed(2))
			assert.Equal(t, tt.change, sum.ChangePercent.StringFixed(2))
			assert.True(t, sum.Current.Equal(series.Last().Price.Round(2)))
		})
	}
}

func TestDeriveSummary_ZeroBase(t *testing.T) {
	sum, err := DeriveSummary(seriesOf("0", "5"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrZeroBase))

	var de *DerivationError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 2, de.Samples)

	assert.Equal(t, "5.00", sum.Current.StringFixed(2))
	assert.True(t, sum.ChangePercent.IsZero())
	assert.False(t, sum.ChangeDefined)
}

func TestDeriveSummary_Empty(t *testing.T) {
	_, err := DeriveSummary(&model.PriceSeries{})
	assert.True(t, errors.Is(err, ErrEmptySeries))

	_, err = DeriveSummary(nil)
	assert.True(t, errors.Is(err, ErrEmptySeries))
}

func TestWindowRange(t *testing.T) {
	high, low, err := WindowRange(seriesOf("100", "110", "90", "95"))
	require.NoError(t, err)
	assert.Equal(t, "110", high.String())
	assert.Equal(t, "90", low.String())

	_, _, err = WindowRange(&model.PriceSeries{})
	assert.True(t, errors.Is(err, ErrEmptySeries))
}

func TestWindowPosition(t *testing.T) {
	d := decimal.RequireFromString
	assert.Equal(t, "0.5", WindowPosition(d("100"), d("110"), d("90")).String())
	assert.Equal(t, "0", WindowPosition(d("80"), d("110"), d("90")).String())
	assert.Equal(t, "1", WindowPosition(d("120"), d("110"), d("90")).String())
	assert.Equal(t, "0.5", WindowPosition(d("100"), d("100"), d("100")).String())
}
