package calculator

import (
	"github.com/shopspring/decimal"

	"PriceBoard/internal/model"
)

// WindowRange scans the whole series and returns the highest and lowest price.
func WindowRange(series *model.PriceSeries) (high, low decimal.Decimal, err error) {
	if series.Len() == 0 {
		return decimal.Zero, decimal.Zero, &DerivationError{Reason: ErrEmptySeries}
	}
	high = series.Samples[0].Price
	low = high
	for _, s := range series.Samples[1:] {
		if s.Price.GreaterThan(high) {
			high = s.Price
		}
		if s.Price.LessThan(low) {
			low = s.Price
		}
	}
	return high, low, nil
}

// WindowPosition returns where current sits within [low, high] (0.0~1.0).
func WindowPosition(current, high, low decimal.Decimal) decimal.Decimal {
	if high.LessThanOrEqual(low) {
		return decimal.NewFromFloat(0.5)
	}
	pos := current.Sub(low).Div(high.Sub(low))
	if pos.IsNegative() {
		return decimal.Zero
	}
	if pos.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return pos
}
