package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"PriceBoard/internal/model"
)

var (
	// ErrEmptySeries means there is nothing to derive from.
	ErrEmptySeries = errors.New("empty series")
	// ErrZeroBase means the first sample is zero and the change percent is undefined.
	ErrZeroBase = errors.New("first sample price is zero")
)

var hundred = decimal.NewFromInt(100)

// DerivationError reports a degenerate series.
type DerivationError struct {
	Samples int
	Reason  error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("derive summary (%d samples): %v", e.Samples, e.Reason)
}

func (e *DerivationError) Unwrap() error { return e.Reason }

// DeriveSummary computes the current price and the change since the first sample,
// both rounded to two decimal places.
//
// A zero first price yields a usable Summary with ChangePercent 0 and
// ChangeDefined false, returned together with a DerivationError wrapping ErrZeroBase.
func DeriveSummary(series *model.PriceSeries) (model.Summary, error) {
	if series.Len() == 0 {
		return model.Summary{}, &DerivationError{Reason: ErrEmptySeries}
	}
	first := series.First().Price
	last := series.Last().Price

	sum := model.Summary{Current: last.Round(2)}
	if first.IsZero() {
		sum.ChangePercent = decimal.Zero
		return sum, &DerivationError{Samples: series.Len(), Reason: ErrZeroBase}
	}
	sum.ChangePercent = last.Sub(first).Div(first).Mul(hundred).Round(2)
	sum.ChangeDefined = true
	return sum, nil
}
