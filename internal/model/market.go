package model

import (
	"time"

	"github.com/shopspring/decimal"

	"PriceBoard/internal/timeframe"
)

// PriceSample is one (timestamp, price) observation taken from a provider row.
type PriceSample struct {
	Time  time.Time
	Price decimal.Decimal
}

// PriceSeries is an ordered, non-empty set of samples for one timeframe.
// A series is replaced wholesale on every fetch and never mutated afterwards.
type PriceSeries struct {
	Symbol    string
	Timeframe timeframe.Timeframe
	Samples   []PriceSample
	FetchedAt time.Time
}

// Len returns the number of samples.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Samples)
}

// First returns the earliest sample. The series must be non-empty.
func (s *PriceSeries) First() PriceSample { return s.Samples[0] }

// Last returns the latest sample. The series must be non-empty.
func (s *PriceSeries) Last() PriceSample { return s.Samples[len(s.Samples)-1] }

// Summary is derived from a PriceSeries and recomputed from scratch on every change.
type Summary struct {
	Current       decimal.Decimal
	ChangePercent decimal.Decimal
	// ChangeDefined is false when the first sample is zero and the change has no meaning.
	ChangeDefined bool
}
