package collector

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"PriceBoard/internal/model"
	"PriceBoard/internal/timeframe"
)

var granularityStep = map[string]time.Duration{
	"1m":  time.Minute,
	"15m": 15 * time.Minute,
	"1h":  time.Hour,
	"4h":  4 * time.Hour,
	"1d":  24 * time.Hour,
	"1w":  7 * 24 * time.Hour,
	"1M":  30 * 24 * time.Hour,
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Symbol  string
	Price   float64
	Samples []model.PriceSample // returned as-is when set
	Err     error               // returned wrapped in a FetchError when set
	Now     func() time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(ctx context.Context, tf timeframe.Timeframe) (*model.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Timeframe: tf, Op: "request", Err: err}
	}
	if m.Err != nil {
		return nil, &FetchError{Timeframe: tf, Op: "request", Err: m.Err}
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	samples := m.Samples
	if samples == nil {
		samples = generateMockSamples(m.Price, tf, now())
	}
	if len(samples) == 0 {
		return nil, &FetchError{Timeframe: tf, Op: "decode", Err: ErrEmptyResponse}
	}
	symbol := m.Symbol
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return &model.PriceSeries{
		Symbol:    symbol,
		Timeframe: tf,
		Samples:   samples,
		FetchedAt: now(),
	}, nil
}

func generateMockSamples(basePrice float64, tf timeframe.Timeframe, end time.Time) []model.PriceSample {
	spec := timeframe.Resolve(tf)
	step := granularityStep[spec.Granularity]
	count := spec.Limit
	start := end.Add(-time.Duration(count) * step).Truncate(step)
	out := make([]model.PriceSample, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		out[i] = model.PriceSample{
			Time:  start.Add(time.Duration(i) * step),
			Price: decimal.NewFromFloat(p).Round(2),
		}
	}
	return out
}
