package timeframe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Table(t *testing.T) {
	tests := []struct {
		tf          Timeframe
		granularity string
		limit       int
	}{
		{OneDay, "1m", 1440},
		{ThreeDays, "15m", 168},
		{OneWeek, "1h", 168},
		{OneMonth, "4h", 168},
		{SixMonths, "1d", 168},
		{OneYear, "1w", 168},
		{Max, "1M", 168},
	}
	for _, tt := range tests {
		t.Run(string(tt.tf), func(t *testing.T) {
			assert.Equal(t, Spec{Granularity: tt.granularity, Limit: tt.limit}, Resolve(tt.tf))
		})
	}
}

func TestResolve_PanicsOnUnknown(t *testing.T) {
	assert.Panics(t, func() { Resolve("2d") })
}

func TestParse(t *testing.T) {
	tf, err := Parse(" 1W ")
	require.NoError(t, err)
	assert.Equal(t, OneWeek, tf)

	tf, err = Parse("MAX")
	require.NoError(t, err)
	assert.Equal(t, Max, tf)

	_, err = Parse("2d")
	assert.True(t, errors.Is(err, ErrUnknown))
}

func TestAll_OrderAndCopy(t *testing.T) {
	all := All()
	require.Len(t, all, 7)
	assert.Equal(t, OneDay, all[0])
	assert.Equal(t, Max, all[6])

	all[0] = Max
	assert.Equal(t, OneDay, All()[0], "All must return a fresh slice")
}

func TestDefault(t *testing.T) {
	assert.Equal(t, OneDay, Default)
	assert.Equal(t, "1D", Default.Label())
}
