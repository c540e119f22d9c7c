package timeframe

import (
	"errors"
	"fmt"
	"strings"
)

// Timeframe is the observation window selected by the user.
type Timeframe string

const (
	OneDay    Timeframe = "1d"
	ThreeDays Timeframe = "3d"
	OneWeek   Timeframe = "1w"
	OneMonth  Timeframe = "1m"
	SixMonths Timeframe = "6m"
	OneYear   Timeframe = "1y"
	Max       Timeframe = "max"

	// Default is the timeframe selected on mount.
	Default = OneDay
)

// defaultCap is the sample limit for every timeframe except 1d.
const defaultCap = 168

// ErrUnknown is returned by Parse for values outside the enumeration.
var ErrUnknown = errors.New("unknown timeframe")

// Spec holds the provider query parameters for a timeframe.
type Spec struct {
	Granularity string // provider interval token
	Limit       int    // number of samples requested
}

var table = map[Timeframe]Spec{
	OneDay:    {Granularity: "1m", Limit: 1440},
	ThreeDays: {Granularity: "15m", Limit: defaultCap},
	OneWeek:   {Granularity: "1h", Limit: defaultCap},
	OneMonth:  {Granularity: "4h", Limit: defaultCap},
	SixMonths: {Granularity: "1d", Limit: defaultCap},
	OneYear:   {Granularity: "1w", Limit: defaultCap},
	Max:       {Granularity: "1M", Limit: defaultCap},
}

var order = []Timeframe{OneDay, ThreeDays, OneWeek, OneMonth, SixMonths, OneYear, Max}

// Resolve returns the provider parameters for tf. It panics for values outside
// the enumeration; untrusted input goes through Parse first.
func Resolve(tf Timeframe) Spec {
	s, ok := table[tf]
	if !ok {
		panic(fmt.Sprintf("timeframe: resolve %q: not in table", string(tf)))
	}
	return s
}

// Parse validates a user-supplied timeframe.
func Parse(s string) (Timeframe, error) {
	tf := Timeframe(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := table[tf]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknown, s)
	}
	return tf, nil
}

// All returns every timeframe in display order.
func All() []Timeframe {
	out := make([]Timeframe, len(order))
	copy(out, order)
	return out
}

// Label is the upper-case button caption, e.g. "1W".
func (tf Timeframe) Label() string { return strings.ToUpper(string(tf)) }

func (tf Timeframe) String() string { return string(tf) }
