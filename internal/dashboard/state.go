package dashboard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"PriceBoard/internal/chart"
	"PriceBoard/internal/model"
	"PriceBoard/internal/timeframe"
)

// Tab identifies the active dashboard tab.
type Tab string

const (
	TabSummary    Tab = "summary"
	TabChart      Tab = "chart"
	TabStatistics Tab = "statistics"
	TabAnalysis   Tab = "analysis"
	TabSettings   Tab = "settings"

	DefaultTab = TabChart
)

// ErrUnknownTab is returned by ParseTab for values outside the tab set.
var ErrUnknownTab = errors.New("unknown tab")

var tabs = []Tab{TabSummary, TabChart, TabStatistics, TabAnalysis, TabSettings}

// Tabs returns every tab in display order.
func Tabs() []Tab {
	out := make([]Tab, len(tabs))
	copy(out, tabs)
	return out
}

// ParseTab validates a user-supplied tab name.
func ParseTab(s string) (Tab, error) {
	t := Tab(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range tabs {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
}

// State is what the shell sees. Series, Summary and Dataset always come from the
// same fetch; they are nil until the first successful fetch.
type State struct {
	Symbol    string
	Timeframe timeframe.Timeframe
	Tab       Tab
	Series    *model.PriceSeries
	Summary   *model.Summary
	Dataset   *chart.Dataset
	Loading   bool
	LastError string
	UpdatedAt time.Time
}

// HasData reports whether a series has been applied.
func (s State) HasData() bool { return s.Series != nil && s.Summary != nil }

// Listener receives the state after every transition.
type Listener func(State)
