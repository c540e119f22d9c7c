package recorder

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fetch cycle outcomes.
const (
	StatusOK           = "OK"
	StatusFailed       = "FAILED"
	StatusStale        = "STALE"
	StatusRenderFailed = "RENDER_FAILED"
)

// FetchEvent describes one completed fetch cycle. Price samples are not stored.
type FetchEvent struct {
	RequestID     string
	Timeframe     string
	Status        string
	Samples       int
	Current       decimal.Decimal
	ChangePercent decimal.Decimal
	Error         string
	Duration      time.Duration
	At            time.Time
}

// Recorder persists the fetch event log for later analysis.
type Recorder interface {
	RecordFetch(evt *FetchEvent) error
	Close() error
}
