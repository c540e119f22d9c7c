package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"PriceBoard/internal/model"
	"PriceBoard/internal/timeframe"
)

// ErrEmptyResponse is returned when the provider answers with no rows.
var ErrEmptyResponse = errors.New("empty response")

// Fetcher retrieves one price series per call. Implementations make a single
// attempt and never retry.
type Fetcher interface {
	FetchSeries(ctx context.Context, tf timeframe.Timeframe) (*model.PriceSeries, error)
	Name() string
}

// FetchError wraps every failure of a fetch: transport, status, decode, empty response.
type FetchError struct {
	Timeframe timeframe.Timeframe
	Op        string
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.Timeframe, e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// newHTTPClient returns a client with optional proxy support.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
