package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"PriceBoard/internal/model"
	"PriceBoard/internal/timeframe"
)

const (
	DefaultBinanceURL = "https://api.binance.com"
	DefaultSymbol     = "BTCUSDT"

	klinesPath = "/api/v3/klines"

	// Kline row layout: [openTime, open, high, low, close, volume, closeTime, ...]
	colOpenTime = 0
	colClose    = 4
)

// BinanceFetcher implements Fetcher using the Binance public klines endpoint.
type BinanceFetcher struct {
	BaseURL string
	Symbol  string
	Client  *http.Client
	now     func() time.Time
}

// NewBinanceFetcher creates a fetcher with optional proxy support.
func NewBinanceFetcher(baseURL, symbol, proxyURL string, timeout time.Duration) *BinanceFetcher {
	if baseURL == "" {
		baseURL = DefaultBinanceURL
	}
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return &BinanceFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Symbol:  symbol,
		Client:  newHTTPClient(proxyURL, timeout),
		now:     time.Now,
	}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// FetchSeries issues one klines request for tf and normalizes the rows.
func (f *BinanceFetcher) FetchSeries(ctx context.Context, tf timeframe.Timeframe) (*model.PriceSeries, error) {
	spec := timeframe.Resolve(tf)

	q := url.Values{}
	q.Set("symbol", f.Symbol)
	q.Set("interval", spec.Granularity)
	q.Set("limit", strconv.Itoa(spec.Limit))
	endpoint := f.BaseURL + klinesPath + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Timeframe: tf, Op: "build request", Err: err}
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &FetchError{Timeframe: tf, Op: "request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Timeframe: tf, Op: "read body", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Timeframe: tf, Op: "request",
			Err: fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))}
	}

	samples, err := parseKlines(body)
	if err != nil {
		return nil, &FetchError{Timeframe: tf, Op: "decode", Err: err}
	}
	if len(samples) == 0 {
		return nil, &FetchError{Timeframe: tf, Op: "decode", Err: ErrEmptyResponse}
	}

	return &model.PriceSeries{
		Symbol:    f.Symbol,
		Timeframe: tf,
		Samples:   samples,
		FetchedAt: f.now(),
	}, nil
}

// parseKlines maps raw kline rows to samples ordered by time.
func parseKlines(body []byte) ([]model.PriceSample, error) {
	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	samples := make([]model.PriceSample, 0, len(rows))
	for i, row := range rows {
		if len(row) <= colClose {
			return nil, fmt.Errorf("row %d: expected at least %d fields, got %d", i, colClose+1, len(row))
		}
		openMs, err := strconv.ParseInt(unquote(row[colOpenTime]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d open time: %w", i, err)
		}
		price, err := decimal.NewFromString(unquote(row[colClose]))
		if err != nil {
			return nil, fmt.Errorf("row %d close price: %w", i, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("row %d close price: negative value %s", i, price)
		}
		samples = append(samples, model.PriceSample{
			Time:  time.UnixMilli(openMs),
			Price: price,
		})
	}
	// Ensure chronological order
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Time.Before(samples[j].Time) })
	return samples, nil
}

// unquote accepts a field encoded either as a JSON string or a bare number.
func unquote(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var out string
		if err := json.Unmarshal(raw, &out); err == nil {
			return out
		}
	}
	return s
}
