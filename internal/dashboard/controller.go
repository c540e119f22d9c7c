package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"PriceBoard/internal/calculator"
	"PriceBoard/internal/chart"
	"PriceBoard/internal/collector"
	"PriceBoard/internal/model"
	"PriceBoard/internal/recorder"
	"PriceBoard/internal/timeframe"
)

// request tags a fetch with the selection it was issued for.
type request struct {
	ID        string
	Seq       uint64
	Timeframe timeframe.Timeframe
	Started   time.Time
}

type selectTimeframeEvent struct{ tf timeframe.Timeframe }

type selectTabEvent struct{ tab Tab }

type fetchResultEvent struct {
	req    request
	series *model.PriceSeries
	err    error
}

// Options configures a Controller. Zero values are usable.
type Options struct {
	Symbol   string
	Labels   chart.LabelFormat
	Recorder recorder.Recorder
	Logger   *zap.Logger
	Now      func() time.Time
}

// Controller owns the dashboard state. All state transitions run on the
// goroutine that calls Run; fetches run in their own goroutines and post tagged
// results back. Only the result of the latest request is ever applied.
type Controller struct {
	fetcher collector.Fetcher
	charts  *chart.Manager
	target  chart.Target
	rec     recorder.Recorder
	log     *zap.Logger
	labels  chart.LabelFormat
	now     func() time.Time

	events chan any
	done   chan struct{}

	// owned by the Run goroutine
	state       State
	seq         uint64
	cancelFetch context.CancelFunc

	mu        sync.RWMutex
	snapshot  State
	listeners []subscription
	nextID    int
}

type subscription struct {
	id int
	fn Listener
}

// NewController creates a controller in its initial state: default timeframe,
// chart tab, no series. Nothing is fetched until Run.
func NewController(f collector.Fetcher, charts *chart.Manager, target chart.Target, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rec := opts.Recorder
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	c := &Controller{
		fetcher:   f,
		charts:    charts,
		target:    target,
		rec:       rec,
		log:       log.With(zap.String("component", "dashboard")),
		labels:    opts.Labels,
		now:       now,
		events:    make(chan any, 64),
		done:      make(chan struct{}),
	}
	c.state = State{
		Symbol:    opts.Symbol,
		Timeframe: timeframe.Default,
		Tab:       DefaultTab,
		UpdatedAt: now(),
	}
	c.snapshot = c.state
	return c
}

// Subscribe registers l and returns a function that removes it. Listeners are
// called synchronously on the Run goroutine, in subscription order, and must
// not block.
func (c *Controller) Subscribe(l Listener) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners = append(c.listeners, subscription{id: id, fn: l})
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, sub := range c.listeners {
			if sub.id == id {
				c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns the latest published state. Safe from any goroutine.
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// SelectTimeframe asks for tf to become the current timeframe.
func (c *Controller) SelectTimeframe(tf timeframe.Timeframe) {
	c.post(selectTimeframeEvent{tf: tf})
}

// SelectTab switches the active tab.
func (c *Controller) SelectTab(tab Tab) {
	c.post(selectTabEvent{tab: tab})
}

func (c *Controller) post(ev any) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// Run mounts the dashboard: it publishes the initial state, fetches the default
// timeframe and processes events until ctx is cancelled. On return the in-flight
// fetch is cancelled and the chart is torn down.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	c.log.Info("dashboard mounted",
		zap.String("timeframe", c.state.Timeframe.String()), zap.String("tab", string(c.state.Tab)))

	c.state.Loading = true
	c.startFetch(ctx)
	c.publish()

	for {
		select {
		case <-ctx.Done():
			c.unmount()
			return nil
		case ev := <-c.events:
			c.handle(ctx, ev)
		}
	}
}

func (c *Controller) handle(ctx context.Context, ev any) {
	switch e := ev.(type) {
	case selectTimeframeEvent:
		c.onSelectTimeframe(ctx, e.tf)
	case selectTabEvent:
		c.onSelectTab(e.tab)
	case fetchResultEvent:
		c.onFetchResult(e)
	default:
		c.log.Error("unknown event", zap.String("type", fmt.Sprintf("%T", ev)))
	}
}

func (c *Controller) onSelectTimeframe(ctx context.Context, tf timeframe.Timeframe) {
	if tf == c.state.Timeframe {
		return
	}
	c.log.Info("timeframe selected", zap.String("from", c.state.Timeframe.String()), zap.String("to", tf.String()))
	c.state.Timeframe = tf
	c.state.Loading = true
	c.startFetch(ctx)
	c.publish()
}

func (c *Controller) onSelectTab(tab Tab) {
	if tab == c.state.Tab {
		return
	}
	prev := c.state.Tab
	c.state.Tab = tab
	switch {
	case prev == TabChart:
		if err := c.charts.Teardown(c.target); err != nil {
			c.log.Warn("teardown chart", zap.Error(err))
		}
	case tab == TabChart && c.state.Dataset != nil:
		if err := c.charts.Render(c.state.Dataset, c.target); err != nil {
			c.log.Error("render chart", zap.Error(err))
		}
	}
	c.publish()
}

// startFetch supersedes any in-flight request and issues a new one for the
// current timeframe.
func (c *Controller) startFetch(ctx context.Context) {
	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	c.seq++
	req := request{
		ID:        uuid.NewString(),
		Seq:       c.seq,
		Timeframe: c.state.Timeframe,
		Started:   c.now(),
	}
	fctx, cancel := context.WithCancel(ctx)
	c.cancelFetch = cancel

	c.log.Debug("fetch started", zap.String("request_id", req.ID),
		zap.String("timeframe", req.Timeframe.String()), zap.String("fetcher", c.fetcher.Name()))

	go func() {
		series, err := c.fetcher.FetchSeries(fctx, req.Timeframe)
		select {
		case c.events <- fetchResultEvent{req: req, series: series, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (c *Controller) isCurrent(req request) bool {
	return req.Seq == c.seq && req.Timeframe == c.state.Timeframe
}

func (c *Controller) onFetchResult(res fetchResultEvent) {
	req := res.req
	evt := &recorder.FetchEvent{
		RequestID: req.ID,
		Timeframe: req.Timeframe.String(),
		Duration:  c.now().Sub(req.Started),
		At:        c.now(),
	}

	if !c.isCurrent(req) {
		c.log.Debug("stale response discarded", zap.String("request_id", req.ID),
			zap.String("timeframe", req.Timeframe.String()), zap.String("current", c.state.Timeframe.String()))
		evt.Status = recorder.StatusStale
		evt.Samples = res.series.Len()
		if res.err != nil {
			evt.Error = res.err.Error()
		}
		c.record(evt)
		return
	}
	c.cancelFetch()
	c.cancelFetch = nil

	err := res.err
	if err == nil && res.series.Len() == 0 {
		err = &collector.FetchError{Timeframe: req.Timeframe, Op: "decode", Err: collector.ErrEmptyResponse}
	}
	if err != nil {
		c.log.Warn("fetch failed", zap.String("request_id", req.ID),
			zap.String("timeframe", req.Timeframe.String()), zap.Error(err))
		c.state.Loading = false
		c.state.LastError = err.Error()
		evt.Status = recorder.StatusFailed
		evt.Error = err.Error()
		c.record(evt)
		c.publish()
		return
	}

	c.apply(res.series, evt)
	c.record(evt)
	c.publish()
}

// apply derives Summary and Dataset from series and re-renders the chart when
// the chart tab is active.
func (c *Controller) apply(series *model.PriceSeries, evt *recorder.FetchEvent) {
	sum, err := calculator.DeriveSummary(series)
	switch {
	case errors.Is(err, calculator.ErrZeroBase):
		c.log.Warn("change percent undefined", zap.Error(err))
	case err != nil:
		c.log.Error("derive summary", zap.Error(err))
	}
	ds := chart.Adapt(series, c.labels)

	c.state.Series = series
	c.state.Summary = &sum
	c.state.Dataset = ds
	c.state.Loading = false
	c.state.LastError = ""
	if c.state.Symbol == "" {
		c.state.Symbol = series.Symbol
	}

	evt.Status = recorder.StatusOK
	evt.Samples = series.Len()
	evt.Current = sum.Current
	evt.ChangePercent = sum.ChangePercent

	if c.state.Tab != TabChart {
		return
	}
	if err := c.charts.Render(ds, c.target); err != nil {
		c.log.Error("render chart", zap.Error(err))
		evt.Status = recorder.StatusRenderFailed
		evt.Error = err.Error()
	}
}

func (c *Controller) unmount() {
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
	if err := c.charts.Teardown(c.target); err != nil {
		c.log.Warn("teardown chart", zap.Error(err))
	}
	c.log.Info("dashboard unmounted")
}

func (c *Controller) record(evt *recorder.FetchEvent) {
	if err := c.rec.RecordFetch(evt); err != nil {
		c.log.Error("record fetch event", zap.Error(err))
	}
}

// publish copies the state for readers and notifies every listener.
func (c *Controller) publish() {
	c.state.UpdatedAt = c.now()

	c.mu.Lock()
	c.snapshot = c.state
	ls := make([]Listener, 0, len(c.listeners))
	for _, sub := range c.listeners {
		ls = append(ls, sub.fn)
	}
	c.mu.Unlock()

	for _, l := range ls {
		l(c.state)
	}
}
