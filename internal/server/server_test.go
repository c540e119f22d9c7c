package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"PriceBoard/internal/chart"
	"PriceBoard/internal/dashboard"
	"PriceBoard/internal/model"
	"PriceBoard/internal/timeframe"
)

type fakeController struct {
	mu        sync.Mutex
	state     dashboard.State
	listeners []dashboard.Listener
	tfs       []timeframe.Timeframe
	tabs      []dashboard.Tab
}

func (f *fakeController) Snapshot() dashboard.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeController) SelectTimeframe(tf timeframe.Timeframe) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tfs = append(f.tfs, tf)
}

func (f *fakeController) SelectTab(tab dashboard.Tab) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tabs = append(f.tabs, tab)
}

func (f *fakeController) Subscribe(l dashboard.Listener) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, l)
	return func() {}
}

func (f *fakeController) emit(s dashboard.State) {
	f.mu.Lock()
	f.state = s
	ls := append([]dashboard.Listener(nil), f.listeners...)
	f.mu.Unlock()
	for _, l := range ls {
		l(s)
	}
}

func loadedState() dashboard.State {
	t0 := time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC)
	series := &model.PriceSeries{
		Symbol:    "BTCUSDT",
		Timeframe: timeframe.OneWeek,
		Samples: []model.PriceSample{
			{Time: t0, Price: decimal.NewFromInt(100)},
			{Time: t0.Add(time.Hour), Price: decimal.NewFromInt(110)},
			{Time: t0.Add(2 * time.Hour), Price: decimal.NewFromInt(90)},
		},
	}
	return dashboard.State{
		Symbol:    "BTCUSDT",
		Timeframe: timeframe.OneWeek,
		Tab:       dashboard.TabChart,
		Series:    series,
		Summary:   &model.Summary{Current: decimal.NewFromInt(90), ChangePercent: decimal.RequireFromString("-10"), ChangeDefined: true},
		Dataset:   chart.Adapt(series, chart.LabelFormat{Location: time.UTC}),
	}
}

func newTestServer(t *testing.T) (*Server, *fakeController, *chart.MemoryTarget) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := &fakeController{state: dashboard.State{Symbol: "BTCUSDT", Timeframe: timeframe.OneDay, Tab: dashboard.TabChart, Loading: true}}
	img := chart.NewMemoryTarget("test")
	s := New(ctrl, img, zap.NewNop())
	t.Cleanup(s.Close)
	return s, ctrl, img
}

func do(s *Server, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestGetState(t *testing.T) {
	s, ctrl, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/api/state")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	var v StateView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.True(t, v.Loading)
	assert.Equal(t, "1d", v.Timeframe)
	assert.Nil(t, v.Current)
	assert.Zero(t, v.Samples)

	ctrl.emit(loadedState())
	w = do(s, http.MethodGet, "/api/state")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	require.NotNil(t, v.Current)
	assert.True(t, decimal.NewFromInt(90).Equal(*v.Current))
	assert.True(t, decimal.NewFromInt(-10).Equal(*v.ChangePercent))
	assert.True(t, v.ChangeDefined)
	assert.Equal(t, 3, v.Samples)
	assert.Len(t, v.DatasetLabels, 3)
	assert.Len(t, v.DatasetValues, 3)
	assert.Equal(t, chart.DefaultTitle, v.DatasetTitle)
}

func TestPostTimeframe(t *testing.T) {
	s, ctrl, _ := newTestServer(t)

	w := do(s, http.MethodPost, "/api/timeframe/1W")
	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, ctrl.tfs, 1)
	assert.Equal(t, timeframe.OneWeek, ctrl.tfs[0])

	w = do(s, http.MethodPost, "/api/timeframe/2d")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, ctrl.tfs, 1)
}

func TestPostTab(t *testing.T) {
	s, ctrl, _ := newTestServer(t)

	assert.Equal(t, http.StatusAccepted, do(s, http.MethodPost, "/api/tab/analysis").Code)
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodPost, "/api/tab/orders").Code)
	require.Len(t, ctrl.tabs, 1)
	assert.Equal(t, dashboard.TabAnalysis, ctrl.tabs[0])
}

func TestGetTimeframes(t *testing.T) {
	s, _, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/api/timeframes")
	require.Equal(t, http.StatusOK, w.Code)
	var views []TimeframeView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, len(timeframe.All()))
	assert.Equal(t, TimeframeView{Timeframe: "1d", Label: "1D", Granularity: "1m", Limit: 1440}, views[0])
	assert.Equal(t, "max", views[len(views)-1].Timeframe)
}

func TestGetChart(t *testing.T) {
	s, _, img := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/chart.png").Code)

	require.NoError(t, img.Draw([]byte("\x89PNG fake")))
	w := do(s, http.MethodGet, "/chart.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG fake", w.Body.String())

	require.NoError(t, img.Clear())
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/chart.png").Code)
}

func TestWebSocketPushesState(t *testing.T) {
	s, ctrl, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var v StateView
	require.NoError(t, conn.ReadJSON(&v))
	assert.True(t, v.Loading)
	assert.Equal(t, "1d", v.Timeframe)

	require.Eventually(t, func() bool { return s.hub.ClientCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	ctrl.emit(loadedState())
	require.NoError(t, conn.ReadJSON(&v))
	assert.False(t, v.Loading)
	assert.Equal(t, "1w", v.Timeframe)
	assert.Equal(t, 3, v.Samples)
}
