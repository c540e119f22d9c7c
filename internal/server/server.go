package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"PriceBoard/internal/chart"
	"PriceBoard/internal/dashboard"
	"PriceBoard/internal/timeframe"
)

const RequestIDHeader = "X-Request-ID"

// Controller is the part of the dashboard the HTTP shell drives.
type Controller interface {
	Snapshot() dashboard.State
	SelectTimeframe(tf timeframe.Timeframe)
	SelectTab(tab dashboard.Tab)
	Subscribe(l dashboard.Listener) func()
}

// Server exposes the dashboard over HTTP and pushes every state change to
// websocket clients.
type Server struct {
	ctrl        Controller
	chart       chart.Snapshotter
	hub         *Hub
	log         *zap.Logger
	engine      *gin.Engine
	unsubscribe func()
}

// New builds the router and subscribes to ctrl. img may be nil when the chart
// is not kept anywhere readable.
func New(ctrl Controller, img chart.Snapshotter, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		ctrl:  ctrl,
		chart: img,
		hub:   NewHub(log),
		log:   log.With(zap.String("component", "server")),
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestID())
	api := r.Group("/api")
	api.GET("/state", s.getState)
	api.GET("/timeframes", s.getTimeframes)
	api.POST("/timeframe/:tf", s.postTimeframe)
	api.POST("/tab/:tab", s.postTab)
	r.GET("/chart.png", s.getChart)
	r.GET("/ws", s.getWebSocket)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine = r

	s.unsubscribe = ctrl.Subscribe(s.onState)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run drives the websocket hub until ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	s.hub.Run(ctx)
}

// Close stops receiving state changes.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *Server) onState(st dashboard.State) {
	msg, err := json.Marshal(newStateView(st))
	if err != nil {
		s.log.Error("marshal state", zap.Error(err))
		return
	}
	s.hub.Broadcast(msg)
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		s.log.Debug("request received",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
		)
		c.Next()
	}
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, newStateView(s.ctrl.Snapshot()))
}

func (s *Server) getTimeframes(c *gin.Context) {
	c.JSON(http.StatusOK, timeframeViews())
}

func (s *Server) postTimeframe(c *gin.Context) {
	tf, err := timeframe.Parse(c.Param("tf"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.ctrl.SelectTimeframe(tf)
	c.JSON(http.StatusAccepted, gin.H{"timeframe": tf.String()})
}

func (s *Server) postTab(c *gin.Context) {
	tab, err := dashboard.ParseTab(c.Param("tab"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.ctrl.SelectTab(tab)
	c.JSON(http.StatusAccepted, gin.H{"tab": string(tab)})
}

func (s *Server) getChart(c *gin.Context) {
	if s.chart == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chart not available"})
		return
	}
	img, ok := s.chart.Snapshot()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "chart not rendered"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", img)
}

func (s *Server) getWebSocket(c *gin.Context) {
	greeting, err := json.Marshal(newStateView(s.ctrl.Snapshot()))
	if err != nil {
		s.log.Error("marshal state", zap.Error(err))
		greeting = nil
	}
	s.hub.Serve(c.Writer, c.Request, greeting)
}
