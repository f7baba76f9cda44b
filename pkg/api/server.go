// Package api provides Eidetic's HTTP surface: project management, the
// voice-runtime webhook, the report endpoint, and the events websocket.
// Grounded on cmd/tarsy/main.go, the only one of the teacher's two
// competing API stacks actually wired into the real binary — gin, not the
// teacher's echo/v5 server, which this package does not carry.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shipaleks/eidetic/pkg/adapter"
	"github.com/shipaleks/eidetic/pkg/events"
	"github.com/shipaleks/eidetic/pkg/pipeline"
	"github.com/shipaleks/eidetic/pkg/store"
	"github.com/shipaleks/eidetic/pkg/synth"
)

// Server is Eidetic's HTTP API server.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server

	store     *store.Store
	pipeline  *pipeline.Pipeline
	adapter   *adapter.Adapter
	synth     *synth.Synthesizer
	bus       *events.Bus
}

// NewServer wires every route onto a fresh gin.Engine.
func NewServer(st *store.Store, pl *pipeline.Pipeline, ad *adapter.Adapter, sy *synth.Synthesizer, bus *events.Bus) *Server {
	s := &Server{
		router:   gin.New(),
		store:    st,
		pipeline: pl,
		adapter:  ad,
		synth:    sy,
		bus:      bus,
	}
	s.router.Use(gin.Recovery(), securityHeaders())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)

	v1 := s.router.Group("/api/v1")
	v1.POST("/projects", s.createProjectHandler)
	v1.GET("/projects", s.listProjectsHandler)
	v1.GET("/projects/:id", s.getProjectHandler)
	v1.DELETE("/projects/:id", s.deleteProjectHandler)
	v1.GET("/projects/:id/report", s.getReportHandler)
	v1.GET("/projects/:id/events", s.eventsHandler)
	v1.POST("/webhook/transcript", s.webhookHandler)
}

// Start serves on addr (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.router}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// healthHandler handles GET /health.
func (s *Server) healthHandler(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	health, err := s.store.Health(reqCtx)
	status := http.StatusOK
	if err != nil {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}
