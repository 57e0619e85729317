// Package apiserver exposes the dispatch planner over HTTP: solve and
// sweep as one-shot JSON request/response endpoints, plus a websocket
// stream for sweep progress. It is a second external-facing surface
// alongside cmd/dcdispatch, for dashboards and other long-running
// integrations that would rather talk HTTP than shell out to the CLI.
package apiserver

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/devskill-org/dcdispatch/dispatch"
	"github.com/devskill-org/dcdispatch/history"
	"github.com/devskill-org/dcdispatch/sigenergy"
)

// Server wires gin routes to a Planner and an optional actuator.
type Server struct {
	planner  *dispatch.Planner
	logger   *log.Logger
	router   *gin.Engine
	server   *http.Server
	actuator *sigenergy.Actuator
	history  *history.Store
}

// SetActuator attaches a live Sigenergy actuator; once set, POST /v1/solve
// accepts ?actuate=true to push the solved plan's step-0 BESS decision to
// the plant. Safe to call before or after Start.
func (s *Server) SetActuator(a *sigenergy.Actuator) {
	s.actuator = a
}

// SetHistoryStore attaches a Postgres-backed result history; once set,
// every solved Result from /v1/solve and /v1/sweep is persisted via
// SaveResult. Safe to call before or after Start.
func (s *Server) SetHistoryStore(store *history.Store) {
	s.history = store
}

// NewServer builds the router and registers every route; it does not start
// listening until Start is called.
func NewServer(planner *dispatch.Planner, logger *log.Logger) *Server {
	router := gin.Default()

	s := &Server{
		planner: planner,
		logger:  logger,
		router:  router,
	}

	v1 := router.Group("/v1")
	{
		v1.GET("/health", s.handleHealth)
		v1.POST("/solve", s.handleSolve)
		v1.POST("/sweep", s.handleSweep)
		v1.GET("/sweep/stream", s.handleSweepStream)
	}

	return s
}

// Start listens on addr, wrapping the router with rs/cors's default
// permissive policy per its own documented usage: cors.Default().Handler(h).
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      cors.Default().Handler(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if s.logger != nil {
		s.logger.Printf("apiserver: listening on %s", addr)
	}
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("apiserver: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
