// Package api exposes the query pipeline over HTTP: one endpoint that
// fans a question out to every configured source and returns the
// aggregate comparison, one that scores a single (query, answer) pair,
// plus health and Prometheus metrics.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/answerbench/answerbench/internal/application"
	"github.com/answerbench/answerbench/internal/ports"
)

// Version is reported by the health endpoint. Overridden at link time
// for release builds.
var Version = "1.0.0"

// Server holds the handler dependencies. It carries no per-request
// state; one Server serves all requests concurrently.
type Server struct {
	orchestrator *application.Orchestrator
	scorer       ports.RelevancyScorer
	log          *logrus.Entry
}

// NewServer wires the HTTP layer against an orchestrator and a scorer.
func NewServer(orchestrator *application.Orchestrator, scorer ports.RelevancyScorer) *Server {
	return &Server{
		orchestrator: orchestrator,
		scorer:       scorer,
		log:          logrus.WithField("component", "api"),
	}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(s.log), CORS())

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/query", s.handleQuery)
		v1.POST("/score", s.handleScore)
	}

	return router
}
