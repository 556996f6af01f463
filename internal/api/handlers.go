package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/answerbench/answerbench/internal/domain"
)

type queryRequest struct {
	Query string `json:"query"`
}

type scoreRequest struct {
	Query  string `json:"query"`
	Answer any    `json:"answer"`
}

// handleQuery runs one orchestrated query across every source and
// returns the aggregate result. A missing or blank query is the only
// client error.
func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be empty"})
		return
	}

	result, err := s.orchestrator.Run(c.Request.Context(), req.Query)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be empty"})
			return
		}
		s.log.WithError(err).Error("query run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleScore scores one (query, answer) pair. The endpoint always
// answers 200 with a usable score: absent or blank fields yield
// {"score": 0} rather than an error status, and judge trouble is
// absorbed by the scorer's fallback.
func (s *Server) handleScore(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"score": 0})
		return
	}
	if strings.TrimSpace(req.Query) == "" || answerMissing(req.Answer) {
		c.JSON(http.StatusOK, gin.H{"score": 0})
		return
	}

	score := s.scorer.Score(c.Request.Context(), req.Query, req.Answer)
	c.JSON(http.StatusOK, gin.H{"score": score})
}

// answerMissing reports whether the answer field is absent, null, or a
// blank string. Structured answers of any shape count as present.
func answerMissing(v any) bool {
	switch a := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(a) == ""
	default:
		return false
	}
}

// handleHealth reports liveness, the build version, and how many
// sources each query fans out to.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": Version,
		"sources": s.orchestrator.SourceCount(),
	})
}
