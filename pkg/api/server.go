// Package api exposes the orchestration engine over HTTP (C10 — outside
// the core's stated scope in spec.md §1, but required for a runnable
// service; mirrors the teacher repository's gin-based router).
package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pullscope/pullscope/pkg/orchestrator"
)

// NewRouter builds the gin engine exposing the orchestrator's
// analyze/job-status/cancel surface plus a health check.
func NewRouter(orch *orchestrator.Orchestrator, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(slogMiddleware(logger))

	h := &handlers{orch: orch}
	r.GET("/healthz", h.healthz)

	v1 := r.Group("/v1")
	v1.POST("/analyze", h.postAnalyze)
	v1.GET("/jobs/:id", h.getJob)
	v1.POST("/jobs/:id/cancel", h.cancelJob)

	return r
}

func slogMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if status >= http.StatusBadRequest {
			level = slog.LevelWarn
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
		)
	}
}
