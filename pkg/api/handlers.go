package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pullscope/pullscope/pkg/orchestrator"
)

type handlers struct {
	orch *orchestrator.Orchestrator
}

func (h *handlers) postAnalyze(c *gin.Context) {
	var body analyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, handle, err := h.orch.Analyze(c.Request.Context(), body.toOrchestratorRequest())
	if err != nil {
		writeError(c, err)
		return
	}
	if handle != nil {
		c.JSON(http.StatusAccepted, handle)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) getJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	result, handle, err := h.orch.JobStatus(id)
	if err != nil {
		writeError(c, err)
		return
	}
	if handle != nil {
		c.JSON(http.StatusOK, handle)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) cancelJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}
	if !h.orch.Cancel(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
