package handler

import (
	"net/http"

	"evalgrid/internal/service"
	"evalgrid/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AnalysisHandler handles pre-retry failure analysis
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

// NewAnalysisHandler creates analysis handler
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// PreRetryAnalysis classifies a task's failures ahead of a retry
// @Summary Pre-retry failure analysis
// @Tags analysis
// @Produce json
// @Param task_id path string true "Task ID"
// @Success 200 {object} model.PreRetryAnalysis
// @Router /v1/tasks/{task_id}/pre-retry-analysis [get]
func (h *AnalysisHandler) PreRetryAnalysis(c *gin.Context) {
	taskID := c.Param("task_id")

	analysis, err := h.analysisService.AnalyzeTask(c.Request.Context(), taskID)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "analysis failed, task_id: %s: %v", taskID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, analysis)
}
