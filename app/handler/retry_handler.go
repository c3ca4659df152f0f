package handler

import (
	"net/http"

	"evalgrid/internal/model"
	"evalgrid/internal/service"
	"evalgrid/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RetryHandler handles retry passes over a task's failed subtasks
type RetryHandler struct {
	retryService *service.RetryService
}

// NewRetryHandler creates retry handler
func NewRetryHandler(retryService *service.RetryService) *RetryHandler {
	return &RetryHandler{retryService: retryService}
}

// Retry re-dispatches a task's failed subtasks
// @Summary Retry failed subtasks
// @Tags retry
// @Accept json
// @Produce json
// @Param task_id path string true "Task ID"
// @Param request body model.RetryRequest true "Retry options"
// @Success 200 {object} model.RetryOutcome
// @Router /v1/tasks/{task_id}/retry [post]
func (h *RetryHandler) Retry(c *gin.Context) {
	taskID := c.Param("task_id")

	var req model.RetryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.ErrorCtx(c.Request.Context(), "invalid retry request: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}

	outcome, err := h.retryService.Retry(c.Request.Context(), taskID, &req)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "retry failed, task_id: %s: %v", taskID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, outcome)
}
