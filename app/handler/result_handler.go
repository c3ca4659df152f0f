package handler

import (
	"net/http"
	"strconv"

	"evalgrid/internal/model"
	"evalgrid/internal/service"
	"evalgrid/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ResultHandler ingests execution outcomes from the executor fleet
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler creates result handler
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// Ingest records one executor result for a subtask
// @Summary Report execution result
// @Tags results
// @Accept json
// @Produce json
// @Param subtask_id path int true "Subtask ID"
// @Param request body model.ExecutionResult true "Execution result"
// @Success 200 {object} map[string]string
// @Router /v1/results/{subtask_id} [post]
func (h *ResultHandler) Ingest(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("subtask_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subtask_id"})
		return
	}

	var res model.ExecutionResult
	if err := c.ShouldBindJSON(&res); err != nil {
		logger.ErrorCtx(c.Request.Context(), "invalid execution result: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.resultService.Ingest(c.Request.Context(), uint(id), &res); err != nil {
		logger.ErrorCtx(c.Request.Context(), "result ingestion failed, subtask_id: %d: %v", id, err)
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "result recorded"})
}
