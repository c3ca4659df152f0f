package handler

import (
	"net/http"

	"evalgrid/internal/model"
	"evalgrid/internal/selector"
	"evalgrid/pkg/config"
	"evalgrid/pkg/constants"
	"evalgrid/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SelectionHandler handles vendor selection requests from executors
type SelectionHandler struct {
	selector *selector.Selector
}

// NewSelectionHandler creates selection handler
func NewSelectionHandler(sel *selector.Selector) *SelectionHandler {
	return &SelectionHandler{selector: sel}
}

// Select picks the best vendor for a logical model
// @Summary Select vendor
// @Description Resolve a logical model name to the best available vendor under a strategy
// @Tags selection
// @Accept json
// @Produce json
// @Param request body model.SelectionRequest true "Selection request"
// @Success 200 {object} model.SelectionResult
// @Router /v1/selection [post]
func (h *SelectionHandler) Select(c *gin.Context) {
	var req model.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.ErrorCtx(c.Request.Context(), "invalid selection request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = constants.SelectionStrategy(config.GlobalConfig.Selector.DefaultStrategy)
	}
	if !strategy.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown strategy: " + strategy.String()})
		return
	}

	result, err := h.selector.Select(c.Request.Context(), req.LogicalName, strategy, req.ExcludeVendorIDs)
	if err != nil {
		logger.WarnCtx(c.Request.Context(), "selection failed, model: %s: %v", req.LogicalName, err)
		writeError(c, err)
		return
	}

	// The caller is about to use this vendor: take the load slot now, it is
	// released when the result comes back through the ingestion endpoint
	h.selector.Registry().UpdateLoad(result.Selected.ID, 1)

	c.JSON(http.StatusOK, result)
}
