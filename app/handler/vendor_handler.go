package handler

import (
	"net/http"

	"evalgrid/internal/selector"
	"evalgrid/pkg/logger"
	redisstore "evalgrid/pkg/store/redis"

	"github.com/gin-gonic/gin"
)

// VendorHandler exposes vendor health state and manual controls
type VendorHandler struct {
	selector    *selector.Selector
	metricsRepo *redisstore.MetricsRepository
}

// NewVendorHandler creates vendor handler
func NewVendorHandler(sel *selector.Selector, metricsRepo *redisstore.MetricsRepository) *VendorHandler {
	return &VendorHandler{
		selector:    sel,
		metricsRepo: metricsRepo,
	}
}

// Metrics returns the in-memory health snapshot of every tracked vendor
// @Summary Vendor metrics
// @Tags vendors
// @Produce json
// @Success 200 {array} model.VendorMetrics
// @Router /v1/vendors/metrics [get]
func (h *VendorHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"vendors": h.selector.Registry().SnapshotAll()})
}

// Groups returns the cached logical model groups
// @Summary Logical model groups
// @Tags vendors
// @Produce json
// @Success 200 {array} model.LogicalModelGroup
// @Router /v1/vendors/groups [get]
func (h *VendorHandler) Groups(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"groups": h.selector.Groups()})
}

// resetRequest asks for a fresh start for the listed vendors.
type resetRequest struct {
	ModelIDs []uint `json:"model_ids" binding:"required,min=1"`
}

// Reset clears failure history for the listed vendors
// @Summary Reset vendor health
// @Tags vendors
// @Accept json
// @Produce json
// @Param request body resetRequest true "Vendor ids"
// @Success 200 {object} map[string]string
// @Router /v1/vendors/reset [post]
func (h *VendorHandler) Reset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "model_ids required"})
		return
	}

	h.selector.Registry().ResetAll(req.ModelIDs)
	logger.InfoCtx(c.Request.Context(), "vendor health reset, model_ids: %v", req.ModelIDs)

	c.JSON(http.StatusOK, gin.H{"message": "vendor health reset"})
}

// PublishedMetrics returns the last snapshots published to Redis. Useful for
// reading another replica's view.
// @Summary Published vendor metrics
// @Tags vendors
// @Produce json
// @Success 200 {array} model.VendorMetrics
// @Router /v1/vendors/metrics/published [get]
func (h *VendorHandler) PublishedMetrics(c *gin.Context) {
	if h.metricsRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics snapshots not available"})
		return
	}

	metrics, err := h.metricsRepo.GetAll(c.Request.Context())
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to read published metrics: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"vendors": metrics})
}
