package handler

import (
	"errors"
	"net/http"

	"evalgrid/internal/model"

	"github.com/gin-gonic/gin"
)

// writeError maps the orchestration error taxonomy to HTTP statuses. A typed
// error reaches the client with its code; anything else is a plain 500.
func writeError(c *gin.Context, err error) {
	var oe *model.OrchestratorError
	if !errors.As(err, &oe) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch oe.Code {
	case model.CodeNoModelGroup:
		status = http.StatusNotFound
	case model.CodeNoAvailableVendor:
		status = http.StatusServiceUnavailable
	case model.CodeGenerationConflict:
		status = http.StatusConflict
	case model.CodeConfigError:
		status = http.StatusBadRequest
	}

	c.JSON(status, gin.H{
		"error": oe.Message,
		"code":  oe.Code,
		"model": oe.Model,
	})
}
