package middleware

import (
	"net/http"
	"strings"

	"evalgrid/pkg/config"
	"evalgrid/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware guards the executor-facing endpoints with a static bearer
// token. An empty server.api_key leaves the surface open, which is the
// expected setup when executors and orchestrator share a private network.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := config.GlobalConfig.Server.APIKey
		if apiKey == "" {
			c.Next()
			return
		}

		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token != apiKey {
			logger.WarnCtx(c.Request.Context(), "rejected executor request, path: %s, ip: %s",
				c.Request.URL.Path, c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Next()
	}
}
