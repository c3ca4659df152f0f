package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"evalgrid/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/pretty"
)

const maxLoggedBody = 1000

// Logger access-logs each request through the structured logger. Request
// bodies are compacted and truncated so a large payload cannot flood the log.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var body string
		if c.Request.Method == http.MethodPost {
			body = readRequestBody(c)
		}

		c.Next()

		if c.Writer.Status() == http.StatusNotFound {
			return
		}

		msg := "%3d | %13v | %15s | %s %s"
		args := []interface{}{
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
			c.Request.Method,
			c.Request.RequestURI,
		}
		if body != "" {
			msg += " | body=%s"
			args = append(args, body)
		}
		logger.InfoCtx(c.Request.Context(), msg, args...)
	}
}

// readRequestBody reads and restores the request body for logging.
func readRequestBody(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	bodyBytes, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	return CompressBody(bodyBytes)
}

// CompressBody strips whitespace from a JSON body and truncates it.
func CompressBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	compressed := pretty.Ugly(body)
	if len(compressed) > maxLoggedBody {
		return string(compressed[:maxLoggedBody]) + "..."
	}
	return string(compressed)
}
