package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// requestLog records one line per request with method, path, status and
// latency.
func (h *Handler) requestLog(c *gin.Context) {
	start := time.Now()

	c.Next()

	if h.log == nil {
		return
	}
	h.log.Infow("http_request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
