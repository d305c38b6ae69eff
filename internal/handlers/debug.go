package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripchat-service/internal/telemetry"
)

// RegisterDebugRoutes wires debug-only endpoints. When devToken is set
// callers must present it in the X-Debug-Token header.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, enabled bool, devToken string) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if devToken != "" && c.GetHeader("X-Debug-Token") != devToken {
			c.JSON(http.StatusForbidden, gin.H{"error": "bad debug token"})
			return
		}
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitter.Emit(c.Request.Context(), "INFO", "audit test", requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
