package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/brand-theme-generator/internal/browser"
)

// PoolStats reports render pool state.
type PoolStats interface {
	Stats() browser.Stats
}

// HealthCheck returns GET /health, including render pool state when pool is set.
func HealthCheck(pool PoolStats, persistence bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"status": "ok", "persistence": persistence}
		if pool != nil {
			body["pool"] = pool.Stats()
		}
		c.JSON(http.StatusOK, body)
	}
}
