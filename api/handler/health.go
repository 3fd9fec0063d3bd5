package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Modzmart2112/Tracker-sub001/config"
	"github.com/Modzmart2112/Tracker-sub001/models"
)

// Health returns a handler for GET /api/v1/health.
func Health(browserCfg config.BrowserConfig, startTime time.Time) gin.HandlerFunc {
	browser := "local"
	if browserCfg.RemoteWS != "" {
		browser = "remote"
	}

	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "healthy",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Browser: browser,
			Version: "0.1.0",
		})
	}
}
