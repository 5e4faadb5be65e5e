package http

import (
	"net/http"

	"swapchess/internal/config"

	"github.com/gin-gonic/gin"
)

// @Summary Room lifecycle settings
// @Description Grace interval, sweep interval and maximum room age in effect
// @Tags Config
// @Produce json
// @Success 200 {object} LifecycleResponse
// @Router /config/lifecycle [get]
func LifecycleConfigHandler(cfg config.Config) gin.HandlerFunc {
	resp := LifecycleResponse{
		GraceInterval: cfg.Lifecycle.GraceInterval.String(),
		SweepInterval: cfg.Lifecycle.SweepInterval.String(),
		MaxAge:        cfg.Lifecycle.MaxAge.String(),
		CodeLength:    cfg.Room.CodeLength,
		MaxChatLength: cfg.Room.MaxChatLength,
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, resp)
	}
}
