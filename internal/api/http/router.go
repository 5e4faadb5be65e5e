package http

import (
	"strings"
	"time"

	"swapchess/internal/api/ws"
	"swapchess/internal/config"
	"swapchess/internal/room"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(rm *room.Manager, hub *ws.Hub, cfg config.Config, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.Use(RequestLogger(log.Named("http")), Recovery(log.Named("http")))
	r.Use(cors.New(corsConfig(cfg)))

	// WebSocket for live room events
	r.GET("/ws", hub.HandleWS)

	r.GET("/healthz", HealthHandler())
	r.GET("/stats", StatsHandler(rm, hub))

	// --- ROOM ENDPOINTS ---
	r.GET("/rooms", ListRoomsHandler(rm))
	r.GET("/rooms/:code", GetRoomHandler(rm))

	// --- CONFIG ENDPOINTS ---
	r.GET("/config/lifecycle", LifecycleConfigHandler(cfg))

	return r
}

func corsConfig(cfg config.Config) cors.Config {
	cc := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if cfg.AllowAllOrigins() {
		cc.AllowAllOrigins = true
		return cc
	}
	for _, o := range cfg.AllowedOrigins {
		if strings.HasPrefix(o, "http://") || strings.HasPrefix(o, "https://") {
			cc.AllowOrigins = append(cc.AllowOrigins, o)
		}
	}
	if len(cc.AllowOrigins) == 0 {
		cc.AllowOrigins = []string{"http://localhost"}
	}
	return cc
}
