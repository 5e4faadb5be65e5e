package http

import (
	"errors"
	"net/http"
	"strings"

	"swapchess/internal/api/ws"
	"swapchess/internal/room"

	"github.com/gin-gonic/gin"
)

// @Summary Liveness probe
// @Tags Ops
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
	}
}

// @Summary Server counters
// @Description Live rooms, bound room members and open websocket connections
// @Tags Ops
// @Produce json
// @Success 200 {object} StatsResponse
// @Router /stats [get]
func StatsHandler(rm *room.Manager, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := rm.Stats()
		c.JSON(http.StatusOK, StatsResponse{
			Rooms:       st.Rooms,
			Members:     st.Connections,
			Connections: hub.ClientCount(),
		})
	}
}

// @Summary List room codes
// @Tags Room
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /rooms [get]
func ListRoomsHandler(rm *room.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": rm.Codes()})
	}
}

// @Summary Get room state
// @Description Returns the current game snapshot of a room
// @Tags Room
// @Produce json
// @Param code path string true "Room Code"
// @Success 200 {object} room.Snapshot
// @Failure 404 {object} map[string]string
// @Router /rooms/{code} [get]
func GetRoomHandler(rm *room.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var uri RoomCodeURI
		if err := c.ShouldBindUri(&uri); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room code"})
			return
		}
		snap, err := rm.Get(strings.ToUpper(uri.Code))
		if errors.Is(err, room.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}
