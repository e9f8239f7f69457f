package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yigit/jobboard/internal/pkg/realtime"
)

// RealtimeController upgrades authenticated requests to notification sockets
type RealtimeController struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewRealtimeController creates a new RealtimeController accepting the given origins
func NewRealtimeController(hub *realtime.Hub, origins []string, logger zerolog.Logger) *RealtimeController {
	return &RealtimeController{
		hub:      hub,
		upgrader: realtime.Upgrader(origins),
		logger:   logger,
	}
}

// Connect godoc
// @Summary Open the notification socket
// @Description Upgrades to a WebSocket that receives {"type":"notification","data":{...}} events for the caller. Browsers pass the token as the token query parameter.
// @Tags notifications
// @Security BearerAuth
// @Param token query string false "Access token when the Authorization header cannot be set"
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /notifications/ws [get]
func (c *RealtimeController) Connect(ctx *gin.Context) {
	identity, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		c.logger.Warn().Err(err).Int64("userID", identity.ID).Msg("WebSocket upgrade failed")
		return
	}

	c.logger.Debug().Int64("userID", identity.ID).Msg("Notification socket connected")
	realtime.Serve(c.hub, conn, identity.ID)
}
