package handlers

import (
	"log/slog"
	"net/http"

	"ytquiz/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ProgressHandler streams pipeline progress events for the caller's own
// quiz generations over a websocket.
type ProgressHandler struct {
	hub *services.Hub
}

func NewProgressHandler(hub *services.Hub) *ProgressHandler {
	return &ProgressHandler{hub: hub}
}

func (h *ProgressHandler) Stream(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		slog.Warn("websocket upgrade failed", slog.Uint64("user_id", uint64(userID)), slog.Any("error", err))
		return
	}

	if client := h.hub.RegisterClient(conn, userID); client == nil {
		// hub is shutting down and has closed the socket
		return
	}
	slog.Debug("progress stream opened", slog.Uint64("user_id", uint64(userID)))
}
