// Package ws accepts websocket connections from external execution
// contexts and feeds their messages into the owning surface's channel.
package ws

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mjvo/sketchbridge/internal/bridge"
	"github.com/mjvo/sketchbridge/internal/id"
	"github.com/mjvo/sketchbridge/internal/logging"
	"github.com/mjvo/sketchbridge/internal/sketch"
)

// Origin filtering happens in the channel's guard pipeline, where rejects
// are counted and logged; the upgrader accepts everything.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler manages execution-context websocket connections.
type Handler struct {
	sketches *sketch.Manager
	log      *logging.Logger
}

// NewHandler creates a websocket handler.
func NewHandler(sketches *sketch.Manager, log *logging.Logger) *Handler {
	if log == nil {
		log = logging.NewDefault()
	}
	return &Handler{sketches: sketches, log: log}
}

// HandleConnection upgrades the request and relays every inbound message
// into the surface's channel. The connection becomes the pinned sender for
// the surface's source guard while it stays open.
func (h *Handler) HandleConnection(c *gin.Context) {
	sid := c.Query("sketch")
	if !id.ValidSketchID(sid) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or malformed sketch id"})
		return
	}
	surface, ok := h.sketches.Get(sid)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown sketch id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	origin := c.Request.Header.Get("Origin")
	if err := h.sketches.Attach(sid, conn); err != nil {
		return
	}
	defer h.sketches.Detach(sid, conn)

	h.log.Info("execution context connected",
		zap.String("sketch_id", sid),
		zap.String("origin", origin),
	)

	conn.WriteJSON(map[string]any{
		"type":    "system",
		"message": "connected to sketch bridge",
	})

	for {
		var raw json.RawMessage
		if err := conn.ReadJSON(&raw); err != nil {
			h.log.Debug("websocket closed", zap.String("sketch_id", sid), zap.Error(err))
			break
		}
		// guard failures are silent; a rejected message never closes
		// the connection
		surface.Channel().Handle(bridge.Event{
			Origin: origin,
			Source: conn,
			Data:   raw,
		})
	}
}
