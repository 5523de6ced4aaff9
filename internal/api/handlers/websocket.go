package handlers

import (
	"net/http"
	"strings"

	"github.com/dom/vehicle-reservation/internal/logging"
	"github.com/dom/vehicle-reservation/internal/websocket"
	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	hub            *websocket.Hub
	allowedOrigins []string
	log            *zap.Logger
}

func NewWebSocketHandler(hub *websocket.Hub, allowedOrigins []string, log *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		allowedOrigins: allowedOrigins,
		log:            log,
	}
}

func (h *WebSocketHandler) upgrader() ws.Upgrader {
	return ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			h.log.Warn("websocket origin rejected", zap.String("origin", origin))
			return false
		},
	}
}

// Handle upgrades to the change feed. The optional kinds query parameter is a
// comma separated list of entity kinds to receive.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var kinds []string
	if raw := r.URL.Query().Get("kinds"); raw != "" {
		kinds = strings.Split(raw, ",")
	}

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.FromContext(r.Context(), h.log).Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := websocket.NewClient(h.hub, conn, kinds, h.log)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
