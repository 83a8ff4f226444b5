package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/securevote/securevote-be/internal/auth"
	"github.com/securevote/securevote-be/internal/models"
	ws "github.com/securevote/securevote-be/internal/websocket"
)

// WebSocketHandler handles upgrading HTTP connections to WebSocket connections.
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. Browsers may connect
// from any of origins; an empty list allows every origin.
func NewWebSocketHandler(hub *ws.Hub, origins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowed) == 0 {
					return true
				}
				return allowed[origin] || origin == "http://"+r.Host || origin == "https://"+r.Host
			},
		},
	}
}

// Serve handles the WebSocket connection request. Admins are subscribed to
// the admin feed; everyone else gets the public one.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	topic := ws.TopicPublic
	if claims, err := auth.ClaimsFromContext(r.Context()); err == nil && claims.Role == models.RoleAdmin {
		topic = ws.TopicAdmin
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, topic)
	if !h.hub.Join(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go func() {
		client.ReadPump(h.handleIncomingWSMessage)
		h.hub.Leave(client)
	}()
}

func (h *WebSocketHandler) handleIncomingWSMessage(client *ws.Client, message []byte) {
	var msg ws.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		h.hub.Reply(client, ws.NewErrorMessage("invalid message format"))
		return
	}

	switch msg.Action {
	case "ping":
		h.hub.Reply(client, ws.NewMessage(ws.ActionPong, nil))
	default:
		log.Debug().Str("action", msg.Action).Msg("Unknown websocket action")
		h.hub.Reply(client, ws.NewErrorMessage("unknown action: "+msg.Action))
	}
}
