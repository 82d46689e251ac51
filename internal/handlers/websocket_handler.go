package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/chameleon/server/internal/middleware"
	"github.com/chameleon/server/internal/repository"
	"github.com/chameleon/server/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now - can be restricted in production
		return true
	},
}

// WebSocketHandler handles WebSocket connections for live recipe and group
// updates.
type WebSocketHandler struct {
	hub      *services.WebSocketHub
	userRepo repository.UserRepo
	groups   *services.GroupService
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *services.WebSocketHub, userRepo repository.UserRepo, groups *services.GroupService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		userRepo: userRepo,
		groups:   groups,
	}
}

// HandleConnection upgrades HTTP to WebSocket and manages the connection.
// The ws route skips the auth middleware (browsers cannot set headers on the
// upgrade request), so identity comes from the userId query parameter and is
// checked against the directory here.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if user := middleware.GetUserFromContext(r.Context()); user != nil {
		userID = user.ID
	}

	if userID != "" {
		user, err := h.userRepo.GetByID(r.Context(), userID)
		if err != nil || user == nil {
			http.Error(w, "Unknown user", http.StatusUnauthorized)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := h.hub.NewClient(uuid.New().String(), userID, conn)
	h.hub.Register(client)

	go client.WritePump()

	// Blocks until the connection closes
	ctx := r.Context()
	client.ReadPump(func(c *services.WSClient, messageType int, data []byte) {
		h.handleMessage(ctx, c, messageType, data)
	})
}

// handleMessage processes incoming WebSocket messages
func (h *WebSocketHandler) handleMessage(ctx context.Context, client *services.WSClient, messageType int, data []byte) {
	if messageType != websocket.TextMessage {
		return
	}

	var msg services.WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Invalid WebSocket message: %v", err)
		return
	}

	switch msg.Type {
	case services.WSTypeSubscribe:
		topic := topicFromPayload(msg.Payload)
		if topic == "" {
			return
		}
		if !h.canSubscribe(ctx, client, topic) {
			h.reply(client, services.WSMessage{
				Type:    services.WSTypeError,
				Payload: "not a member of this group",
			})
			return
		}
		h.hub.Subscribe(client, topic)

	case services.WSTypeUnsubscribe:
		if topic := topicFromPayload(msg.Payload); topic != "" {
			h.hub.Unsubscribe(client, topic)
		}

	case services.WSTypePing:
		h.reply(client, services.WSMessage{Type: services.WSTypePong})

	default:
		log.Printf("Unknown WebSocket message type: %s", msg.Type)
	}
}

// canSubscribe authorizes a subscription. Group topics carry full recipe
// payloads for group shares, so they are limited to current members of the
// group. Other topics are open.
func (h *WebSocketHandler) canSubscribe(ctx context.Context, client *services.WSClient, topic string) bool {
	groupID, ok := services.GroupIDFromTopic(topic)
	if !ok {
		return true
	}
	if client.UserID == "" {
		return false
	}

	groupIDs, err := h.groups.GroupIDsForUser(ctx, client.UserID)
	if err != nil {
		log.Printf("Failed to resolve group memberships: %v", err)
		return false
	}
	return groupIDs[groupID]
}

func (h *WebSocketHandler) reply(client *services.WSClient, msg services.WSMessage) {
	if data, err := json.Marshal(msg); err == nil {
		client.Queue(data)
	}
}

func topicFromPayload(payload interface{}) string {
	if topic, ok := payload.(string); ok {
		return topic
	}
	if m, ok := payload.(map[string]interface{}); ok {
		if topic, ok := m["topic"].(string); ok {
			return topic
		}
	}
	return ""
}

// GetHub returns the WebSocket hub (for other services to send notifications)
func (h *WebSocketHandler) GetHub() *services.WebSocketHub {
	return h.hub
}
