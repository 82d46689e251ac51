package services

import (
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Message types pushed to clients
const (
	WSTypeRecipeSaved   = "recipe_saved"
	WSTypeRecipeDeleted = "recipe_deleted"
	WSTypeRecipeShared  = "recipe_shared"
	WSTypeGroupUpdated  = "group_updated"
	WSTypeGroupDeleted  = "group_deleted"
	WSTypeError         = "error"
	WSTypeSubscribe     = "subscribe"
	WSTypeUnsubscribe   = "unsubscribe"
	WSTypePing          = "ping"
	WSTypePong          = "pong"
)

// GroupTopic names the topic carrying events for one group
func GroupTopic(groupID string) string {
	return "group:" + groupID
}

// GroupIDFromTopic reports whether the topic carries group events and for
// which group.
func GroupIDFromTopic(topic string) (string, bool) {
	if id, ok := strings.CutPrefix(topic, "group:"); ok && id != "" {
		return id, true
	}
	return "", false
}

// WSClient represents a connected WebSocket client. UserID is set at upgrade
// time from the authenticated request.
type WSClient struct {
	ID         string
	UserID     string
	Topics     map[string]bool
	Conn       *websocket.Conn
	Send       chan []byte
	hub        *WebSocketHub
	mu         sync.Mutex
	closedOnce sync.Once

	sendMu     sync.Mutex
	sendClosed bool
}

// WebSocketHub fans recipe and group events out to connected clients
type WebSocketHub struct {
	clients    map[*WSClient]bool
	topics     map[string]map[*WSClient]bool // topic -> clients
	userConns  map[string]map[*WSClient]bool // userID -> clients
	register   chan *WSClient
	unregister chan *WSClient
	broadcast  chan *broadcastMsg
	mu         sync.RWMutex
}

type broadcastMsg struct {
	topic   string
	userID  string // if set, only send to this user
	message []byte
}

// NewWebSocketHub creates a new WebSocket hub
func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*WSClient]bool),
		topics:     make(map[string]map[*WSClient]bool),
		userConns:  make(map[string]map[*WSClient]bool),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		broadcast:  make(chan *broadcastMsg, 256),
	}
}

// Run starts the hub's main loop
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if client.UserID != "" {
				if h.userConns[client.UserID] == nil {
					h.userConns[client.UserID] = make(map[*WSClient]bool)
				}
				h.userConns[client.UserID][client] = true
			}
			h.mu.Unlock()
			log.Printf("WebSocket client connected: %s (user %s)", client.ID, client.UserID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				for topic := range client.Topics {
					h.dropFromTopic(client, topic)
				}
				if client.UserID != "" {
					if userClients, ok := h.userConns[client.UserID]; ok {
						delete(userClients, client)
						if len(userClients) == 0 {
							delete(h.userConns, client.UserID)
						}
					}
				}
				client.closeSend()
			}
			h.mu.Unlock()
			log.Printf("WebSocket client disconnected: %s", client.ID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			var targets map[*WSClient]bool

			switch {
			case msg.userID != "":
				targets = h.userConns[msg.userID]
			case msg.topic != "":
				targets = h.topics[msg.topic]
			default:
				targets = h.clients
			}

			for client := range targets {
				select {
				case client.Send <- msg.message:
				default:
					// Client buffer full, drop the connection
					go func(c *WSClient) {
						h.unregister <- c
					}(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub
func (h *WebSocketHub) Register(client *WSClient) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *WebSocketHub) Unregister(client *WSClient) {
	h.unregister <- client
}

// Subscribe adds a client to a topic
func (h *WebSocketHub) Subscribe(client *WSClient, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.Topics[topic] = true
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*WSClient]bool)
	}
	h.topics[topic][client] = true
}

// Unsubscribe removes a client from a topic
func (h *WebSocketHub) Unsubscribe(client *WSClient, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(client.Topics, topic)
	h.dropFromTopic(client, topic)
}

// dropFromTopic removes the client from the topic index. Caller holds h.mu.
func (h *WebSocketHub) dropFromTopic(client *WSClient, topic string) {
	if topicClients, ok := h.topics[topic]; ok {
		delete(topicClients, client)
		if len(topicClients) == 0 {
			delete(h.topics, topic)
		}
	}
}

// BroadcastToTopic sends a message to all clients subscribed to a topic
func (h *WebSocketHub) BroadcastToTopic(topic string, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling WebSocket message: %v", err)
		return
	}

	h.broadcast <- &broadcastMsg{
		topic:   topic,
		message: data,
	}
}

// SendToUser sends a message to all connections of a specific user
func (h *WebSocketHub) SendToUser(userID string, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling WebSocket message: %v", err)
		return
	}

	h.broadcast <- &broadcastMsg{
		userID:  userID,
		message: data,
	}
}

// BroadcastAll sends a message to all connected clients
func (h *WebSocketHub) BroadcastAll(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling WebSocket message: %v", err)
		return
	}

	h.broadcast <- &broadcastMsg{
		message: data,
	}
}

// GetClientCount returns the number of connected clients
func (h *WebSocketHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NewClient creates a new WebSocket client connected to this hub
func (h *WebSocketHub) NewClient(id, userID string, conn *websocket.Conn) *WSClient {
	return &WSClient{
		ID:     id,
		UserID: userID,
		Topics: make(map[string]bool),
		Conn:   conn,
		Send:   make(chan []byte, 256),
		hub:    h,
	}
}

// Close closes the client connection
func (c *WSClient) Close() {
	c.closedOnce.Do(func() {
		c.hub.Unregister(c)
		c.Conn.Close()
	})
}

// Queue hands a message to the client's write pump. Returns false if the
// client was dropped or its buffer is full. Safe to call from any goroutine;
// the hub may close the send channel concurrently.
func (c *WSClient) Queue(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.sendClosed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once. Called by the hub when the
// client is dropped.
func (c *WSClient) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if !c.sendClosed {
		c.sendClosed = true
		close(c.Send)
	}
}

// WritePump pumps messages from the hub to the websocket connection
func (c *WSClient) WritePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			c.mu.Lock()
			err := c.Conn.WriteMessage(websocket.TextMessage, message)
			c.mu.Unlock()

			if err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump pumps messages from the websocket connection to the hub
func (c *WSClient) ReadPump(onMessage func(client *WSClient, messageType int, data []byte)) {
	defer c.Close()

	c.Conn.SetReadLimit(64 * 1024)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		if onMessage != nil {
			onMessage(c, messageType, message)
		}
	}
}
