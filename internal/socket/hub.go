// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is one lifecycle notification pushed to an actor, e.g. a vendor
// learning its quotation was approved.
type Event struct {
	Event     string `json:"event"`
	RequestID string `json:"requestID,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Hub tracks live WebSocket connections, keyed by actor id.
type Hub struct {
	clients map[string]*websocket.Conn
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
	}
}

// Register adds a client connection.
func (h *Hub) Register(actorID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[actorID] = conn
	log.Printf("WebSocket client registered: %s", actorID)
}

// Unregister removes a client connection.
func (h *Hub) Unregister(actorID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[actorID]; ok {
		delete(h.clients, actorID)
		log.Printf("WebSocket client unregistered: %s", actorID)
	}
}

// Send delivers a raw message to one actor. An offline actor is not an error.
func (h *Hub) Send(actorID string, message []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.clients[actorID]
	if !ok {
		return nil
	}
	return conn.WriteMessage(websocket.TextMessage, message)
}

// Notify marshals and delivers a lifecycle event to one actor.
func (h *Hub) Notify(actorID string, ev Event) {
	if actorID == "" {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Failed to marshal event %q for %s: %v", ev.Event, actorID, err)
		return
	}
	if err := h.Send(actorID, payload); err != nil {
		log.Printf("Failed to push event %q to %s: %v", ev.Event, actorID, err)
	}
}
