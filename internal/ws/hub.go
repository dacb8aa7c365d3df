package ws

import (
	"encoding/json"
	"sync"
	"time"

	"go-resale-ledger/pkg/logger"

	"github.com/gofiber/contrib/websocket"
)

type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			logger.L().Debug("ws client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// StockEvent is broadcast after every committed allocation change so the UIs
// can reconcile their local stock views without refetching.
type StockEvent struct {
	Type    string      `json:"type"`
	Action  string      `json:"action"`
	Payload interface{} `json:"payload,omitempty"`
	Actor   EventActor  `json:"actor"`
	Message string      `json:"message,omitempty"`
}

type EventActor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PublishStockEvent serializes and broadcasts asynchronously; it is always
// called after the surrounding transaction committed.
func (h *Hub) PublishStockEvent(event StockEvent) {
	if h == nil {
		return
	}
	event.Type = "stock_update"
	h.publish(event)
}

// PresenceEvent tells connected UIs a user is still online.
type PresenceEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

func (h *Hub) PublishPresence(userID, status string) {
	if h == nil {
		return
	}
	h.publish(PresenceEvent{
		Type:       "user_status_update",
		UserID:     userID,
		Status:     status,
		LastSeenAt: time.Now(),
	})
}

func (h *Hub) publish(event interface{}) {
	go func() {
		msg, err := json.Marshal(event)
		if err != nil {
			logger.L().WithError(err).Warn("failed to marshal ws event")
			return
		}
		h.Broadcast <- msg
	}()
}
