package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tripchat-service/internal/models"
	"tripchat-service/internal/observability"
)

// Hub maintains active websocket connections grouped into rooms, one
// room per group. A connection joins the room of every group its user
// belongs to.
type Hub struct {
	rooms     map[int]map[*websocket.Conn]bool
	connRooms map[*websocket.Conn][]int
	connInfo  map[*websocket.Conn]ConnInfo
	// gorilla/websocket allows one concurrent writer per connection;
	// writes from overlapping broadcasts serialize on this lock.
	writeMu map[*websocket.Conn]*sync.Mutex
	mu      sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:     make(map[int]map[*websocket.Conn]bool),
		connRooms: make(map[*websocket.Conn][]int),
		connInfo:  make(map[*websocket.Conn]ConnInfo),
		writeMu:   make(map[*websocket.Conn]*sync.Mutex),
	}
}

// AddClient registers an authenticated connection in every listed room.
func (h *Hub) AddClient(conn *websocket.Conn, info ConnInfo, groupIDs []int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, groupID := range groupIDs {
		if _, ok := h.rooms[groupID]; !ok {
			h.rooms[groupID] = make(map[*websocket.Conn]bool)
		}
		h.rooms[groupID][conn] = true
	}
	h.connRooms[conn] = groupIDs
	h.connInfo[conn] = info
	h.writeMu[conn] = &sync.Mutex{}
}

// RemoveClient removes a connection from all its rooms.
func (h *Hub) RemoveClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, groupID := range h.connRooms[conn] {
		if conns, ok := h.rooms[groupID]; ok {
			delete(conns, conn)
			if len(conns) == 0 {
				delete(h.rooms, groupID)
			}
		}
	}
	delete(h.connRooms, conn)
	delete(h.connInfo, conn)
	delete(h.writeMu, conn)
}

// BroadcastMessage sends a message event to all clients in a group room.
func (h *Hub) BroadcastMessage(groupID int, msg models.ChatMessage) {
	h.broadcast(groupID, models.Event{Type: "message", Message: &msg})
}

// BroadcastCheckIn sends a check_in event to all clients in a group room.
func (h *Hub) BroadcastCheckIn(groupID int, ci models.CheckIn) {
	h.broadcast(groupID, models.Event{Type: "check_in", CheckIn: &ci})
}

func (h *Hub) broadcast(groupID int, event models.Event) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[groupID]))
	for conn := range h.rooms[groupID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for _, conn := range conns {
		if err := h.writeTo(conn, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.publishWSError(groupID, conn, err)
			h.RemoveClient(conn)
		}
	}
}

func (h *Hub) writeTo(conn *websocket.Conn, payload []byte) error {
	h.mu.RLock()
	lock := h.writeMu[conn]
	h.mu.RUnlock()
	if lock == nil {
		// already removed by a racing cleanup
		return nil
	}
	lock.Lock()
	defer lock.Unlock()
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// RoomSize reports how many connections a room currently holds.
func (h *Hub) RoomSize(groupID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[groupID])
}

func (h *Hub) publishWSError(groupID int, conn *websocket.Conn, err error) {
	h.mu.RLock()
	info, ok := h.connInfo[conn]
	h.mu.RUnlock()
	if !ok {
		return
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"group_id":    groupID,
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      err.Error(),
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.groups", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent("ws_error")
}
