package ws

import "sync"

type Conn interface {
	ID() string
	UserID() string
	Send(msg Message) error
	Close() error
}

// Hub tracks which connections are in which room. A connection moves
// between rooms as it rebinds; membership here mirrors the lobby's
// session bindings.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Conn // roomID -> connID -> conn
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[string]Conn)}
}

func (h *Hub) Join(roomID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rs, ok := h.rooms[roomID]
	if !ok {
		rs = make(map[string]Conn)
		h.rooms[roomID] = rs
	}
	rs[c.ID()] = c
}

func (h *Hub) Leave(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if rs, ok := h.rooms[roomID]; ok {
		delete(rs, connID)
		if len(rs) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (h *Hub) Broadcast(roomID string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if rs, ok := h.rooms[roomID]; ok {
		for _, c := range rs {
			_ = c.Send(msg) // best-effort
		}
	}
}

// SendTo delivers to one connection in the room, reporting whether the
// connection was present.
func (h *Hub) SendTo(roomID, connID string, msg Message) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if rs, ok := h.rooms[roomID]; ok {
		if c, ok := rs[connID]; ok {
			_ = c.Send(msg)
			return true
		}
	}
	return false
}
