package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/pkg/logger"
)

const (
	// buffered events per client before it is dropped as too slow
	clientSendBuffer = 64

	hubQueueSize = 256
)

// Event is the message pushed to the subscribers of a photo
type Event struct {
	Type    string         `json:"type"` // created, updated, deleted
	Comment *model.Comment `json:"comment"`
}

// Client is one websocket subscribed to the comments of a photo
type Client struct {
	hub     *Hub
	conn    *Conn
	PhotoID uint
	UserID  uint // 0 for anonymous viewers
	send    chan []byte
}

type broadcastMessage struct {
	photoID uint
	data    []byte
}

// Hub fans comment events out to the clients watching each photo
type Hub struct {
	// photo id -> subscribed clients
	rooms  map[uint]map[*Client]bool
	closed bool

	broadcast chan *broadcastMessage

	// closed when Run returns
	done chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:     make(map[uint]map[*Client]bool),
		broadcast: make(chan *broadcastMessage, hubQueueSize),
		done:      make(chan struct{}),
	}
}

// Run delivers broadcasts until ctx is cancelled. On return every client
// send channel is closed and later registrations are refused.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case msg := <-h.broadcast:
			h.mu.RLock()
			var slow []*Client
			for client := range h.rooms[msg.photoID] {
				select {
				case client.send <- msg.data:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range slow {
				logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
					"photo_id": client.PhotoID,
					"user_id":  client.UserID,
				})
				h.Unregister(client)
			}
		}
	}
}

// Register subscribes a client to its photo. After the hub has stopped the
// client's send channel is closed straight away.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(client.send)
		return
	}

	room, ok := h.rooms[client.PhotoID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[client.PhotoID] = room
	}
	room[client] = true

	logger.Debug("Comment stream subscribed", map[string]interface{}{
		"photo_id": client.PhotoID,
		"user_id":  client.UserID,
	})
}

// Unregister drops the client and closes its send channel. Calling it
// twice is safe.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.PhotoID]
	if !ok || !room[client] {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, client.PhotoID)
	}
	close(client.send)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for photoID, room := range h.rooms {
		for client := range room {
			close(client.send)
		}
		delete(h.rooms, photoID)
	}
}

// NotifyComment broadcasts a comment event to the viewers of the photo.
// Events are dropped when the queue is full.
func (h *Hub) NotifyComment(photoID uint, event string, comment *model.Comment) {
	data, err := json.Marshal(Event{Type: event, Comment: comment})
	if err != nil {
		logger.Error("Failed to marshal comment event", err, map[string]interface{}{
			"photo_id": photoID,
		})
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{photoID: photoID, data: data}:
	case <-h.done:
	default:
		logger.Warn("Broadcast queue full, comment event dropped", map[string]interface{}{
			"photo_id": photoID,
			"event":    event,
		})
	}
}

// Subscribers returns the number of clients watching a photo
func (h *Hub) Subscribers(photoID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[photoID])
}
