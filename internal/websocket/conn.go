package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/ikkim/photoshare-backend/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Viewers only send control frames.
	maxMessageSize = 512
)

// Conn wraps the gorilla connection
type Conn struct {
	*websocket.Conn
}

// NewClient wraps an upgraded connection subscribed to photoID
func NewClient(hub *Hub, conn *websocket.Conn, photoID, userID uint) *Client {
	return &Client{
		hub:     hub,
		conn:    &Conn{Conn: conn},
		PhotoID: photoID,
		UserID:  userID,
		send:    make(chan []byte, clientSendBuffer),
	}
}

// Serve registers the client and starts its pumps. It returns immediately.
func (h *Hub) Serve(conn *websocket.Conn, photoID, userID uint) *Client {
	client := NewClient(h, conn, photoID, userID)
	h.Register(client)

	go client.WritePump()
	go client.ReadPump()
	return client
}

// ReadPump reads until the peer goes away. Incoming text is ignored; the
// loop only exists to process pings, pongs and close frames.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket read error", map[string]interface{}{
					"photo_id": c.PhotoID,
					"error":    err.Error(),
				})
			}
			return
		}
	}
}

// WritePump forwards hub events to the peer until the send channel closes
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("Failed to write comment event", map[string]interface{}{
					"photo_id": c.PhotoID,
					"error":    err.Error(),
				})
				c.hub.Unregister(c)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.Unregister(c)
				return
			}
		}
	}
}
