package realtime

import (
	"encoding/json"
	"log"
	"time"

	"github.com/CoreVine/nursy-backend/middleware"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBufferSize = 32
)

// Client is one connected principal. Commands read from the connection are
// handled as independent tasks; results are queued on the send channel and
// written by a single writer goroutine.
type Client struct {
	ID        string
	Principal middleware.Principal

	gateway *Gateway
	conn    *websocket.Conn
	send    chan []byte
}

func newClient(id string, principal middleware.Principal, gateway *Gateway, conn *websocket.Conn) *Client {
	return &Client{
		ID:        id,
		Principal: principal,
		gateway:   gateway,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
	}
}

// Emit queues an event for this client. A slow client whose buffer is full
// drops the event rather than blocking the sender.
func (c *Client) Emit(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal event %q for client %s: %v", event.Event, c.ID, err)
		return
	}
	select {
	case c.send <- payload:
	default:
		log.Printf("Dropping event %q for slow client %s", event.Event, c.ID)
	}
}

// readPump reads commands until the connection drops. Each command is handled
// in its own goroutine; a failing command never terminates the connection.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.gateway.unregister <- c:
		case <-c.gateway.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Client %s read error: %v", c.ID, err)
			}
			return
		}
		go c.gateway.handleCommand(c, raw)
	}
}

// writePump writes queued events and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
