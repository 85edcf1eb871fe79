package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	// writeTimeout bounds a single frame write to a dashboard
	writeTimeout = 5 * time.Second

	// idleTimeout closes a dashboard that stopped answering pings
	idleTimeout = 45 * time.Second

	// pingEvery keeps idle status streams alive; shorter than idleTimeout
	pingEvery = idleTimeout * 2 / 3

	// maxInbound caps frames read from dashboards, which only send
	// control frames
	maxInbound = 1024

	// sendBuffer is how many status updates a client may lag behind
	sendBuffer = 64
)

// Client is one dashboard connection subscribed to a hub
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// NewClient subscribes conn to hub. Against a stopped hub the client's
// queue is closed at once and Run returns after a close frame.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return newClient(hub, conn, sendBuffer)
}

func newClient(hub *Hub, conn *websocket.Conn, buffer int) *Client {
	c := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan Message, buffer),
	}
	if !hub.join(c) {
		close(c.send)
	}
	return c
}

// Run serves the connection until the dashboard goes away or the hub
// drops it. Call it from the websocket handler; it blocks.
func (c *Client) Run() {
	go c.write()
	c.read()
}

func (m Message) frameType() int {
	if m.Type == BinaryMessage {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// read discards inbound frames; it exists to process pongs and notice a
// closed connection
func (c *Client) read() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInbound)
	c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// write is the connection's only writer: queued messages and pings
func (c *Client) write() {
	ping := time.NewTicker(pingEvery)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// dropped or hub stopped
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(msg.frameType(), msg.Data); err != nil {
				return
			}

		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
