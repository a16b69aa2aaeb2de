package ws

import (
	"context"
	"encoding/json"
	"time"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
	dropWait   = 10 * time.Second
)

type Client struct {
	User string
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub
}

func NewClient(user string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		User: user,
		Conn: conn,
		Send: make(chan []byte, 64),
		Hub:  hub,
	}
}

// Run serves the connection until the peer goes away.
func (c *Client) Run() {
	go c.writePump()
	c.Hub.Register(c)
	c.readPump()
}

// queue sends msg unless the client is already gone or backed up.
func (c *Client) queue(msg []byte) {
	c.Hub.mu.RLock()
	defer c.Hub.mu.RUnlock()
	if _, ok := c.Hub.clients[c]; !ok {
		return
	}
	select {
	case c.Send <- msg:
	default:
		logger.Warn("ws send buffer full", "user", c.User)
	}
}

func (c *Client) sendError(text string) {
	if msg, err := encode(MsgError, ErrorPayload{Message: text}); err == nil {
		c.queue(msg)
	}
}

//read
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws read error", "user", c.User, "error", err)
			}
			return
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		c.sendError("malformed message")
		return
	}

	switch env.Type {
	case MsgPing:
		if out, err := encode(MsgPong, nil); err == nil {
			c.queue(out)
		}
	case MsgDrop:
		var ev domain.DropEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			c.sendError("malformed drop event")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), dropWait)
		defer cancel()
		c.Hub.handleDrop(ctx, c, ev)
	default:
		c.sendError("unknown message type " + env.Type)
	}
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws write error", "user", c.User, "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
