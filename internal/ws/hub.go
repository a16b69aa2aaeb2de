package ws

import (
	"context"
	"sync"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"
	"kanban_board/internal/service"
)

// DropHandler applies a drop event reported by a connected client.
type DropHandler interface {
	HandleDrop(ctx context.Context, ev domain.DropEvent) (service.DropResult, error)
}

// DropLimiter decides whether user may submit another drop.
type DropLimiter interface {
	Allow(ctx context.Context, user string) (bool, error)
}

// Hub fans board snapshots out to every connected client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	last    []byte
	drops   DropHandler
	limiter DropLimiter
}

func NewHub(drops DropHandler) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		drops:   drops,
	}
}

// LimitDrops rate limits drops per user.
func (h *Hub) LimitDrops(l DropLimiter) {
	h.mu.Lock()
	h.limiter = l
	h.mu.Unlock()
}

// Register adds c and queues the latest snapshot for it.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	last := h.last
	n := len(h.clients)
	h.mu.Unlock()

	logger.Debug("ws client registered", "user", c.User, "clients", n)
	if last != nil {
		c.queue(last)
	}
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
	}
	h.mu.Unlock()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastBoard sends the board to every client as a snapshot message.
// Clients whose send buffer is full are dropped.
func (h *Hub) BroadcastBoard(board domain.Board) {
	msg, err := encode(MsgSnapshot, board)
	if err != nil {
		logger.Error("encode snapshot", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = msg
	for c := range h.clients {
		select {
		case c.Send <- msg:
		default:
			logger.Warn("ws client too slow, disconnecting", "user", c.User)
			delete(h.clients, c)
			close(c.Send)
		}
	}
}

func (h *Hub) handleDrop(ctx context.Context, c *Client, ev domain.DropEvent) {
	if h.drops == nil {
		c.sendError("drops are not accepted here")
		return
	}
	h.mu.RLock()
	limiter := h.limiter
	h.mu.RUnlock()
	if limiter != nil {
		ok, err := limiter.Allow(ctx, c.User)
		if err != nil {
			logger.Warn("drop rate limit check failed", "user", c.User, "error", err)
		}
		if !ok {
			c.sendError("rate limit exceeded")
			return
		}
	}

	res, err := h.drops.HandleDrop(ctx, ev)
	if err != nil {
		logger.Warn("ws drop failed", "user", c.User, "error", err)
		c.sendError(err.Error())
		return
	}
	msg, err := encode(MsgDropResult, res)
	if err != nil {
		return
	}
	c.queue(msg)
}
