package ws

import (
	"context"
	"sync"
	"time"

	"idle_garage/internal/domain"
	"idle_garage/internal/idle"
	"idle_garage/internal/service"
)

// SnapshotSource loads a player's accrual view and recomputes it for later
// instants without touching storage.
type SnapshotSource interface {
	Snapshot(ctx context.Context, userID int64) (*service.Snapshot, error)
	SnapshotAt(p *domain.Player, now time.Time) *service.Snapshot
}

// Hub tracks connected clients per user and pushes accrual ticks.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}

	ctx    context.Context
	cancel context.CancelFunc

	Source SnapshotSource
	Clock  idle.Clock
	Tick   time.Duration
}

func NewHub(source SnapshotSource, clock idle.Clock, tick time.Duration) *Hub {
	if clock == nil {
		clock = idle.RealClock{}
	}
	if tick <= 0 {
		tick = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
		ctx:     ctx,
		cancel:  cancel,
		Source:  source,
		Clock:   clock,
		Tick:    tick,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.UserID]
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
}

// Refresh asks every session of the user to reload its snapshot. It is called
// after the player document changed through the HTTP API.
func (h *Hub) Refresh(userID int64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		c.requestRefresh()
	}
}

// Online is the number of connected sessions.
func (h *Hub) Online() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Close disconnects every session.
func (h *Hub) Close() {
	h.cancel()
}
