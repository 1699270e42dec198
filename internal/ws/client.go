package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"idle_garage/internal/domain"
	"idle_garage/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

// Client is one websocket session. Only Run touches player; only writePump
// writes to Conn.
type Client struct {
	ID     string
	UserID int64
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub

	player    domain.Player
	refresh   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	log       *slog.Logger
}

func NewClient(userID int64, conn *websocket.Conn, hub *Hub) *Client {
	id := uuid.NewString()
	return &Client{
		ID:      id,
		UserID:  userID,
		Conn:    conn,
		Send:    make(chan []byte, 64),
		Hub:     hub,
		refresh: make(chan struct{}, 1),
		done:    make(chan struct{}),
		log:     logger.With("component", "ws", "session_id", id, "user_id", userID),
	}
}

// Run blocks until the connection closes or the hub shuts down. Ticks only
// read the last loaded snapshot, so they never change stored state.
func (c *Client) Run() {
	ctx := c.Hub.ctx
	c.Hub.register(c)
	defer func() {
		c.Hub.unregister(c)
		c.stop()
		c.log.Debug("session closed")
	}()

	// стартуем writer до первого сообщения
	go c.writePump()
	go c.readPump()

	c.enqueue(ReadyPayload{Type: MsgReady, SessionID: c.ID})
	if !c.reload() {
		return
	}
	c.push()

	ticker := time.NewTicker(c.Hub.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.push()
		case <-c.refresh:
			if !c.reload() {
				return
			}
			c.push()
		}
	}
}

func (c *Client) reload() bool {
	snap, err := c.Hub.Source.Snapshot(c.Hub.ctx, c.UserID)
	if err != nil {
		c.log.Warn("snapshot load failed", "error", err)
		c.enqueue(ErrorPayload{Type: MsgError, Message: "player unavailable"})
		return false
	}
	c.player = snap.Player
	return true
}

func (c *Client) push() {
	snap := c.Hub.Source.SnapshotAt(&c.player, c.Hub.Clock.Now().UTC())
	c.enqueue(accrualFrom(c.ID, snap))
}

func (c *Client) enqueue(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		c.log.Error("marshal ws message", "error", err)
		return
	}
	select {
	case c.Send <- msg:
	case <-c.done:
	default:
		c.log.Warn("send buffer full, dropping message")
	}
}

func (c *Client) requestRefresh() {
	select {
	case c.refresh <- struct{}{}:
	default:
	}
}

// stop ends the session; writePump flushes queued messages and closes Conn.
func (c *Client) stop() {
	c.closeOnce.Do(func() { close(c.done) })
}

//read
func (c *Client) readPump() {
	defer c.stop()

	c.Conn.SetReadLimit(1024)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("read error", "error", err)
			}
			return
		}
		var in Inbound
		if err := json.Unmarshal(msg, &in); err != nil {
			c.enqueue(ErrorPayload{Type: MsgError, Message: "invalid message"})
			continue
		}
		switch in.Type {
		case MsgRefresh:
			c.requestRefresh()
		case MsgPing:
			c.enqueue(Inbound{Type: MsgPong})
		default:
			c.enqueue(ErrorPayload{Type: MsgError, Message: "unknown message type"})
		}
	}
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.flush()
			return
		case msg := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("write error", "error", err)
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

func (c *Client) flush() {
	for {
		select {
		case msg := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		default:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
