package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"idle_garage/internal/domain"
	"idle_garage/internal/idle"
	"idle_garage/internal/repository"
	"idle_garage/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type stubSource struct {
	mu     sync.Mutex
	player domain.Player
	loads  int
}

func (s *stubSource) Snapshot(_ context.Context, userID int64) (*service.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if userID != s.player.UserID {
		return nil, repository.ErrPlayerNotFound
	}
	return &service.Snapshot{Player: s.player}, nil
}

func (s *stubSource) SnapshotAt(p *domain.Player, at time.Time) *service.Snapshot {
	rate := float64(p.IncomeRatePerHour)
	acc := idle.Tick(at, rate, p.LastCollectedTime, 3)
	return &service.Snapshot{
		Player:      *p,
		Accumulated: acc,
		Cap:         idle.Cap(rate, 3),
		State:       idle.StateOf(acc, rate, 3),
		ServerTime:  at,
	}
}

func (s *stubSource) setCoins(n int64) {
	s.mu.Lock()
	s.player.GameCoins = n
	s.mu.Unlock()
}

func startServer(t *testing.T, tick time.Duration) (*Hub, *stubSource, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	service.InitJWT("ws-test-secret", time.Hour)

	src := &stubSource{player: domain.Player{
		UserID:            7,
		GameCoins:         100,
		IncomeRatePerHour: 3600,
		LastCollectedTime: now.Add(-30 * time.Minute),
	}}
	hub := NewHub(src, &idle.FixedClock{T: now}, tick)
	t.Cleanup(hub.Close)

	r := gin.New()
	r.GET("/ws", HandleWS(hub, ""))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return hub, src, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string, userID int64) *websocket.Conn {
	t.Helper()
	tok, err := service.GenerateJWT(userID)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+tok, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readAccrual(t *testing.T, conn *websocket.Conn) AccrualPayload {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg AccrualPayload
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != MsgAccrual {
		t.Fatalf("type = %q; want accrual", msg.Type)
	}
	return msg
}

func TestSessionPushesAndRefreshes(t *testing.T) {
	hub, src, url := startServer(t, time.Hour)
	conn := dial(t, url, 7)

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ready ReadyPayload
	if err := conn.ReadJSON(&ready); err != nil || ready.Type != MsgReady || ready.SessionID == "" {
		t.Fatalf("ready = %+v, %v", ready, err)
	}

	first := readAccrual(t, conn)
	if first.Accumulated != 1800 || first.Cap != 10800 || first.Rate != 3600 || first.State != idle.StateAccruing {
		t.Fatalf("first tick = %+v", first)
	}
	if first.SessionID != ready.SessionID || first.GameCoins != 100 {
		t.Fatalf("first tick = %+v", first)
	}
	if hub.Online() != 1 {
		t.Fatalf("online = %d; want 1", hub.Online())
	}

	src.setCoins(250)
	if err := conn.WriteJSON(Inbound{Type: MsgRefresh}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := readAccrual(t, conn); got.GameCoins != 250 {
		t.Fatalf("after client refresh coins = %d; want 250", got.GameCoins)
	}

	src.setCoins(400)
	hub.Refresh(7)
	if got := readAccrual(t, conn); got.GameCoins != 400 {
		t.Fatalf("after hub refresh coins = %d; want 400", got.GameCoins)
	}

	if err := conn.WriteJSON(Inbound{Type: MsgPing}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var pong Inbound
	if err := conn.ReadJSON(&pong); err != nil || pong.Type != MsgPong {
		t.Fatalf("pong = %+v, %v", pong, err)
	}
}

func TestTicksAreIdempotent(t *testing.T) {
	_, src, url := startServer(t, 20*time.Millisecond)
	conn := dial(t, url, 7)

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ready ReadyPayload
	if err := conn.ReadJSON(&ready); err != nil {
		t.Fatalf("ready: %v", err)
	}

	a := readAccrual(t, conn)
	b := readAccrual(t, conn)
	c := readAccrual(t, conn)
	if a.Accumulated != b.Accumulated || b.Accumulated != c.Accumulated {
		t.Fatalf("ticks differ at a fixed clock: %v %v %v", a.Accumulated, b.Accumulated, c.Accumulated)
	}

	src.mu.Lock()
	loads := src.loads
	src.mu.Unlock()
	if loads != 1 {
		t.Fatalf("ticks reloaded the player %d times; want 1 load", loads)
	}
}

func TestUnknownPlayerGetsError(t *testing.T) {
	_, _, url := startServer(t, time.Hour)
	conn := dial(t, url, 8)

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ready ReadyPayload
	if err := conn.ReadJSON(&ready); err != nil {
		t.Fatalf("ready: %v", err)
	}
	var msg ErrorPayload
	if err := conn.ReadJSON(&msg); err != nil || msg.Type != MsgError {
		t.Fatalf("error message = %+v, %v", msg, err)
	}
}

func TestHandshakeRequiresToken(t *testing.T) {
	_, _, url := startServer(t, time.Hour)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("dial without token should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("resp = %+v", resp)
	}

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=garbage", nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token: resp = %+v, err = %v", resp, err)
	}
}
