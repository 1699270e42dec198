package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"idle_garage/internal/catalog"
	"idle_garage/internal/game"
	httpserver "idle_garage/internal/http"
	"idle_garage/internal/http/handlers"
	"idle_garage/internal/repository"
	"idle_garage/internal/service"
	"idle_garage/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func TestE2E_WS_AccrualPush(t *testing.T) {
	db := connectTestDB(t)
	service.InitJWT("test-secret", time.Hour)

	userID := time.Now().UnixNano()
	t.Cleanup(func() {
		_, _ = db.Exec(context.Background(), `DELETE FROM players WHERE user_id = $1`, userID)
		_, _ = db.Exec(context.Background(), `DELETE FROM audit_logs WHERE user_id = $1`, userID)
	})

	audit := service.NewAuditService(repository.NewAuditRepository(db))
	store := repository.NewPlayerRepository(db)
	players := service.NewPlayerService(store, game.NewEngine(catalog.Default(), nil), audit, nil)
	board := service.NewLeaderboardService(store)
	h := handlers.NewHandler(players, board, audit, handlers.HandlerConfig{DevMode: true})

	hub := ws.NewHub(players, nil, 100*time.Millisecond)
	defer hub.Close()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	httpserver.RegisterRoutes(r, httpserver.Deps{
		Handler: h,
		Health:  handlers.NewHealthHandler(handlers.PingFunc(db.Ping), "test", nil),
		Hub:     hub,
	})
	ts := httptest.NewServer(r)
	defer ts.Close()

	// dev mode: init data is trusted as is
	body, _ := json.Marshal(map[string]string{
		"init_data": fmt.Sprintf(`user={"id":%d,"first_name":"E2E"}`, userID),
	})
	resp, err := http.Post(ts.URL+"/api/v1/auth", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("auth: %v", err)
	}
	var auth struct {
		Token string `json:"token"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&auth)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || auth.Token == "" {
		t.Fatalf("auth status = %d", resp.StatusCode)
	}

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws?token=" + auth.Token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// single reader goroutine, ReadMessage is not safe for concurrent use
	msgs := make(chan map[string]any, 64)
	go func() {
		defer close(msgs)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var obj map[string]any
			if json.Unmarshal(raw, &obj) == nil {
				msgs <- obj
			}
		}
	}()

	waitFor := func(match func(map[string]any) bool) map[string]any {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case m, ok := <-msgs:
				if !ok {
					t.Fatalf("connection closed")
				}
				if match(m) {
					return m
				}
			case <-deadline:
				t.Fatalf("timeout waiting for message")
			}
		}
	}

	waitFor(func(m map[string]any) bool { return m["type"] == ws.MsgReady })
	first := waitFor(func(m map[string]any) bool { return m["type"] == ws.MsgAccrual })
	coins := first["game_coins"].(float64)

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/player/buildings/upgrade",
		strings.NewReader(`{"building_id":"wash"}`))
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upgrade status = %d", resp.StatusCode)
	}

	// the session reloads the player after the action
	waitFor(func(m map[string]any) bool {
		return m["type"] == ws.MsgAccrual && m["game_coins"].(float64) < coins
	})
}
