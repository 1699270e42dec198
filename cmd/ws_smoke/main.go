package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"idle_garage/internal/catalog"
	"idle_garage/internal/config"
	"idle_garage/internal/db"
	"idle_garage/internal/game"
	"idle_garage/internal/service"
)

func main() {
	userID := flag.Int64("user", 3001, "telegram user id of the smoke player")
	ticks := flag.Int("ticks", 3, "accrual messages to wait for")
	flag.Parse()

	cfg := config.Load()
	service.InitJWT(cfg.JWTSecret, cfg.JWTTTL)

	stores := db.Open(cfg)
	defer stores.Close()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	audit := service.NewAuditService(stores.Audit)
	players := service.NewPlayerService(stores.Players, game.NewEngine(cat, nil), audit, nil)

	// prepare player
	ctx := context.Background()
	if _, err := players.Load(ctx, *userID, "smoke"); err != nil {
		log.Fatalf("load player: %v", err)
	}
	token, err := service.GenerateJWT(*userID)
	if err != nil {
		log.Fatalf("gen token: %v", err)
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	wsURL := fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s", cfg.AppPort, token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func() map[string]any {
		_ = conn.SetReadDeadline(time.Now().Add(3 * cfg.AccrualTick))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("read: %v", err)
		}
		var obj map[string]any
		_ = json.Unmarshal(msg, &obj)
		return obj
	}

	seen := 0
	refreshed := false
	for seen < *ticks {
		obj := read()
		log.Printf("got %v: accumulated=%v state=%v coins=%v", obj["type"], obj["accumulated"], obj["state"], obj["game_coins"])
		if obj["type"] != "accrual" {
			continue
		}
		seen++
		if !refreshed {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"refresh"}`)); err != nil {
				log.Fatalf("write refresh: %v", err)
			}
			refreshed = true
		}
	}

	log.Println("smoke test finished")
}
