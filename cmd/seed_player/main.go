package main

import (
	"context"
	"flag"
	"log"
	"time"

	"idle_garage/internal/catalog"
	"idle_garage/internal/config"
	"idle_garage/internal/db"
	"idle_garage/internal/game"
	"idle_garage/internal/logger"
	"idle_garage/internal/service"
)

func main() {
	userID := flag.Int64("user", 1234567890, "telegram user id")
	name := flag.String("name", "Tester", "first name")
	coins := flag.Int64("coins", 0, "extra game coins to grant")
	jet := flag.Int64("jet", 0, "extra jet coins to grant")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret, cfg.JWTTTL)

	stores := db.Open(cfg)
	defer stores.Close()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	if cfg.MaxOfflineHours > 0 {
		cat.Defaults.MaxOfflineHours = cfg.MaxOfflineHours
	}

	audit := service.NewAuditService(stores.Audit)
	players := service.NewPlayerService(stores.Players, game.NewEngine(cat, nil), audit, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, err := players.Load(ctx, *userID, *name)
	if err != nil {
		log.Fatalf("load player failed: %v", err)
	}
	log.Printf("player user_id=%d level=%d coins=%d rate=%d/h\n",
		snap.Player.UserID, snap.Player.PlayerLevel, snap.Player.GameCoins, snap.Player.IncomeRatePerHour)

	if *coins != 0 || *jet != 0 {
		p, err := players.Grant(ctx, *userID, *coins, *jet)
		if err != nil {
			log.Fatalf("grant failed: %v", err)
		}
		log.Printf("granted coins=%d jet=%d balance=%d/%d\n", *coins, *jet, p.GameCoins, p.JetCoins)
	}

	token, err := service.GenerateJWT(*userID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
