package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"idle_garage/internal/bot"
	"idle_garage/internal/catalog"
	"idle_garage/internal/config"
	"idle_garage/internal/db"
	"idle_garage/internal/game"
	httpServer "idle_garage/internal/http"
	"idle_garage/internal/http/handlers"
	"idle_garage/internal/http/middleware"
	"idle_garage/internal/logger"
	"idle_garage/internal/service"
	"idle_garage/internal/ws"

	"github.com/gin-gonic/gin"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret, cfg.JWTTTL)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("failed to load catalog", "path", cfg.CatalogPath, "error", err)
	}
	if cfg.MaxOfflineHours > 0 {
		cat.Defaults.MaxOfflineHours = cfg.MaxOfflineHours
	}

	stores := db.Open(cfg)
	defer stores.Close()

	audit := service.NewAuditService(stores.Audit)
	players := service.NewPlayerService(stores.Players, game.NewEngine(cat, nil), audit, nil)
	board := service.NewLeaderboardService(stores.Players)

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer middleware.CloseRedis()

	hub := ws.NewHub(players, nil, cfg.AccrualTick)
	h := handlers.NewHandler(players, board, audit, handlers.HandlerConfig{
		BotToken: cfg.BotToken,
		DevMode:  cfg.DevMode,
	})
	health := handlers.NewHealthHandler(stores.Players, version, map[string]handlers.Pinger{
		"redis": handlers.PingFunc(middleware.RedisPing),
	})

	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Handler: h,
		Health:  health,
		Hub:     hub,
		Limits: httpServer.Limits{
			API:          cfg.APIRateLimit,
			APIWindow:    cfg.APIRateWindow,
			Auth:         cfg.AuthRateLimit,
			AuthWindow:   cfg.AuthRateWindow,
			Action:       cfg.ActionRateLimit,
			ActionWindow: cfg.ActionRateWindow,
		},
		AllowedOrigin: cfg.AllowedOrigin,
	})

	var adminBot *bot.AdminBot
	if cfg.AdminBotEnabled && cfg.BotToken != "" {
		admin := service.NewAdminService(stores.Players, players, audit)
		adminBot, err = bot.NewAdminBot(cfg.BotToken, bot.NewCommands(admin, board), cfg.AdminTelegramIDs)
		if err != nil {
			logger.Error("admin bot disabled", "error", err)
		} else {
			go adminBot.Start()
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "store", cfg.Store, "dev_mode", cfg.DevMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Close()
	if adminBot != nil {
		adminBot.Stop()
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
