package handlers

import (
	"idle_garage/internal/catalog"
	"idle_garage/internal/service"
)

// Notifier is told when a player's document changed so live sessions reload.
type Notifier interface {
	Refresh(userID int64)
}

// HandlerConfig holds configuration for handler
type HandlerConfig struct {
	BotToken string
	DevMode  bool
}

type Handler struct {
	Players     *service.PlayerService
	Leaderboard *service.LeaderboardService
	Audit       *service.AuditService
	Catalog     *catalog.Catalog
	Notifier    Notifier
	BotToken    string
	DevMode     bool
}

func NewHandler(players *service.PlayerService, board *service.LeaderboardService, audit *service.AuditService, cfg HandlerConfig) *Handler {
	return &Handler{
		Players:     players,
		Leaderboard: board,
		Audit:       audit,
		Catalog:     players.Engine().Catalog(),
		BotToken:    cfg.BotToken,
		DevMode:     cfg.DevMode,
	}
}

func (h *Handler) notify(userID int64) {
	if h.Notifier != nil {
		h.Notifier.Refresh(userID)
	}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c interface{ Get(string) (any, bool) }) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
