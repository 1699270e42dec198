package service

import (
	"context"

	"idle_garage/internal/domain"
	"idle_garage/internal/repository"
)

// AdminService provides admin statistics and operations
type AdminService struct {
	store   repository.PlayerStore
	players *PlayerService
	audit   *AuditService
}

// NewAdminService creates a new admin service
func NewAdminService(store repository.PlayerStore, players *PlayerService, audit *AuditService) *AdminService {
	return &AdminService{store: store, players: players, audit: audit}
}

// Stats represents economy-wide statistics
type Stats struct {
	TotalPlayers       int64   `json:"total_players"`
	TotalGameCoins     int64   `json:"total_game_coins"`
	TotalJetCoins      int64   `json:"total_jet_coins"`
	TotalIncomePerHour int64   `json:"total_income_per_hour"`
	AvgLevel           float64 `json:"avg_level"`
	MaxLevel           int     `json:"max_level"`
	CarsOwned          int64   `json:"cars_owned"`
	TutorialCompleted  int64   `json:"tutorial_completed"`
}

// GetStats scans every player document.
func (s *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	var levels int64
	err := s.store.Each(ctx, func(p *domain.Player) error {
		stats.TotalPlayers++
		stats.TotalGameCoins = clampAdd(stats.TotalGameCoins, p.GameCoins)
		stats.TotalJetCoins = clampAdd(stats.TotalJetCoins, p.JetCoins)
		stats.TotalIncomePerHour = clampAdd(stats.TotalIncomePerHour, p.IncomeRatePerHour)
		stats.CarsOwned += int64(len(p.PlayerCars))
		levels += int64(p.PlayerLevel)
		stats.MaxLevel = max(stats.MaxLevel, p.PlayerLevel)
		if p.HasCompletedTutorial {
			stats.TutorialCompleted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if stats.TotalPlayers > 0 {
		stats.AvgLevel = float64(levels) / float64(stats.TotalPlayers)
	}
	return stats, nil
}

// Player returns a stored player.
func (s *AdminService) Player(ctx context.Context, userID int64) (*domain.Player, error) {
	return s.players.Get(ctx, userID)
}

// Grant credits currency to a player and records who did it.
func (s *AdminService) Grant(ctx context.Context, adminID, userID, gameCoins, jetCoins int64) (*domain.Player, error) {
	p, err := s.players.Grant(ctx, userID, gameCoins, jetCoins)
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.LogAdminAction(ctx, adminID, domain.AuditActionAdminGrant, userID, map[string]interface{}{
			"game_coins": gameCoins,
			"jet_coins":  jetCoins,
		})
	}
	return p, nil
}

// RecentAudit returns the latest audit entries, optionally for one user.
func (s *AdminService) RecentAudit(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	if s.audit == nil {
		return nil, nil
	}
	if userID != 0 {
		return s.audit.GetUserAuditLogs(ctx, userID, limit)
	}
	return s.audit.GetRecentLogs(ctx, limit)
}

