package service

import (
	"context"

	"idle_garage/internal/domain"
	"idle_garage/internal/game"
	"idle_garage/internal/logger"
	"idle_garage/internal/repository"
)

// AuditService handles audit logging
type AuditService struct {
	repo repository.AuditStore
}

// NewAuditService creates a new audit service
func NewAuditService(repo repository.AuditStore) *AuditService {
	return &AuditService{repo: repo}
}

// Log creates a new audit log entry
func (s *AuditService) Log(ctx context.Context, userID int64, action, category string, details map[string]interface{}) {
	log := &domain.AuditLog{
		UserID:   userID,
		Action:   action,
		Category: category,
		Details:  details,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "user_id", userID)
	}
}

// purchase actions keyed by reducer action name
var purchaseActions = map[string]string{
	"upgrade_part":     domain.AuditActionUpgradePart,
	"upgrade_building": domain.AuditActionUpgradeBuilding,
	"hire_staff":       domain.AuditActionHireStaff,
	"buy_car":          domain.AuditActionBuyCar,
}

// LogEffects records purchases, collections, races and level ups of one
// action.
func (s *AuditService) LogEffects(ctx context.Context, userID int64, action game.Action, effects []game.Effect) {
	for _, ef := range effects {
		switch ef.Kind {
		case game.EffectSpent:
			name, ok := purchaseActions[action.Name()]
			if !ok {
				continue
			}
			s.Log(ctx, userID, name, domain.AuditCategoryEconomy, map[string]interface{}{
				"target":   ef.Target,
				"cost":     ef.Amount,
				"currency": ef.Currency,
			})
		case game.EffectCollected, game.EffectSettled:
			s.Log(ctx, userID, domain.AuditActionCollect, domain.AuditCategoryEconomy, map[string]interface{}{
				"amount": ef.Amount,
				"auto":   ef.Kind == game.EffectSettled,
			})
		case game.EffectRace:
			if ef.Race == nil || ef.Race.Result == domain.RaceResultError {
				continue
			}
			act := domain.AuditActionRaceLose
			if ef.Race.Result == domain.RaceResultWin {
				act = domain.AuditActionRaceWin
			}
			details := map[string]interface{}{
				"difficulty": ef.Race.Difficulty,
				"car_id":     ef.Target,
				"win_chance": ef.Race.WinChance,
			}
			if ef.Race.Reward != nil {
				details["coins"] = ef.Race.Reward.Coins
				details["xp"] = ef.Race.Reward.XP
			}
			s.Log(ctx, userID, act, domain.AuditCategoryRace, details)
		case game.EffectLevelUp:
			s.Log(ctx, userID, domain.AuditActionLevelUp, domain.AuditCategoryEconomy, map[string]interface{}{
				"level": ef.Amount,
			})
		}
	}
}

// LogAdminAction logs an admin action
func (s *AuditService) LogAdminAction(ctx context.Context, adminID int64, action string, targetUserID int64, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["admin_id"] = adminID
	details["target_user_id"] = targetUserID

	s.Log(ctx, targetUserID, action, domain.AuditCategoryAdmin, details)
}

// LogLogin logs a user login
func (s *AuditService) LogLogin(ctx context.Context, userID int64, ip string) {
	s.Log(ctx, userID, domain.AuditActionLogin, domain.AuditCategoryAuth, map[string]interface{}{"ip": ip})
}

// GetUserAuditLogs returns audit logs for a user
func (s *AuditService) GetUserAuditLogs(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetByUserID(ctx, userID, limit)
}

// GetRecentLogs returns recent audit logs
func (s *AuditService) GetRecentLogs(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetRecent(ctx, limit)
}
