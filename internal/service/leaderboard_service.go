package service

import (
	"context"

	"idle_garage/internal/domain"
	"idle_garage/internal/repository"
)

const (
	DefaultLeaderboardLimit = 20
	MaxLeaderboardLimit     = 100
)

// LeaderboardService ranks players by income rate.
type LeaderboardService struct {
	store repository.PlayerStore
}

func NewLeaderboardService(store repository.PlayerStore) *LeaderboardService {
	return &LeaderboardService{store: store}
}

// Top returns the best earners; limit is clamped to [1, MaxLeaderboardLimit].
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	limit = min(limit, MaxLeaderboardLimit)

	entries, err := s.store.TopByIncome(ctx, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	return entries, nil
}

// Rank returns the caller's position; ties share a rank.
func (s *LeaderboardService) Rank(ctx context.Context, userID int64) (domain.LeaderboardEntry, error) {
	rank, err := s.store.RankByIncome(ctx, userID)
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}
	p, err := s.store.Get(ctx, userID)
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}
	return domain.LeaderboardEntry{
		Rank:              rank,
		UserID:            userID,
		FirstName:         p.FirstName,
		IncomeRatePerHour: p.IncomeRatePerHour,
	}, nil
}
