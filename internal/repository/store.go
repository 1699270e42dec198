package repository

import (
	"context"
	"errors"

	"idle_garage/internal/domain"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrEmptyPatch     = errors.New("nothing to save")
)

// PlayerStore persists player documents keyed by Telegram user id.
type PlayerStore interface {
	Get(ctx context.Context, userID int64) (*domain.Player, error)
	// Create inserts p unless the user already exists; created reports which.
	Create(ctx context.Context, p *domain.Player) (created bool, err error)
	// SaveFields writes only the listed top-level fields of p.
	SaveFields(ctx context.Context, p *domain.Player, fields domain.FieldSet) error
	TopByIncome(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	RankByIncome(ctx context.Context, userID int64) (int64, error)
	Count(ctx context.Context) (int64, error)
	// Each calls fn for every stored player in user id order and stops at the
	// first error.
	Each(ctx context.Context, fn func(*domain.Player) error) error
	Ping(ctx context.Context) error
}

// AuditStore persists audit log entries.
type AuditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error)
	GetRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error)
}
