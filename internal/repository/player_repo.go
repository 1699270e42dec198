package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"idle_garage/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlayerRepository stores players in Postgres. The document lives in a JSONB
// column; first_name and income_rate_per_hour are copied out for the
// leaderboard index.
type PlayerRepository struct {
	db *pgxpool.Pool
}

func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) Get(ctx context.Context, userID int64) (*domain.Player, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT doc FROM players WHERE user_id = $1`, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodePlayer(userID, raw)
}

func (r *PlayerRepository) Create(ctx context.Context, p *domain.Player) (bool, error) {
	doc, err := json.Marshal(p)
	if err != nil {
		return false, err
	}
	tag, err := r.db.Exec(ctx, `
		INSERT INTO players (user_id, first_name, income_rate_per_hour, doc)
		VALUES ($1, $2, $3, $4::jsonb)
		ON CONFLICT (user_id) DO NOTHING
	`, p.UserID, p.FirstName, p.IncomeRatePerHour, doc)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SaveFields merges the dirty keys into the stored document with jsonb ||.
func (r *PlayerRepository) SaveFields(ctx context.Context, p *domain.Player, fields domain.FieldSet) error {
	if fields.Empty() {
		return ErrEmptyPatch
	}
	patch, err := fields.Patch(p)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(patch)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE players
		SET doc = doc || $2::jsonb,
		    first_name = $3,
		    income_rate_per_hour = $4,
		    updated_at = now()
		WHERE user_id = $1
	`, p.UserID, raw, p.FirstName, p.IncomeRatePerHour)
	if err != nil {
		return fmt.Errorf("save player %d: %w", p.UserID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// TopByIncome returns players ordered by income rate desc
func (r *PlayerRepository) TopByIncome(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, first_name, income_rate_per_hour
		FROM players
		ORDER BY income_rate_per_hour DESC, user_id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.FirstName, &e.IncomeRatePerHour); err != nil {
			return nil, err
		}
		e.Rank = int64(len(res) + 1)
		res = append(res, e)
	}
	return res, rows.Err()
}

// RankByIncome returns 1 + number of players earning strictly more.
func (r *PlayerRepository) RankByIncome(ctx context.Context, userID int64) (int64, error) {
	var rank int64
	err := r.db.QueryRow(ctx, `
		SELECT 1 + (SELECT COUNT(*) FROM players o WHERE o.income_rate_per_hour > p.income_rate_per_hour)
		FROM players p
		WHERE p.user_id = $1
	`, userID).Scan(&rank)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrPlayerNotFound
	}
	return rank, err
}

func (r *PlayerRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM players`).Scan(&n)
	return n, err
}

func (r *PlayerRepository) Each(ctx context.Context, fn func(*domain.Player) error) error {
	rows, err := r.db.Query(ctx, `SELECT user_id, doc FROM players ORDER BY user_id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  int64
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return err
		}
		p, err := decodePlayer(id, raw)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *PlayerRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func decodePlayer(userID int64, raw []byte) (*domain.Player, error) {
	var p domain.Player
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode player %d: %w", userID, err)
	}
	p.UserID = userID
	return &p, nil
}
