package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"idle_garage/internal/domain"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// OpenSQLite opens (creating if needed) a SQLite database with the players and
// audit_logs tables. One connection is kept so :memory: databases survive
// between calls.
func OpenSQLite(path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty sqlite path")
	}
	if path != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func initPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sqlx.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS players (
			user_id INTEGER PRIMARY KEY,
			first_name TEXT NOT NULL DEFAULT '',
			income_rate_per_hour INTEGER NOT NULL DEFAULT 0,
			doc TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS players_income_idx ON players(income_rate_per_hour DESC);`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			action TEXT NOT NULL,
			category TEXT NOT NULL,
			details TEXT NOT NULL DEFAULT '{}',
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS audit_logs_user_idx ON audit_logs(user_id, created_at DESC);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// SQLitePlayerRepository is the PlayerStore used for local runs and tests.
type SQLitePlayerRepository struct {
	db *sqlx.DB
}

func NewSQLitePlayerRepository(db *sqlx.DB) *SQLitePlayerRepository {
	return &SQLitePlayerRepository{db: db}
}

type playerRow struct {
	UserID int64  `db:"user_id"`
	Doc    string `db:"doc"`
}

func (r *SQLitePlayerRepository) Get(ctx context.Context, userID int64) (*domain.Player, error) {
	var row playerRow
	err := r.db.GetContext(ctx, &row, `SELECT user_id, doc FROM players WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodePlayer(row.UserID, []byte(row.Doc))
}

func (r *SQLitePlayerRepository) Create(ctx context.Context, p *domain.Player) (bool, error) {
	doc, err := json.Marshal(p)
	if err != nil {
		return false, err
	}
	now := time.Now().UnixMilli()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO players (user_id, first_name, income_rate_per_hour, doc, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING
	`, p.UserID, p.FirstName, p.IncomeRatePerHour, string(doc), now, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// SaveFields overlays the dirty keys on the stored document inside a
// transaction.
func (r *SQLitePlayerRepository) SaveFields(ctx context.Context, p *domain.Player, fields domain.FieldSet) error {
	if fields.Empty() {
		return ErrEmptyPatch
	}
	patch, err := fields.Patch(p)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var stored string
	err = tx.GetContext(ctx, &stored, `SELECT doc FROM players WHERE user_id = ?`, p.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPlayerNotFound
	}
	if err != nil {
		return err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stored), &doc); err != nil || doc == nil {
		doc = make(map[string]json.RawMessage, len(patch))
	}
	for k, v := range patch {
		doc[k] = v
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE players
		SET doc = ?, first_name = ?, income_rate_per_hour = ?, updated_at = ?
		WHERE user_id = ?
	`, string(merged), p.FirstName, p.IncomeRatePerHour, time.Now().UnixMilli(), p.UserID); err != nil {
		return fmt.Errorf("save player %d: %w", p.UserID, err)
	}
	return tx.Commit()
}

func (r *SQLitePlayerRepository) TopByIncome(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	var res []domain.LeaderboardEntry
	err := r.db.SelectContext(ctx, &res, `
		SELECT user_id, first_name, income_rate_per_hour
		FROM players
		ORDER BY income_rate_per_hour DESC, user_id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	for i := range res {
		res[i].Rank = int64(i + 1)
	}
	return res, nil
}

func (r *SQLitePlayerRepository) RankByIncome(ctx context.Context, userID int64) (int64, error) {
	var rank int64
	err := r.db.GetContext(ctx, &rank, `
		SELECT 1 + (SELECT COUNT(*) FROM players o WHERE o.income_rate_per_hour > p.income_rate_per_hour)
		FROM players p
		WHERE p.user_id = ?
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrPlayerNotFound
	}
	return rank, err
}

func (r *SQLitePlayerRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM players`)
	return n, err
}

func (r *SQLitePlayerRepository) Each(ctx context.Context, fn func(*domain.Player) error) error {
	rows, err := r.db.QueryxContext(ctx, `SELECT user_id, doc FROM players ORDER BY user_id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row playerRow
		if err := rows.StructScan(&row); err != nil {
			return err
		}
		p, err := decodePlayer(row.UserID, []byte(row.Doc))
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *SQLitePlayerRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SQLiteAuditRepository is the AuditStore companion of SQLitePlayerRepository.
type SQLiteAuditRepository struct {
	db *sqlx.DB
}

func NewSQLiteAuditRepository(db *sqlx.DB) *SQLiteAuditRepository {
	return &SQLiteAuditRepository{db: db}
}

type auditRow struct {
	ID        int64  `db:"id"`
	UserID    int64  `db:"user_id"`
	Action    string `db:"action"`
	Category  string `db:"category"`
	Details   string `db:"details"`
	CreatedAt int64  `db:"created_at"`
}

func (r *SQLiteAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	detailsJSON, err := json.Marshal(log.Details)
	if err != nil {
		detailsJSON = []byte("{}")
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (user_id, action, category, details, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, log.UserID, log.Action, log.Category, string(detailsJSON), log.CreatedAt.UnixMilli())
	if err != nil {
		return err
	}
	log.ID, err = res.LastInsertId()
	return err
}

func (r *SQLiteAuditRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	var rows []auditRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, action, category, details, created_at
		FROM audit_logs
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return toAuditLogs(rows), nil
}

func (r *SQLiteAuditRepository) GetRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	var rows []auditRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, action, category, details, created_at
		FROM audit_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	return toAuditLogs(rows), nil
}

func toAuditLogs(rows []auditRow) []*domain.AuditLog {
	logs := make([]*domain.AuditLog, 0, len(rows))
	for _, row := range rows {
		log := &domain.AuditLog{
			ID:        row.ID,
			UserID:    row.UserID,
			Action:    row.Action,
			Category:  row.Category,
			CreatedAt: time.UnixMilli(row.CreatedAt).UTC(),
		}
		if err := json.Unmarshal([]byte(row.Details), &log.Details); err != nil {
			log.Details = make(map[string]interface{})
		}
		logs = append(logs, log)
	}
	return logs
}
