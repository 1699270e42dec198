package db

import (
	"context"
	"time"

	"idle_garage/internal/config"
	"idle_garage/internal/logger"
	"idle_garage/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(dsn string) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Fatal("failed to create database pool", "error", err)
	}

	if err := db.Ping(ctx); err != nil {
		logger.Fatal("failed to ping database", "error", err)
	}

	logger.Info("database connected", "store", config.StorePostgres)
	return db
}

// Stores are the repositories selected by STORE.
type Stores struct {
	Players repository.PlayerStore
	Audit   repository.AuditStore
	Close   func()
}

// Open connects the configured backend. Postgres expects the schema from
// cmd/migrate; SQLite creates its own.
func Open(cfg *config.Config) Stores {
	if cfg.Store == config.StoreSQLite {
		sdb, err := repository.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			logger.Fatal("failed to open sqlite", "path", cfg.SQLitePath, "error", err)
		}
		logger.Info("database connected", "store", config.StoreSQLite, "path", cfg.SQLitePath)
		return Stores{
			Players: repository.NewSQLitePlayerRepository(sdb),
			Audit:   repository.NewSQLiteAuditRepository(sdb),
			Close:   func() { _ = sdb.Close() },
		}
	}

	pool := Connect(cfg.DatabaseURL)
	return Stores{
		Players: repository.NewPlayerRepository(pool),
		Audit:   repository.NewAuditRepository(pool),
		Close:   pool.Close,
	}
}
