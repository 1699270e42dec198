package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"idle_garage/internal/catalog"
	"idle_garage/internal/game"
	"idle_garage/internal/idle"
	"idle_garage/internal/repository"
	"idle_garage/internal/service"
)

func newCommands(t *testing.T) (*Commands, *service.PlayerService) {
	t.Helper()
	db, err := repository.OpenSQLite(repository.MemoryDSN)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := repository.NewSQLitePlayerRepository(db)
	audit := service.NewAuditService(repository.NewSQLiteAuditRepository(db))
	clock := &idle.FixedClock{T: time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)}
	players := service.NewPlayerService(store, game.NewEngine(catalog.Default(), nil), audit, clock)
	admin := service.NewAdminService(store, players, audit)
	return NewCommands(admin, service.NewLeaderboardService(store)), players
}

func TestCommands(t *testing.T) {
	cmds, players := newCommands(t)
	ctx := context.Background()
	if _, err := players.Load(ctx, 501, "<Ivan>"); err != nil {
		t.Fatalf("load: %v", err)
	}

	tests := []struct {
		name    string
		command string
		args    string
		want    []string
	}{
		{"help", "help", "", []string{"/grant", "/player", "/top"}},
		{"unknown", "ban", "1", []string{"Неизвестная команда"}},
		{"player usage", "player", "abc", []string{"Использование"}},
		{"player missing", "player", "404", []string{"не найден"}},
		{"player", "player", "501", []string{"Игрок 501", "&lt;Ivan&gt;", "Монеты: 500"}},
		{"grant usage", "grant", "501", []string{"Использование"}},
		{"grant bad amount", "grant", "501 lots", []string{"Неверная сумма"}},
		{"grant missing", "grant", "404 10", []string{"не найден"}},
		{"grant", "grant", "501 250 3", []string{"Баланс: 750", "3 ✈️"}},
		{"top", "top", "5", []string{"1. &lt;Ivan&gt; (501) - 15/ч"}},
		{"stats", "stats", "", []string{"Всего: 1", "Монет на руках: 750"}},
		{"audit", "audit", "501", []string{"admin_grant"}},
		{"audit usage", "audit", "x", []string{"Использование"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cmds.Handle(ctx, 9000, tt.command, tt.args)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Fatalf("reply %q does not contain %q", got, w)
				}
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	ids := []int64{1, 2}
	if !isAdmin(ids, 2) || isAdmin(ids, 3) || isAdmin(nil, 1) {
		t.Fatalf("isAdmin mismatch")
	}
}
