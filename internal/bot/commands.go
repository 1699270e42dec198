package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"idle_garage/internal/domain"
	"idle_garage/internal/repository"
	"idle_garage/internal/service"
)

// Commands renders replies to admin commands. It has no Telegram dependency so
// it can be driven directly.
type Commands struct {
	admin *service.AdminService
	board *service.LeaderboardService
}

func NewCommands(admin *service.AdminService, board *service.LeaderboardService) *Commands {
	return &Commands{admin: admin, board: board}
}

// Handle returns the HTML reply for one command issued by adminID.
func (c *Commands) Handle(ctx context.Context, adminID int64, command, args string) string {
	switch command {
	case "start", "help":
		return helpMessage
	case "stats":
		return c.stats(ctx)
	case "player":
		return c.player(ctx, args)
	case "grant":
		return c.grant(ctx, adminID, args)
	case "top":
		return c.top(ctx, args)
	case "audit":
		return c.audit(ctx, args)
	default:
		return "❌ Неизвестная команда. Используйте /help для списка команд."
	}
}

const helpMessage = `<b>🤖 Команды администратора</b>

<b>📊 Статистика:</b>
/stats - Статистика гаража
/top [лимит] - Топ игроков по доходу в час
/audit [user_id] - Последние события

<b>👤 Игроки:</b>
/player &lt;user_id&gt; - Информация об игроке
/grant &lt;user_id&gt; &lt;монеты&gt; [jet] - Начислить валюту (отрицательное значение списывает)`

func (c *Commands) stats(ctx context.Context) string {
	stats, err := c.admin.GetStats(ctx)
	if err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	return fmt.Sprintf(`<b>📊 Статистика гаража</b>

<b>👥 Игроки:</b>
• Всего: %d
• Прошли обучение: %d
• Средний уровень: %.1f
• Максимальный уровень: %d

<b>💰 Экономика:</b>
• Монет на руках: %d
• Jet монет: %d
• Доход всех игроков: %d/ч
• Машин во владении: %d`,
		stats.TotalPlayers,
		stats.TutorialCompleted,
		stats.AvgLevel,
		stats.MaxLevel,
		stats.TotalGameCoins,
		stats.TotalJetCoins,
		stats.TotalIncomePerHour,
		stats.CarsOwned,
	)
}

func (c *Commands) player(ctx context.Context, args string) string {
	userID, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil || userID <= 0 {
		return "❌ Использование: /player <user_id>"
	}

	p, err := c.admin.Player(ctx, userID)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		return fmt.Sprintf("❌ Игрок %d не найден", userID)
	}
	if err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	return fmt.Sprintf(`<b>👤 Игрок %d</b>

• Имя: %s
• Уровень: %d (%d/%d XP)
• 🪙 Монеты: %d
• ✈️ Jet: %d
• Доход: %d/ч
• Машина: %s
• Машин: %d
• Обучение: %s`,
		p.UserID,
		html.EscapeString(p.FirstName),
		p.PlayerLevel, p.CurrentXP, p.XPToNextLevel,
		p.GameCoins,
		p.JetCoins,
		p.IncomeRatePerHour,
		html.EscapeString(p.SelectedCarID),
		len(p.PlayerCars),
		yesNo(p.HasCompletedTutorial),
	)
}

func (c *Commands) grant(ctx context.Context, adminID int64, args string) string {
	parts := strings.Fields(args)
	if len(parts) != 2 && len(parts) != 3 {
		return "❌ Использование: /grant <user_id> <монеты> [jet]"
	}

	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || userID <= 0 {
		return "❌ Неверный ID пользователя"
	}
	coins, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "❌ Неверная сумма"
	}
	var jet int64
	if len(parts) == 3 {
		if jet, err = strconv.ParseInt(parts[2], 10, 64); err != nil {
			return "❌ Неверная сумма jet"
		}
	}

	p, err := c.admin.Grant(ctx, adminID, userID, coins, jet)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		return fmt.Sprintf("❌ Игрок %d не найден", userID)
	}
	if err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	return fmt.Sprintf("✅ Игроку %d начислено %d 🪙 и %d ✈️. Баланс: %d 🪙, %d ✈️",
		userID, coins, jet, p.GameCoins, p.JetCoins)
}

func (c *Commands) top(ctx context.Context, args string) string {
	limit := 10
	if args != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(args)); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	entries, err := c.board.Top(ctx, limit)
	if err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}
	if len(entries) == 0 {
		return "Пока нет игроков"
	}

	var sb strings.Builder
	sb.WriteString("<b>🏆 Топ по доходу</b>\n\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "%d. %s (%d) - %d/ч\n", e.Rank, html.EscapeString(e.FirstName), e.UserID, e.IncomeRatePerHour)
	}
	return sb.String()
}

func (c *Commands) audit(ctx context.Context, args string) string {
	var userID int64
	if s := strings.TrimSpace(args); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return "❌ Использование: /audit [user_id]"
		}
		userID = id
	}

	logs, err := c.admin.RecentAudit(ctx, userID, 15)
	if err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}
	if len(logs) == 0 {
		return "Событий нет"
	}

	var sb strings.Builder
	sb.WriteString("<b>📜 Последние события</b>\n\n")
	for _, l := range logs {
		fmt.Fprintf(&sb, "%s • %d • %s%s\n",
			l.CreatedAt.Format("02.01 15:04"), l.UserID, l.Action, auditDetail(l))
	}
	return sb.String()
}

func auditDetail(l *domain.AuditLog) string {
	for _, key := range []string{"target", "amount", "coins", "level"} {
		if v, ok := l.Details[key]; ok {
			return fmt.Sprintf(" (%s=%v)", key, html.EscapeString(fmt.Sprint(v)))
		}
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "да"
	}
	return "нет"
}
