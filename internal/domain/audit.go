package domain

import "time"

// AuditLog represents an audit log entry for tracking important actions
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    int64                  `db:"user_id" json:"user_id"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Audit action categories
const (
	AuditCategoryAuth    = "auth"
	AuditCategoryEconomy = "economy"
	AuditCategoryRace    = "race"
	AuditCategoryAdmin   = "admin"
)

// Audit actions
const (
	AuditActionLogin = "login"

	AuditActionCollect         = "collect"
	AuditActionUpgradePart     = "upgrade_part"
	AuditActionUpgradeBuilding = "upgrade_building"
	AuditActionHireStaff       = "hire_staff"
	AuditActionBuyCar          = "buy_car"
	AuditActionLevelUp         = "level_up"

	AuditActionRaceWin  = "race_win"
	AuditActionRaceLose = "race_lose"

	AuditActionAdminGrant = "admin_grant"
	AuditActionLegacySave = "legacy_save"
)
