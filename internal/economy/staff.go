package economy

import (
	"idle_garage/internal/catalog"
	"idle_garage/internal/domain"
)

// maxPartDiscount caps the mechanic discount.
const maxPartDiscount = 50.0

func staffBonus(cat *catalog.Catalog, hired domain.HiredStaff, kind string) float64 {
	if cat == nil {
		return 0
	}
	role, ok := cat.StaffByBonus(kind)
	if !ok {
		return 0
	}
	level := min(max(hired[role.ID], 0), role.MaxLevel)
	return float64(level) * role.BonusPerLevel
}

// ManagerBonusPercent is the income percentage granted by the hired manager.
func ManagerBonusPercent(cat *catalog.Catalog, hired domain.HiredStaff) float64 {
	return staffBonus(cat, hired, catalog.BonusIncomePercent)
}

// PartDiscountPercent is the mechanic discount on part upgrades.
func PartDiscountPercent(cat *catalog.Catalog, hired domain.HiredStaff) float64 {
	return min(staffBonus(cat, hired, catalog.BonusPartDiscountPercent), maxPartDiscount)
}

// DiscountedPartCost applies the mechanic discount to PartUpgradeCost.
func DiscountedPartCost(cat *catalog.Catalog, partID string, level int, hired domain.HiredStaff) int64 {
	cost := PartUpgradeCost(cat, partID, level)
	pct := PartDiscountPercent(cat, hired)
	if pct <= 0 {
		return cost
	}
	return clampCost(float64(cost) * (1 - pct/100))
}

// OfflineCapHours is the accrual cap: the catalog default plus dispatcher
// hours.
func OfflineCapHours(cat *catalog.Catalog, hired domain.HiredStaff) float64 {
	if cat == nil {
		return 0
	}
	return cat.Defaults.MaxOfflineHours + staffBonus(cat, hired, catalog.BonusOfflineHours)
}
