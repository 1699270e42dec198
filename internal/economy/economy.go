// Package economy computes prices, car stats, income rates and race outcomes.
// Everything here is a pure function over the catalog and player data; bad
// references degrade to zero instead of failing.
package economy

import (
	"math"

	"idle_garage/internal/catalog"
	"idle_garage/internal/domain"
)

// Part ids with stat effects.
const (
	PartEngine          = "engine"
	PartTires           = "tires"
	PartStyleBody       = "style_body"
	PartReliabilityBase = "reliability_base"
)

// per-level modifiers
const (
	enginePower          = 5
	tiresSpeed           = 3
	tiresWearEvery       = 5 // -1 reliability per this many tire levels
	styleBodyStyle       = 4
	styleBodyIncome      = 2
	reliabilityBaseBonus = 5

	partCostGrowth = 1.5
	minStat        = 1
)

// CarStats is the derived view of a car: its four stats plus an income bonus
// that only feeds TotalIncomeRate.
type CarStats struct {
	domain.CarStats
	IncomeBonus int64 `json:"income_bonus"`
}

// RecomputeCarStats derives stats from catalog base stats and installed
// parts. Unknown car ids start from zero; every stat is floored at 1.
func RecomputeCarStats(cat *catalog.Catalog, carID string, parts map[string]domain.Part) CarStats {
	var base catalog.Stats
	if cat != nil {
		if m, ok := cat.Car(carID); ok {
			base = m.Stats
		}
	}

	s := CarStats{CarStats: domain.CarStats{
		Power:       base.Power,
		Speed:       base.Speed,
		Style:       base.Style,
		Reliability: base.Reliability,
	}}

	level := func(id string) int {
		if l := parts[id].Level; l > 0 {
			return l
		}
		return 0
	}

	s.Power += enginePower * level(PartEngine)

	tires := level(PartTires)
	s.Speed += tiresSpeed * tires
	s.Reliability -= tires / tiresWearEvery

	style := level(PartStyleBody)
	s.Style += styleBodyStyle * style
	s.IncomeBonus += int64(styleBodyIncome * style)

	s.Reliability += reliabilityBaseBonus * level(PartReliabilityBase)

	s.Power = max(s.Power, minStat)
	s.Speed = max(s.Speed, minStat)
	s.Style = max(s.Style, minStat)
	s.Reliability = max(s.Reliability, minStat)
	return s
}

// PartUpgradeCost = floor(base × 1.5^level). Unknown parts cost from
// catalog.DefaultPartCost.
func PartUpgradeCost(cat *catalog.Catalog, partID string, level int) int64 {
	base := int64(catalog.DefaultPartCost)
	if cat != nil {
		if p, ok := cat.Part(partID); ok {
			base = p.BaseCost
		}
	}
	level = max(level, 0)
	return clampCost(math.Floor(float64(base) * math.Pow(partCostGrowth, float64(level))))
}

// BuildingUpgradeCost = 100 × 2^level × building multiplier. Building a level
// 0 building costs the same as upgrading from level 0.
func BuildingUpgradeCost(cat *catalog.Catalog, buildingID string, level int) int64 {
	mult := 1.0
	if cat != nil {
		if b, ok := cat.Building(buildingID); ok && b.CostMultiplier > 0 {
			mult = b.CostMultiplier
		}
	}
	level = max(level, 0)
	return clampCost(math.Floor(math.Ldexp(catalog.BaseBuildingCost*mult, level)))
}

// StaffCost returns the price of hiring the next level of a role. ok is false
// when the role is unknown or already at max level; callers must treat that
// as "unavailable", not as a price.
func StaffCost(cat *catalog.Catalog, staffID string, hired domain.HiredStaff) (cost int64, ok bool) {
	if cat == nil {
		return 0, false
	}
	role, found := cat.StaffRole(staffID)
	if !found {
		return 0, false
	}
	level := max(hired[staffID], 0)
	if level >= role.MaxLevel {
		return 0, false
	}
	return clampCost(math.Floor(float64(role.BaseCost) * math.Pow(role.CostMultiplier, float64(level)))), true
}

// TotalIncomeRate sums building income, the selected car's base income and
// part bonus, then applies the manager multiplier. A nil car yields 0.
func TotalIncomeRate(cat *catalog.Catalog, buildings []domain.Building, car *domain.Car, hired domain.HiredStaff) int64 {
	if car == nil || cat == nil {
		return 0
	}

	var total float64
	for _, b := range buildings {
		if b.IsLocked || b.Level <= 0 {
			continue
		}
		if cb, ok := cat.Building(b.ID); ok {
			total += float64(b.Level) * float64(cb.IncomePerLevel)
		}
	}

	if m, ok := cat.Car(car.ID); ok {
		total += float64(m.BaseIncome)
	}
	total += float64(RecomputeCarStats(cat, car.ID, car.Parts).IncomeBonus)

	if pct := ManagerBonusPercent(cat, hired); pct > 0 {
		total *= 1 + pct/100
	}

	r := math.Round(total)
	if math.IsNaN(r) || r <= 0 {
		return 0
	}
	return clampCost(r)
}

func clampCost(v float64) int64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v >= math.MaxInt64:
		return math.MaxInt64
	}
	return int64(v)
}
