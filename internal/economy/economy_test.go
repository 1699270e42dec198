package economy

import (
	"math"
	"testing"

	"idle_garage/internal/catalog"
	"idle_garage/internal/domain"
)

var cat = catalog.Default()

func parts(engine, tires, style, rel int) map[string]domain.Part {
	return map[string]domain.Part{
		PartEngine:          {Level: engine},
		PartTires:           {Level: tires},
		PartStyleBody:       {Level: style},
		PartReliabilityBase: {Level: rel},
	}
}

func TestRecomputeCarStats(t *testing.T) {
	// rusty_hatch base: power 10, speed 10, style 5, reliability 10
	got := RecomputeCarStats(cat, "rusty_hatch", parts(2, 5, 3, 1))

	want := CarStats{
		CarStats: domain.CarStats{
			Power:       10 + 2*5,
			Speed:       10 + 5*3,
			Style:       5 + 3*4,
			Reliability: 10 - 1 + 5,
		},
		IncomeBonus: 6,
	}
	if got != want {
		t.Fatalf("RecomputeCarStats = %+v; want %+v", got, want)
	}
}

func TestRecomputeCarStatsUnknownCarFloorsAtOne(t *testing.T) {
	got := RecomputeCarStats(cat, "ghost", nil)
	if got.Power != 1 || got.Speed != 1 || got.Style != 1 || got.Reliability != 1 {
		t.Fatalf("unknown car stats = %+v; want all 1", got.CarStats)
	}
	if got.IncomeBonus != 0 {
		t.Fatalf("income bonus = %d; want 0", got.IncomeBonus)
	}

	// worn tires on a zero-base car must not push reliability below 1
	worn := RecomputeCarStats(cat, "ghost", parts(0, 40, 0, 0))
	if worn.Reliability != 1 {
		t.Fatalf("reliability = %d; want 1", worn.Reliability)
	}

	if s := RecomputeCarStats(nil, "rusty_hatch", nil); s.Power != 1 {
		t.Fatalf("nil catalog power = %d; want 1", s.Power)
	}
}

func TestRecomputeCarStatsMonotonic(t *testing.T) {
	for lvl := 0; lvl < 30; lvl++ {
		a := RecomputeCarStats(cat, "city_sedan", parts(lvl, lvl, lvl, lvl))
		b := RecomputeCarStats(cat, "city_sedan", parts(lvl+1, lvl, lvl, lvl))
		if b.Power <= a.Power {
			t.Fatalf("power not increasing at engine level %d", lvl)
		}
		c := RecomputeCarStats(cat, "city_sedan", parts(lvl, lvl+1, lvl, lvl))
		if c.Speed <= a.Speed {
			t.Fatalf("speed not increasing at tires level %d", lvl)
		}
		d := RecomputeCarStats(cat, "city_sedan", parts(lvl, lvl, lvl+1, lvl))
		if d.Style <= a.Style || d.IncomeBonus <= a.IncomeBonus {
			t.Fatalf("style not increasing at body level %d", lvl)
		}
		e := RecomputeCarStats(cat, "city_sedan", parts(lvl, lvl, lvl, lvl+1))
		if e.Reliability <= a.Reliability {
			t.Fatalf("reliability not increasing at base level %d", lvl)
		}
		for _, s := range []CarStats{a, b, c, d, e} {
			if s.Power < 1 || s.Speed < 1 || s.Style < 1 || s.Reliability < 1 {
				t.Fatalf("stat below 1: %+v", s)
			}
		}
	}
}

func TestPartUpgradeCost(t *testing.T) {
	cases := []struct {
		part  string
		level int
		want  int64
	}{
		{PartEngine, 0, 100},
		{PartEngine, 2, 225},
		{PartTires, 0, 50},
		{PartTires, 3, 168},
		{PartStyleBody, 0, 75},
		{PartReliabilityBase, 0, 60},
		{"nitro", 0, 100},
		{PartEngine, -3, 100},
	}
	for _, tc := range cases {
		if got := PartUpgradeCost(cat, tc.part, tc.level); got != tc.want {
			t.Fatalf("PartUpgradeCost(%s, %d) = %d; want %d", tc.part, tc.level, got, tc.want)
		}
	}

	for _, p := range []string{PartEngine, PartTires, PartStyleBody, PartReliabilityBase} {
		prev := PartUpgradeCost(cat, p, 0)
		for lvl := 1; lvl <= 60; lvl++ {
			cur := PartUpgradeCost(cat, p, lvl)
			if cur <= prev {
				t.Fatalf("%s cost not increasing at level %d: %d <= %d", p, lvl, cur, prev)
			}
			prev = cur
		}
	}

	if got := PartUpgradeCost(cat, PartEngine, 10000); got != math.MaxInt64 {
		t.Fatalf("huge level cost = %d; want clamp to MaxInt64", got)
	}
}

func TestBuildingUpgradeCost(t *testing.T) {
	if got := BuildingUpgradeCost(cat, "wash", 0); got != 100 {
		t.Fatalf("wash level 0 = %d; want 100", got)
	}
	if got := BuildingUpgradeCost(cat, "wash", 3); got != 800 {
		t.Fatalf("wash level 3 = %d; want 800", got)
	}
	if got := BuildingUpgradeCost(cat, "service", 0); got != 150 {
		t.Fatalf("service level 0 = %d; want 150", got)
	}
	if got := BuildingUpgradeCost(cat, "unknown", 1); got != 200 {
		t.Fatalf("unknown level 1 = %d; want 200", got)
	}

	for _, b := range cat.Buildings {
		prev := BuildingUpgradeCost(cat, b.ID, 0)
		for lvl := 1; lvl < 40; lvl++ {
			cur := BuildingUpgradeCost(cat, b.ID, lvl)
			if cur <= prev {
				t.Fatalf("%s cost not increasing at level %d", b.ID, lvl)
			}
			prev = cur
		}
	}
}

func TestStaffCost(t *testing.T) {
	manager, _ := cat.StaffRole("manager")

	cost, ok := StaffCost(cat, "manager", nil)
	if !ok || cost != manager.BaseCost {
		t.Fatalf("manager level 0 = %d,%v; want %d,true", cost, ok, manager.BaseCost)
	}

	prev := int64(0)
	for lvl := 0; lvl < manager.MaxLevel; lvl++ {
		cost, ok := StaffCost(cat, "manager", domain.HiredStaff{"manager": lvl})
		if !ok {
			t.Fatalf("level %d unexpectedly unavailable", lvl)
		}
		if cost <= prev {
			t.Fatalf("cost not increasing at level %d", lvl)
		}
		prev = cost
	}

	for _, lvl := range []int{manager.MaxLevel, manager.MaxLevel + 3} {
		if _, ok := StaffCost(cat, "manager", domain.HiredStaff{"manager": lvl}); ok {
			t.Fatalf("level %d should be unavailable", lvl)
		}
	}

	if _, ok := StaffCost(cat, "janitor", nil); ok {
		t.Fatalf("unknown role should be unavailable")
	}
}

func TestTotalIncomeRate(t *testing.T) {
	car := &domain.Car{ID: "rusty_hatch", Parts: parts(0, 0, 0, 0)}
	buildings := []domain.Building{
		{ID: "wash", Level: 2},
		{ID: "service", Level: 1},
		{ID: "paint", Level: 4, IsLocked: true},
		{ID: "bogus", Level: 9},
	}

	// 2*5 + 1*10 + car base 10
	if got := TotalIncomeRate(cat, buildings, car, nil); got != 30 {
		t.Fatalf("income = %d; want 30", got)
	}

	if got := TotalIncomeRate(cat, buildings, nil, nil); got != 0 {
		t.Fatalf("income without car = %d; want 0", got)
	}

	styled := &domain.Car{ID: "rusty_hatch", Parts: parts(0, 0, 5, 0)}
	if got := TotalIncomeRate(cat, buildings, styled, nil); got != 40 {
		t.Fatalf("income with body kit = %d; want 40", got)
	}
}

func TestTotalIncomeRateManagerBonus(t *testing.T) {
	// base income 1000: wash level 198 (990) + rusty hatch (10)
	buildings := []domain.Building{{ID: "wash", Level: 198}}
	car := &domain.Car{ID: "rusty_hatch"}

	if got := TotalIncomeRate(cat, buildings, car, nil); got != 1000 {
		t.Fatalf("base income = %d; want 1000", got)
	}
	if got := TotalIncomeRate(cat, buildings, car, domain.HiredStaff{"manager": 3}); got != 1090 {
		t.Fatalf("income with manager 3 = %d; want 1090", got)
	}
}

func TestTotalIncomeRateNeverDecreases(t *testing.T) {
	car := domain.Car{ID: "city_sedan", Parts: parts(1, 1, 1, 1)}
	buildings := []domain.Building{{ID: "wash", Level: 1}, {ID: "service", Level: 1}}
	hired := domain.HiredStaff{"manager": 1}
	base := TotalIncomeRate(cat, buildings, &car, hired)

	moreBuilding := append([]domain.Building(nil), buildings...)
	moreBuilding[1].Level++
	if got := TotalIncomeRate(cat, moreBuilding, &car, hired); got < base {
		t.Fatalf("building level decreased income: %d < %d", got, base)
	}

	for _, p := range []string{PartEngine, PartTires, PartStyleBody, PartReliabilityBase} {
		upgraded := domain.Car{ID: car.ID, Parts: parts(1, 1, 1, 1)}
		upgraded.Parts[p] = domain.Part{Level: 2}
		if got := TotalIncomeRate(cat, buildings, &upgraded, hired); got < base {
			t.Fatalf("%s upgrade decreased income: %d < %d", p, got, base)
		}
	}

	if got := TotalIncomeRate(cat, buildings, &car, domain.HiredStaff{"manager": 2}); got < base {
		t.Fatalf("manager level decreased income")
	}
}

func TestStaffBonuses(t *testing.T) {
	hired := domain.HiredStaff{"mechanic": 5, "dispatcher": 2}

	if got := PartDiscountPercent(cat, hired); got != 10 {
		t.Fatalf("discount = %v; want 10", got)
	}
	if got := DiscountedPartCost(cat, PartEngine, 2, hired); got != 202 {
		t.Fatalf("discounted engine cost = %d; want 202", got)
	}
	if got := OfflineCapHours(cat, hired); got != cat.Defaults.MaxOfflineHours+2 {
		t.Fatalf("cap hours = %v", got)
	}
	if got := OfflineCapHours(cat, domain.HiredStaff{"dispatcher": 99}); got != cat.Defaults.MaxOfflineHours+5 {
		t.Fatalf("dispatcher bonus should be clamped to max level, got %v", got)
	}
}
