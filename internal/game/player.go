package game

import (
	"reflect"
	"slices"
	"time"

	"idle_garage/internal/catalog"
	"idle_garage/internal/domain"
	"idle_garage/internal/economy"
	"idle_garage/internal/idle"
)

// Engine applies player actions against a catalog. It holds no player state
// and is safe for concurrent use as long as its random source is.
type Engine struct {
	cat *catalog.Catalog
	rng economy.RandomSource
}

func NewEngine(cat *catalog.Catalog, rng economy.RandomSource) *Engine {
	if rng == nil {
		rng = economy.NewRandomSource()
	}
	return &Engine{cat: cat, rng: rng}
}

func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// NewPlayer builds the default aggregate for a first-time user.
func (e *Engine) NewPlayer(userID int64, firstName string, now time.Time) domain.Player {
	d := e.cat.Defaults
	p := domain.Player{
		UserID:            userID,
		PlayerLevel:       1,
		FirstName:         firstName,
		GameCoins:         d.StartingGameCoins,
		JetCoins:          d.StartingJetCoins,
		XPToNextLevel:     d.XPToNextLevel,
		LastCollectedTime: now.UTC(),
		HiredStaff:        domain.HiredStaff{},
		PlayerCars:        []domain.Car{},
	}

	for _, b := range e.cat.Buildings {
		p.Buildings = append(p.Buildings, domain.Building{
			ID:       b.ID,
			Name:     b.Name,
			Icon:     b.Icon,
			Level:    b.StartLevel,
			IsLocked: b.UnlockLevel > p.PlayerLevel,
		})
	}

	if car, ok := e.newCar(d.DefaultCar); ok {
		p.PlayerCars = append(p.PlayerCars, car)
		p.SelectedCarID = car.ID
	}

	p.IncomeRatePerHour = e.IncomeRate(&p)
	return p
}

// newCar instantiates a catalog car with its factory parts.
func (e *Engine) newCar(id string) (domain.Car, bool) {
	m, ok := e.cat.Car(id)
	if !ok {
		return domain.Car{}, false
	}
	car := domain.Car{
		ID:       m.ID,
		Name:     m.Name,
		ImageURL: m.Image,
		Parts:    make(map[string]domain.Part, len(e.cat.Parts)),
	}
	for _, pt := range e.cat.Parts {
		car.Parts[pt.ID] = domain.Part{Level: m.Parts[pt.ID], Name: pt.Name}
	}
	e.refreshStats(&car)
	return car, true
}

func (e *Engine) refreshStats(c *domain.Car) {
	c.Stats = economy.RecomputeCarStats(e.cat, c.ID, c.Parts).CarStats
}

// IncomeRate recomputes the hourly income from buildings, selected car and
// staff. It is never cached.
func (e *Engine) IncomeRate(p *domain.Player) int64 {
	return economy.TotalIncomeRate(e.cat, p.Buildings, p.SelectedCar(), p.HiredStaff)
}

func (e *Engine) CapHours(p *domain.Player) float64 {
	return economy.OfflineCapHours(e.cat, p.HiredStaff)
}

// Accrued is the uncollected income at now.
func (e *Engine) Accrued(p *domain.Player, now time.Time) float64 {
	return idle.Tick(now, float64(p.IncomeRatePerHour), p.LastCollectedTime, e.CapHours(p))
}

// OfflineIncome is what a returning player earned since their last exit.
func (e *Engine) OfflineIncome(p *domain.Player, now time.Time) float64 {
	return idle.OfflineCatchUp(now, p.LastExitTime, p.LastCollectedTime, float64(p.IncomeRatePerHour), e.CapHours(p))
}

// Normalize repairs a loaded document: cached stats are recomputed, the
// selected car is made valid, missing catalog buildings are added, lock flags
// follow the player level and the income rate is recomputed. The returned set
// names the fields that differ from the input.
func (e *Engine) Normalize(in domain.Player, now time.Time) (domain.Player, domain.FieldSet) {
	p := in.Clone()
	var dirty domain.FieldSet

	if p.PlayerLevel < 1 {
		p.PlayerLevel = 1
		dirty |= domain.FieldPlayerLevel
	}
	if p.XPToNextLevel <= 0 {
		p.XPToNextLevel = e.cat.Defaults.XPToNextLevel
		dirty |= domain.FieldXPToNextLevel
	}
	if p.CurrentXP < 0 {
		p.CurrentXP = 0
		dirty |= domain.FieldCurrentXP
	}
	if p.GameCoins < 0 {
		p.GameCoins = 0
		dirty |= domain.FieldGameCoins
	}
	if p.JetCoins < 0 {
		p.JetCoins = 0
		dirty |= domain.FieldJetCoins
	}
	if p.LastCollectedTime.IsZero() {
		p.LastCollectedTime = now.UTC()
		dirty |= domain.FieldLastCollectedTime
	}
	if in.HiredStaff == nil {
		dirty |= domain.FieldHiredStaff
	}

	p.PlayerCars = e.normalizeCars(p.PlayerCars)
	if !reflect.DeepEqual(p.PlayerCars, in.PlayerCars) {
		dirty |= domain.FieldPlayerCars
	}

	if p.SelectedCar() == nil && len(p.PlayerCars) > 0 {
		p.SelectedCarID = p.PlayerCars[0].ID
		dirty |= domain.FieldSelectedCarID
	}

	p.Buildings = e.normalizeBuildings(p.Buildings, p.PlayerLevel)
	if !reflect.DeepEqual(p.Buildings, in.Buildings) {
		dirty |= domain.FieldBuildings
	}

	if rate := e.IncomeRate(&p); rate != p.IncomeRatePerHour {
		p.IncomeRatePerHour = rate
		dirty |= domain.FieldIncomeRate
	}
	return p, dirty
}

func (e *Engine) normalizeCars(cars []domain.Car) []domain.Car {
	out := make([]domain.Car, 0, len(cars)+1)
	seen := make(map[string]bool, len(cars))
	for _, c := range cars {
		if c.ID == "" || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		if c.Parts == nil {
			c.Parts = map[string]domain.Part{}
		}
		for id, part := range c.Parts {
			if part.Level < 0 {
				part.Level = 0
			}
			if pt, ok := e.cat.Part(id); ok && part.Name == "" {
				part.Name = pt.Name
			}
			c.Parts[id] = part
		}
		e.refreshStats(&c)
		out = append(out, c)
	}

	if len(out) == 0 {
		if car, ok := e.newCar(e.cat.Defaults.DefaultCar); ok {
			out = append(out, car)
		}
	}

	slices.SortStableFunc(out, func(a, b domain.Car) int {
		return e.cat.CarOrder(a.ID) - e.cat.CarOrder(b.ID)
	})
	return out
}

func (e *Engine) normalizeBuildings(buildings []domain.Building, level int) []domain.Building {
	out := make([]domain.Building, 0, len(e.cat.Buildings))
	have := make(map[string]bool, len(buildings))
	for _, b := range buildings {
		if b.ID == "" || have[b.ID] {
			continue
		}
		have[b.ID] = true
		if b.Level < 0 {
			b.Level = 0
		}
		if cb, ok := e.cat.Building(b.ID); ok {
			b.IsLocked = cb.UnlockLevel > level
		}
		out = append(out, b)
	}
	for _, cb := range e.cat.Buildings {
		if have[cb.ID] {
			continue
		}
		out = append(out, domain.Building{
			ID:       cb.ID,
			Name:     cb.Name,
			Icon:     cb.Icon,
			Level:    cb.StartLevel,
			IsLocked: cb.UnlockLevel > level,
		})
	}
	return out
}
