package game

import (
	"math"
	"time"

	"idle_garage/internal/domain"
	"idle_garage/internal/economy"
	"idle_garage/internal/idle"
)

// Action is a player command handled by Engine.Apply.
type Action interface {
	Name() string
}

type Collect struct{}

// UpgradePart raises one part of an owned car. An empty CarID means the
// selected car.
type UpgradePart struct {
	CarID  string `json:"car_id"`
	PartID string `json:"part_id"`
}

type UpgradeBuilding struct {
	BuildingID string `json:"building_id"`
}

type HireStaff struct {
	StaffID string `json:"staff_id"`
}

type BuyCar struct {
	CarID string `json:"car_id"`
}

type SelectCar struct {
	CarID string `json:"car_id"`
}

type Race struct {
	Difficulty domain.Difficulty `json:"difficulty"`
}

type CompleteTutorial struct{}

// Exit records that the client is going away; offline income is measured
// from it on the next load.
type Exit struct{}

// Rename syncs the display name from Telegram.
type Rename struct {
	FirstName string
}

func (Collect) Name() string          { return "collect" }
func (UpgradePart) Name() string      { return "upgrade_part" }
func (UpgradeBuilding) Name() string  { return "upgrade_building" }
func (HireStaff) Name() string        { return "hire_staff" }
func (BuyCar) Name() string           { return "buy_car" }
func (SelectCar) Name() string        { return "select_car" }
func (Race) Name() string             { return "race" }
func (CompleteTutorial) Name() string { return "complete_tutorial" }
func (Exit) Name() string             { return "exit" }
func (Rename) Name() string           { return "rename" }

// Effect kinds.
const (
	EffectCollected = "collected"
	EffectSpent     = "spent"
	EffectSettled   = "settled"
	EffectLevelUp   = "level_up"
	EffectUnlocked  = "unlocked"
	EffectRace      = "race"
)

// Effect is a side note of an action, used for audit and the client toast.
type Effect struct {
	Kind     string             `json:"kind"`
	Target   string             `json:"target,omitempty"`
	Amount   int64              `json:"amount,omitempty"`
	Currency string             `json:"currency,omitempty"`
	Race     *domain.RaceReport `json:"race,omitempty"`
}

// Outcome is the new player state. Dirty is empty when nothing changed and the
// caller must not save.
type Outcome struct {
	Player  domain.Player
	Effects []Effect
	Dirty   domain.FieldSet
}

const (
	CurrencyGame = "game"
	CurrencyJet  = "jet"
)

// Apply runs a on a copy of p. On error the outcome is the zero value and p is
// untouched. Whole coins accrued at the old economics count towards prices.
// When the action changes the income rate or the offline cap, or needs those
// coins to pay, they are credited and accrual restarts at now, so new
// economics never apply retroactively.
func (e *Engine) Apply(p domain.Player, a Action, now time.Time) (Outcome, error) {
	out := Outcome{Player: p.Clone()}
	np := &out.Player

	if _, ok := a.(Collect); ok {
		e.collect(&out, now)
		return out, nil
	}

	var credit int64
	if res, ok := idle.Collect(e.Accrued(&p, now), np.GameCoins, now); ok {
		credit = res.NewGameCoins - np.GameCoins
		np.GameCoins = res.NewGameCoins
	}

	var err error
	switch act := a.(type) {
	case UpgradePart:
		err = e.upgradePart(&out, act)
	case UpgradeBuilding:
		err = e.upgradeBuilding(&out, act)
	case HireStaff:
		err = e.hireStaff(&out, act)
	case BuyCar:
		err = e.buyCar(&out, act)
	case SelectCar:
		err = e.selectCar(&out, act)
	case Race:
		err = e.race(&out, act)
	case CompleteTutorial:
		if !np.HasCompletedTutorial {
			np.HasCompletedTutorial = true
			out.Dirty |= domain.FieldTutorial
		}
	case Exit:
		t := now.UTC()
		np.LastExitTime = &t
		out.Dirty |= domain.FieldLastExitTime
	case Rename:
		if act.FirstName != "" && act.FirstName != np.FirstName {
			np.FirstName = act.FirstName
			out.Dirty |= domain.FieldFirstName
		}
	default:
		err = ErrUnknownAction
	}
	if err != nil {
		return Outcome{}, err
	}

	rate := e.IncomeRate(np)
	rateChanged := rate != np.IncomeRatePerHour
	capChanged := e.CapHours(np) != e.CapHours(&p)
	if rateChanged || capChanged || np.GameCoins-credit < 0 {
		e.settle(&out, credit, now)
	} else {
		np.GameCoins -= credit
	}
	if rateChanged {
		np.IncomeRatePerHour = rate
		out.Dirty |= domain.FieldIncomeRate
	}
	return out, nil
}

func (e *Engine) collect(out *Outcome, now time.Time) {
	np := &out.Player
	res, ok := idle.Collect(e.Accrued(np, now), np.GameCoins, now)
	if !ok {
		return
	}
	np.GameCoins = res.NewGameCoins
	np.LastCollectedTime = res.CollectedAt.UTC()
	out.Dirty |= domain.FieldGameCoins | domain.FieldLastCollectedTime
	out.Effects = append(out.Effects, Effect{Kind: EffectCollected, Amount: res.Collected, Currency: CurrencyGame})
}

// settle keeps the credit already added to the balance and restarts accrual
// at now.
func (e *Engine) settle(out *Outcome, credit int64, now time.Time) {
	np := &out.Player
	if credit > 0 {
		out.Dirty |= domain.FieldGameCoins
		out.Effects = append(out.Effects, Effect{Kind: EffectSettled, Amount: credit, Currency: CurrencyGame})
	}
	np.LastCollectedTime = now.UTC()
	out.Dirty |= domain.FieldLastCollectedTime
}

func (e *Engine) spend(out *Outcome, currency string, cost int64, target string) error {
	np := &out.Player
	balance := &np.GameCoins
	field := domain.FieldGameCoins
	if currency == CurrencyJet {
		balance, field = &np.JetCoins, domain.FieldJetCoins
	}
	if cost < 0 || *balance < cost {
		return ErrInsufficientFunds
	}
	*balance -= cost
	out.Dirty |= field
	out.Effects = append(out.Effects, Effect{Kind: EffectSpent, Target: target, Amount: cost, Currency: currency})
	return nil
}

func (e *Engine) upgradePart(out *Outcome, act UpgradePart) error {
	np := &out.Player
	carID := act.CarID
	if carID == "" {
		carID = np.SelectedCarID
	}
	car, ok := np.Car(carID)
	if !ok {
		return ErrCarNotOwned
	}
	pt, ok := e.cat.Part(act.PartID)
	if !ok {
		return ErrUnknownPart
	}

	level := car.Parts[pt.ID].Level
	if pt.MaxLevel > 0 && level >= pt.MaxLevel {
		return ErrMaxLevel
	}
	cost := economy.DiscountedPartCost(e.cat, pt.ID, level, np.HiredStaff)
	if err := e.spend(out, CurrencyGame, cost, car.ID+"."+pt.ID); err != nil {
		return err
	}

	car.Parts[pt.ID] = domain.Part{Level: level + 1, Name: pt.Name}
	e.refreshStats(car)
	out.Dirty |= domain.FieldPlayerCars
	return nil
}

func (e *Engine) upgradeBuilding(out *Outcome, act UpgradeBuilding) error {
	np := &out.Player
	b, ok := np.Building(act.BuildingID)
	if !ok {
		return ErrUnknownBuilding
	}
	if b.IsLocked {
		return ErrBuildingLocked
	}
	cost := economy.BuildingUpgradeCost(e.cat, b.ID, b.Level)
	if err := e.spend(out, CurrencyGame, cost, b.ID); err != nil {
		return err
	}
	b.Level++
	out.Dirty |= domain.FieldBuildings
	return nil
}

func (e *Engine) hireStaff(out *Outcome, act HireStaff) error {
	np := &out.Player
	cost, ok := economy.StaffCost(e.cat, act.StaffID, np.HiredStaff)
	if !ok {
		if _, known := e.cat.StaffRole(act.StaffID); !known {
			return ErrUnknownStaff
		}
		return ErrMaxLevel
	}
	if err := e.spend(out, CurrencyGame, cost, act.StaffID); err != nil {
		return err
	}
	np.HiredStaff[act.StaffID]++
	out.Dirty |= domain.FieldHiredStaff
	return nil
}

func (e *Engine) buyCar(out *Outcome, act BuyCar) error {
	np := &out.Player
	model, ok := e.cat.Car(act.CarID)
	if !ok {
		return ErrUnknownCar
	}
	if _, owned := np.Car(model.ID); owned {
		return ErrCarAlreadyOwned
	}

	currency, price := CurrencyGame, model.Price
	if model.PriceJet > 0 {
		currency, price = CurrencyJet, model.PriceJet
	}
	if err := e.spend(out, currency, price, model.ID); err != nil {
		return err
	}

	car, _ := e.newCar(model.ID)
	np.PlayerCars = e.normalizeCars(append(np.PlayerCars, car))
	out.Dirty |= domain.FieldPlayerCars
	return nil
}

func (e *Engine) selectCar(out *Outcome, act SelectCar) error {
	np := &out.Player
	if _, ok := np.Car(act.CarID); !ok {
		return ErrCarNotOwned
	}
	if np.SelectedCarID != act.CarID {
		np.SelectedCarID = act.CarID
		out.Dirty |= domain.FieldSelectedCarID
	}
	return nil
}

func (e *Engine) race(out *Outcome, act Race) error {
	np := &out.Player
	if _, ok := e.cat.Race(string(act.Difficulty)); !ok {
		return ErrUnknownDifficulty
	}
	car := np.SelectedCar()
	if car == nil {
		return ErrNoSelectedCar
	}

	res := economy.SimulateRace(e.cat, e.rng, car.Stats, act.Difficulty, np.GameCoins, np.CurrentXP)
	report := &domain.RaceReport{
		Result:     res.Result,
		Reward:     res.Reward,
		Difficulty: act.Difficulty,
		WinChance:  res.WinChance,
	}
	out.Effects = append(out.Effects, Effect{Kind: EffectRace, Target: car.ID, Race: report})
	if res.Result == domain.RaceResultError {
		return nil
	}

	if res.NewGameCoins != np.GameCoins {
		np.GameCoins = res.NewGameCoins
		out.Dirty |= domain.FieldGameCoins
	}
	if res.NewCurrentXP != np.CurrentXP {
		np.CurrentXP = res.NewCurrentXP
		out.Dirty |= domain.FieldCurrentXP
	}
	e.levelUp(out)
	return nil
}

// levelUp consumes xp into levels and unlocks buildings the new level allows.
func (e *Engine) levelUp(out *Outcome) {
	np := &out.Player
	growth := e.cat.Defaults.XPGrowth
	for np.XPToNextLevel > 0 && np.CurrentXP >= np.XPToNextLevel {
		np.CurrentXP -= np.XPToNextLevel
		np.PlayerLevel++
		if next := math.Ceil(float64(np.XPToNextLevel) * growth); next >= math.MaxInt64 {
			np.XPToNextLevel = math.MaxInt64
		} else {
			np.XPToNextLevel = int64(next)
		}
		out.Dirty |= domain.FieldPlayerLevel | domain.FieldCurrentXP | domain.FieldXPToNextLevel
		out.Effects = append(out.Effects, Effect{Kind: EffectLevelUp, Amount: int64(np.PlayerLevel)})
	}

	for i := range np.Buildings {
		b := &np.Buildings[i]
		cb, ok := e.cat.Building(b.ID)
		if !ok || !b.IsLocked || cb.UnlockLevel > np.PlayerLevel {
			continue
		}
		b.IsLocked = false
		out.Dirty |= domain.FieldBuildings
		out.Effects = append(out.Effects, Effect{Kind: EffectUnlocked, Target: b.ID})
	}
}
