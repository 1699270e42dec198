// Package catalog holds the read-only reference data of the game: cars, parts,
// buildings, staff roles and race tiers.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultYAML []byte

// Staff bonus kinds.
const (
	BonusIncomePercent       = "income_percent"
	BonusPartDiscountPercent = "part_discount_percent"
	BonusOfflineHours        = "offline_hours"
)

// DefaultPartCost is used for part types missing from the catalog.
const DefaultPartCost = 100

// BaseBuildingCost is the level-0 price of a building before its multiplier.
const BaseBuildingCost = 100

type Catalog struct {
	Defaults  Defaults   `yaml:"defaults"`
	Parts     []PartType `yaml:"parts"`
	Cars      []CarModel `yaml:"cars"`
	Buildings []Building `yaml:"buildings"`
	Staff     []Staff    `yaml:"staff"`
	Races     []RaceTier `yaml:"races"`

	partIdx     map[string]int
	carIdx      map[string]int
	buildingIdx map[string]int
	staffIdx    map[string]int
	raceIdx     map[string]int
}

type Defaults struct {
	StartingGameCoins int64   `yaml:"starting_game_coins"`
	StartingJetCoins  int64   `yaml:"starting_jet_coins"`
	XPToNextLevel     int64   `yaml:"xp_to_next_level"`
	XPGrowth          float64 `yaml:"xp_growth"`
	DefaultCar        string  `yaml:"default_car"`
	MaxOfflineHours   float64 `yaml:"max_offline_hours"`
}

type PartType struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	BaseCost int64  `yaml:"base_cost" json:"base_cost"`
	MaxLevel int    `yaml:"max_level" json:"max_level"`
}

type Stats struct {
	Power       int `yaml:"power" json:"power"`
	Speed       int `yaml:"speed" json:"speed"`
	Style       int `yaml:"style" json:"style"`
	Reliability int `yaml:"reliability" json:"reliability"`
}

type CarModel struct {
	ID         string         `yaml:"id" json:"id"`
	Name       string         `yaml:"name" json:"name"`
	Image      string         `yaml:"image" json:"image"`
	Price      int64          `yaml:"price" json:"price"`
	PriceJet   int64          `yaml:"price_jet" json:"price_jet,omitempty"`
	BaseIncome int64          `yaml:"base_income" json:"base_income"`
	Stats      Stats          `yaml:"stats" json:"stats"`
	Parts      map[string]int `yaml:"parts" json:"parts"`
}

type Building struct {
	ID             string  `yaml:"id" json:"id"`
	Name           string  `yaml:"name" json:"name"`
	Icon           string  `yaml:"icon" json:"icon"`
	IncomePerLevel int64   `yaml:"income_per_level" json:"income_per_level"`
	CostMultiplier float64 `yaml:"cost_multiplier" json:"cost_multiplier"`
	UnlockLevel    int     `yaml:"unlock_level" json:"unlock_level"`
	StartLevel     int     `yaml:"start_level" json:"start_level"`
}

type Staff struct {
	ID             string  `yaml:"id" json:"id"`
	Name           string  `yaml:"name" json:"name"`
	MaxLevel       int     `yaml:"max_level" json:"max_level"`
	BaseCost       int64   `yaml:"base_cost" json:"base_cost"`
	CostMultiplier float64 `yaml:"cost_multiplier" json:"cost_multiplier"`
	Bonus          string  `yaml:"bonus" json:"bonus"`
	BonusPerLevel  float64 `yaml:"bonus_per_level" json:"bonus_per_level"`
}

type Opponent struct {
	Power       int `yaml:"power" json:"power"`
	Speed       int `yaml:"speed" json:"speed"`
	Reliability int `yaml:"reliability" json:"reliability"`
}

type RaceReward struct {
	Coins int64 `yaml:"coins" json:"coins"`
	XP    int64 `yaml:"xp" json:"xp"`
}

type RaceTier struct {
	Difficulty string     `yaml:"difficulty" json:"difficulty"`
	Opponent   Opponent   `yaml:"opponent" json:"opponent"`
	Reward     RaceReward `yaml:"reward" json:"reward"`
}

// Default returns the embedded catalog. It panics if the embedded file is
// broken, which only happens with a bad build.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads an override catalog from path, or returns the embedded one when
// path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultYAML)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("catalog yaml: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.index()
	return &c, nil
}

var (
	ErrDuplicateID   = errors.New("duplicate catalog id")
	ErrNoDefaultCar  = errors.New("default car is not in the catalog")
	ErrInvalidAmount = errors.New("invalid catalog amount")
)

// Validate checks ids are unique and prices are positive.
func (c *Catalog) Validate() error {
	seen := map[string]bool{}
	check := func(kind, id string) error {
		key := kind + ":" + id
		if id == "" || seen[key] {
			return fmt.Errorf("%w: %s %q", ErrDuplicateID, kind, id)
		}
		seen[key] = true
		return nil
	}

	for _, p := range c.Parts {
		if err := check("part", p.ID); err != nil {
			return err
		}
		if p.BaseCost <= 0 {
			return fmt.Errorf("%w: part %s base_cost", ErrInvalidAmount, p.ID)
		}
	}
	hasDefault := false
	for _, car := range c.Cars {
		if err := check("car", car.ID); err != nil {
			return err
		}
		if car.Price < 0 || car.PriceJet < 0 {
			return fmt.Errorf("%w: car %s price", ErrInvalidAmount, car.ID)
		}
		if car.ID == c.Defaults.DefaultCar {
			hasDefault = true
		}
	}
	if !hasDefault {
		return fmt.Errorf("%w: %q", ErrNoDefaultCar, c.Defaults.DefaultCar)
	}
	for _, b := range c.Buildings {
		if err := check("building", b.ID); err != nil {
			return err
		}
		if b.CostMultiplier < 0 || b.IncomePerLevel < 0 {
			return fmt.Errorf("%w: building %s", ErrInvalidAmount, b.ID)
		}
	}
	for _, s := range c.Staff {
		if err := check("staff", s.ID); err != nil {
			return err
		}
		if s.BaseCost <= 0 || s.CostMultiplier <= 1 || s.MaxLevel <= 0 {
			return fmt.Errorf("%w: staff %s", ErrInvalidAmount, s.ID)
		}
	}
	for _, r := range c.Races {
		if err := check("race", r.Difficulty); err != nil {
			return err
		}
	}
	if c.Defaults.XPToNextLevel <= 0 || c.Defaults.XPGrowth < 1 {
		return fmt.Errorf("%w: xp curve", ErrInvalidAmount)
	}
	return nil
}

func (c *Catalog) index() {
	c.partIdx = make(map[string]int, len(c.Parts))
	for i, p := range c.Parts {
		c.partIdx[p.ID] = i
	}
	c.carIdx = make(map[string]int, len(c.Cars))
	for i, car := range c.Cars {
		c.carIdx[car.ID] = i
	}
	c.buildingIdx = make(map[string]int, len(c.Buildings))
	for i, b := range c.Buildings {
		c.buildingIdx[b.ID] = i
	}
	c.staffIdx = make(map[string]int, len(c.Staff))
	for i, s := range c.Staff {
		c.staffIdx[s.ID] = i
	}
	c.raceIdx = make(map[string]int, len(c.Races))
	for i, r := range c.Races {
		c.raceIdx[r.Difficulty] = i
	}
}

func (c *Catalog) Part(id string) (PartType, bool) {
	i, ok := c.partIdx[id]
	if !ok {
		return PartType{}, false
	}
	return c.Parts[i], true
}

func (c *Catalog) Car(id string) (CarModel, bool) {
	i, ok := c.carIdx[id]
	if !ok {
		return CarModel{}, false
	}
	return c.Cars[i], true
}

// CarOrder returns the catalog position of a car; unknown ids sort last.
func (c *Catalog) CarOrder(id string) int {
	if i, ok := c.carIdx[id]; ok {
		return i
	}
	return len(c.Cars)
}

func (c *Catalog) Building(id string) (Building, bool) {
	i, ok := c.buildingIdx[id]
	if !ok {
		return Building{}, false
	}
	return c.Buildings[i], true
}

func (c *Catalog) StaffRole(id string) (Staff, bool) {
	i, ok := c.staffIdx[id]
	if !ok {
		return Staff{}, false
	}
	return c.Staff[i], true
}

// StaffByBonus returns the first role granting the given bonus kind.
func (c *Catalog) StaffByBonus(kind string) (Staff, bool) {
	for _, s := range c.Staff {
		if s.Bonus == kind {
			return s, true
		}
	}
	return Staff{}, false
}

func (c *Catalog) Race(difficulty string) (RaceTier, bool) {
	i, ok := c.raceIdx[difficulty]
	if !ok {
		return RaceTier{}, false
	}
	return c.Races[i], true
}
