package domain

import "time"

// Player - персистентный агрегат игрока, ключ - telegram user id
type Player struct {
	UserID               int64      `json:"user_id"`
	PlayerLevel          int        `json:"player_level"`
	FirstName            string     `json:"first_name"`
	GameCoins            int64      `json:"game_coins"`
	JetCoins             int64      `json:"jet_coins"`
	CurrentXP            int64      `json:"current_xp"`
	XPToNextLevel        int64      `json:"xp_to_next_level"`
	IncomeRatePerHour    int64      `json:"income_rate_per_hour"`
	LastCollectedTime    time.Time  `json:"last_collected_time"`
	LastExitTime         *time.Time `json:"last_exit_time,omitempty"`
	Buildings            []Building `json:"buildings"`
	PlayerCars           []Car      `json:"player_cars"`
	SelectedCarID        string     `json:"selected_car_id"`
	HiredStaff           HiredStaff `json:"hired_staff"`
	HasCompletedTutorial bool       `json:"has_completed_tutorial"`
}

// Building - здание гаража. Level 0 = не построено.
type Building struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Level    int    `json:"level"`
	Icon     string `json:"icon"`
	IsLocked bool   `json:"isLocked"`
}

// Car is an owned car instance. Stats are a cache of catalog base stats plus
// installed parts and are recomputed whenever the car is loaded or changed.
type Car struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	ImageURL string          `json:"imageUrl"`
	Parts    map[string]Part `json:"parts"`
	Stats    CarStats        `json:"stats"`
}

type Part struct {
	Level int    `json:"level"`
	Name  string `json:"name"`
}

type CarStats struct {
	Power       int `json:"power"`
	Speed       int `json:"speed"`
	Style       int `json:"style"`
	Reliability int `json:"reliability"`
}

// HiredStaff maps staff role id to hired level (0 = not hired).
type HiredStaff map[string]int

// Car returns the owned car with the given id.
func (p *Player) Car(id string) (*Car, bool) {
	for i := range p.PlayerCars {
		if p.PlayerCars[i].ID == id {
			return &p.PlayerCars[i], true
		}
	}
	return nil, false
}

// SelectedCar returns the selected car, or nil if the player owns none.
func (p *Player) SelectedCar() *Car {
	if c, ok := p.Car(p.SelectedCarID); ok {
		return c
	}
	return nil
}

func (p *Player) Building(id string) (*Building, bool) {
	for i := range p.Buildings {
		if p.Buildings[i].ID == id {
			return &p.Buildings[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy so reducers can work on a value without aliasing
// slices and maps of the caller's player.
func (p Player) Clone() Player {
	out := p
	if p.LastExitTime != nil {
		t := *p.LastExitTime
		out.LastExitTime = &t
	}
	out.Buildings = append([]Building(nil), p.Buildings...)
	out.PlayerCars = make([]Car, len(p.PlayerCars))
	for i, c := range p.PlayerCars {
		cc := c
		cc.Parts = make(map[string]Part, len(c.Parts))
		for k, v := range c.Parts {
			cc.Parts[k] = v
		}
		out.PlayerCars[i] = cc
	}
	out.HiredStaff = make(HiredStaff, len(p.HiredStaff))
	for k, v := range p.HiredStaff {
		out.HiredStaff[k] = v
	}
	return out
}
