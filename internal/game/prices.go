package game

import (
	"idle_garage/internal/domain"
	"idle_garage/internal/economy"
)

// Price is one purchasable item. Cost is nil when the item is maxed out or
// otherwise unavailable.
type Price struct {
	ID       string `json:"id"`
	CarID    string `json:"car_id,omitempty"`
	Level    int    `json:"level"`
	Cost     *int64 `json:"cost"`
	Currency string `json:"currency"`
	Maxed    bool   `json:"maxed"`
	Locked   bool   `json:"locked,omitempty"`
	Owned    bool   `json:"owned,omitempty"`
}

type PriceList struct {
	Parts     []Price `json:"parts"`
	Buildings []Price `json:"buildings"`
	Staff     []Price `json:"staff"`
	Cars      []Price `json:"cars"`
}

func costPtr(v int64) *int64 { return &v }

// Prices lists what the player can buy next with staff discounts applied.
func (e *Engine) Prices(p *domain.Player) PriceList {
	var pl PriceList

	for _, car := range p.PlayerCars {
		for _, pt := range e.cat.Parts {
			level := car.Parts[pt.ID].Level
			pr := Price{ID: pt.ID, CarID: car.ID, Level: level, Currency: CurrencyGame}
			if pt.MaxLevel > 0 && level >= pt.MaxLevel {
				pr.Maxed = true
			} else {
				pr.Cost = costPtr(economy.DiscountedPartCost(e.cat, pt.ID, level, p.HiredStaff))
			}
			pl.Parts = append(pl.Parts, pr)
		}
	}

	for _, b := range p.Buildings {
		pl.Buildings = append(pl.Buildings, Price{
			ID:       b.ID,
			Level:    b.Level,
			Cost:     costPtr(economy.BuildingUpgradeCost(e.cat, b.ID, b.Level)),
			Currency: CurrencyGame,
			Locked:   b.IsLocked,
		})
	}

	for _, s := range e.cat.Staff {
		pr := Price{ID: s.ID, Level: p.HiredStaff[s.ID], Currency: CurrencyGame}
		if cost, ok := economy.StaffCost(e.cat, s.ID, p.HiredStaff); ok {
			pr.Cost = costPtr(cost)
		} else {
			pr.Maxed = true
		}
		pl.Staff = append(pl.Staff, pr)
	}

	for _, m := range e.cat.Cars {
		pr := Price{ID: m.ID, Currency: CurrencyGame, Cost: costPtr(m.Price)}
		if m.PriceJet > 0 {
			pr.Currency, pr.Cost = CurrencyJet, costPtr(m.PriceJet)
		}
		if _, owned := p.Car(m.ID); owned {
			pr.Owned, pr.Cost = true, nil
		}
		pl.Cars = append(pl.Cars, pr)
	}
	return pl
}
