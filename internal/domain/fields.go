package domain

import (
	"encoding/json"
	"math/bits"
)

// FieldSet is a bitmask of top-level Player document fields that changed and
// must be persisted.
type FieldSet uint32

const (
	FieldPlayerLevel FieldSet = 1 << iota
	FieldFirstName
	FieldGameCoins
	FieldJetCoins
	FieldCurrentXP
	FieldXPToNextLevel
	FieldIncomeRate
	FieldLastCollectedTime
	FieldLastExitTime
	FieldBuildings
	FieldPlayerCars
	FieldSelectedCarID
	FieldHiredStaff
	FieldTutorial

	FieldAll FieldSet = 1<<iota - 1
)

var fieldKeys = []string{
	"player_level",
	"first_name",
	"game_coins",
	"jet_coins",
	"current_xp",
	"xp_to_next_level",
	"income_rate_per_hour",
	"last_collected_time",
	"last_exit_time",
	"buildings",
	"player_cars",
	"selected_car_id",
	"hired_staff",
	"has_completed_tutorial",
}

func (s FieldSet) Has(f FieldSet) bool { return s&f != 0 }

func (s FieldSet) Empty() bool { return s == 0 }

// Keys returns document keys for the set fields in declaration order.
func (s FieldSet) Keys() []string {
	keys := make([]string, 0, bits.OnesCount32(uint32(s)))
	for i, k := range fieldKeys {
		if s&(1<<i) != 0 {
			keys = append(keys, k)
		}
	}
	return keys
}

// Patch builds a JSON object holding only the set fields of p.
func (s FieldSet) Patch(p *Player) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var full map[string]json.RawMessage
	if err := json.Unmarshal(raw, &full); err != nil {
		return nil, err
	}

	patch := make(map[string]json.RawMessage, bits.OnesCount32(uint32(s)))
	for _, k := range s.Keys() {
		if v, ok := full[k]; ok {
			patch[k] = v
		} else {
			// omitempty field that was cleared
			patch[k] = json.RawMessage("null")
		}
	}
	return patch, nil
}
