package domain

// RaceResult - результат гонки
type RaceResult string

const (
	RaceResultWin   RaceResult = "win"
	RaceResultLose  RaceResult = "lose"
	RaceResultError RaceResult = "error"
)

// Difficulty is a race tier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type Reward struct {
	Coins int64 `json:"coins"`
	XP    int64 `json:"xp"`
}

// RaceReport is what the presentation layer receives after a race.
type RaceReport struct {
	ID         string     `json:"id,omitempty"`
	Result     RaceResult `json:"result"`
	Reward     *Reward    `json:"reward"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	WinChance  float64    `json:"win_chance,omitempty"`
}
