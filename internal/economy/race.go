package economy

import (
	"math"
	"math/rand/v2"

	"idle_garage/internal/catalog"
	"idle_garage/internal/domain"
)

// score weights, must stay non-negative
const (
	powerWeight       = 0.4
	speedWeight       = 0.4
	reliabilityWeight = 0.2

	// sharpness of the win curve: p = s^k / (s^k + o^k)
	raceSharpness = 2.0

	// a lost race still pays 1/loseXPDivisor of the tier xp
	loseXPDivisor = 5
)

// RandomSource is the randomness used by races. *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// NewRandomSource returns a goroutine-safe source backed by the runtime's
// global generator.
func NewRandomSource() RandomSource { return globalSource{} }

// NewSeededSource returns a reproducible source. It is not safe for
// concurrent use.
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// RaceOutcome is the resolved race plus the player's new totals.
type RaceOutcome struct {
	Result       domain.RaceResult `json:"result"`
	Reward       *domain.Reward    `json:"reward"`
	NewGameCoins int64             `json:"new_game_coins"`
	NewCurrentXP int64             `json:"new_current_xp"`
	WinChance    float64           `json:"win_chance"`
}

// Score is the weighted race strength of a stat line.
func Score(power, speed, reliability int) float64 {
	return powerWeight*float64(power) + speedWeight*float64(speed) + reliabilityWeight*float64(reliability)
}

// WinProbability grows monotonically with the player's score advantage.
func WinProbability(player, opponent float64) float64 {
	if player <= 0 && opponent <= 0 {
		return 0.5
	}
	p := math.Pow(max(player, 0), raceSharpness)
	o := math.Pow(max(opponent, 0), raceSharpness)
	return p / (p + o)
}

// SimulateRace resolves a race against the tier's fixed opponent. The same
// inputs can produce different results; pass a seeded source for
// reproducibility. Faults never escape: they yield a "error" outcome with a
// nil reward and unchanged totals.
func SimulateRace(cat *catalog.Catalog, rng RandomSource, stats domain.CarStats, difficulty domain.Difficulty, coins, xp int64) (out RaceOutcome) {
	coins, xp = max(coins, 0), max(xp, 0)
	fail := RaceOutcome{Result: domain.RaceResultError, NewGameCoins: coins, NewCurrentXP: xp}

	defer func() {
		if r := recover(); r != nil {
			out = fail
		}
	}()

	if cat == nil || rng == nil {
		return fail
	}
	tier, ok := cat.Race(string(difficulty))
	if !ok {
		return fail
	}

	playerScore := Score(stats.Power, stats.Speed, stats.Reliability)
	opponentScore := Score(tier.Opponent.Power, tier.Opponent.Speed, tier.Opponent.Reliability)
	chance := WinProbability(playerScore, opponentScore)
	if math.IsNaN(chance) || math.IsInf(chance, 0) {
		return fail
	}

	reward := domain.Reward{XP: tier.Reward.XP / loseXPDivisor}
	result := domain.RaceResultLose
	if rng.Float64() < chance {
		result = domain.RaceResultWin
		reward = domain.Reward{Coins: tier.Reward.Coins, XP: tier.Reward.XP}
	}

	return RaceOutcome{
		Result:       result,
		Reward:       &reward,
		NewGameCoins: saturatingAdd(coins, reward.Coins),
		NewCurrentXP: saturatingAdd(xp, reward.XP),
		WinChance:    chance,
	}
}

func saturatingAdd(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return max(a+b, 0)
}
