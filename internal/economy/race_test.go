package economy

import (
	"testing"

	"idle_garage/internal/domain"
)

type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

type panicSource struct{}

func (panicSource) Float64() float64 { panic("boom") }

func TestSimulateRaceWinAndLose(t *testing.T) {
	stats := domain.CarStats{Power: 30, Speed: 30, Style: 1, Reliability: 30}
	easy, _ := cat.Race("easy")

	win := SimulateRace(cat, fixedSource(0), stats, domain.DifficultyEasy, 100, 5)
	if win.Result != domain.RaceResultWin {
		t.Fatalf("result = %s; want win", win.Result)
	}
	if win.Reward == nil || win.Reward.Coins != easy.Reward.Coins || win.Reward.XP != easy.Reward.XP {
		t.Fatalf("reward = %+v; want %+v", win.Reward, easy.Reward)
	}
	if win.NewGameCoins != 100+easy.Reward.Coins || win.NewCurrentXP != 5+easy.Reward.XP {
		t.Fatalf("totals = %d/%d", win.NewGameCoins, win.NewCurrentXP)
	}

	lose := SimulateRace(cat, fixedSource(0.999999), stats, domain.DifficultyEasy, 100, 5)
	if lose.Result != domain.RaceResultLose {
		t.Fatalf("result = %s; want lose", lose.Result)
	}
	if lose.Reward.Coins != 0 || lose.Reward.XP != easy.Reward.XP/5 {
		t.Fatalf("lose reward = %+v", lose.Reward)
	}
	if lose.NewGameCoins != 100 {
		t.Fatalf("lose coins = %d; want 100", lose.NewGameCoins)
	}
}

func TestSimulateRaceNeverNegative(t *testing.T) {
	out := SimulateRace(cat, fixedSource(0.999999), domain.CarStats{Power: 1, Speed: 1, Reliability: 1}, domain.DifficultyHard, -50, -10)
	if out.NewGameCoins < 0 || out.NewCurrentXP < 0 {
		t.Fatalf("negative totals: %+v", out)
	}
}

func TestSimulateRaceErrorSentinel(t *testing.T) {
	stats := domain.CarStats{Power: 10, Speed: 10, Reliability: 10}

	cases := []struct {
		name string
		run  func() RaceOutcome
	}{
		{"nil source", func() RaceOutcome { return SimulateRace(cat, nil, stats, domain.DifficultyEasy, 10, 1) }},
		{"nil catalog", func() RaceOutcome { return SimulateRace(nil, fixedSource(0), stats, domain.DifficultyEasy, 10, 1) }},
		{"unknown tier", func() RaceOutcome { return SimulateRace(cat, fixedSource(0), stats, "insane", 10, 1) }},
		{"panicking source", func() RaceOutcome { return SimulateRace(cat, panicSource{}, stats, domain.DifficultyEasy, 10, 1) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := tc.run()
			if out.Result != domain.RaceResultError || out.Reward != nil {
				t.Fatalf("got %+v; want error sentinel", out)
			}
			if out.NewGameCoins != 10 || out.NewCurrentXP != 1 {
				t.Fatalf("totals changed on error: %+v", out)
			}
		})
	}
}

func TestWinProbabilityMonotonic(t *testing.T) {
	opp := 20.0
	prev := WinProbability(1, opp)
	for s := 2.0; s <= 200; s++ {
		cur := WinProbability(s, opp)
		if cur < prev {
			t.Fatalf("win chance decreased at score %v", s)
		}
		prev = cur
	}
	if got := WinProbability(10, 10); got != 0.5 {
		t.Fatalf("equal scores = %v; want 0.5", got)
	}
	if got := WinProbability(0, 0); got != 0.5 {
		t.Fatalf("zero scores = %v; want 0.5", got)
	}
}

func TestScoreMonotonic(t *testing.T) {
	base := Score(10, 10, 10)
	if Score(11, 10, 10) <= base || Score(10, 11, 10) <= base || Score(10, 10, 11) <= base {
		t.Fatalf("score must grow with every stat")
	}
}

func TestSimulateRaceDoubleScoreWinsMostly(t *testing.T) {
	// easy opponent scores 15, this car scores 30
	stats := domain.CarStats{Power: 30, Speed: 30, Style: 1, Reliability: 30}
	rng := NewSeededSource(42)

	wins := 0
	const runs = 1000
	for i := 0; i < runs; i++ {
		if SimulateRace(cat, rng, stats, domain.DifficultyEasy, 0, 0).Result == domain.RaceResultWin {
			wins++
		}
	}
	if wins < 700 {
		t.Fatalf("win rate %d/%d; want well above half", wins, runs)
	}
	if wins == runs {
		t.Fatalf("a stronger car should still lose sometimes")
	}
}

func TestSeededSourceReproducible(t *testing.T) {
	a, b := NewSeededSource(7), NewSeededSource(7)
	stats := domain.CarStats{Power: 15, Speed: 15, Reliability: 15}
	for i := 0; i < 50; i++ {
		ra := SimulateRace(cat, a, stats, domain.DifficultyMedium, 0, 0)
		rb := SimulateRace(cat, b, stats, domain.DifficultyMedium, 0, 0)
		if ra.Result != rb.Result {
			t.Fatalf("seeded runs diverged at %d", i)
		}
	}
}
