package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	if _, ok := c.Car(c.Defaults.DefaultCar); !ok {
		t.Fatalf("default car %q missing", c.Defaults.DefaultCar)
	}

	costs := map[string]int64{"engine": 100, "tires": 50, "style_body": 75, "reliability_base": 60}
	for id, want := range costs {
		p, ok := c.Part(id)
		if !ok {
			t.Fatalf("part %s missing", id)
		}
		if p.BaseCost != want {
			t.Fatalf("part %s base cost = %d; want %d", id, p.BaseCost, want)
		}
	}

	for _, d := range []string{"easy", "medium", "hard"} {
		if _, ok := c.Race(d); !ok {
			t.Fatalf("race tier %s missing", d)
		}
	}
	easy, _ := c.Race("easy")
	medium, _ := c.Race("medium")
	hard, _ := c.Race("hard")
	if !(easy.Reward.Coins < medium.Reward.Coins && medium.Reward.Coins < hard.Reward.Coins) {
		t.Fatalf("race coin rewards not increasing: %d %d %d", easy.Reward.Coins, medium.Reward.Coins, hard.Reward.Coins)
	}

	if m, ok := c.StaffByBonus(BonusIncomePercent); !ok || m.ID != "manager" {
		t.Fatalf("manager role not found by bonus kind")
	}
}

func TestCarOrderUnknownSortsLast(t *testing.T) {
	c := Default()
	if got := c.CarOrder("nope"); got != len(c.Cars) {
		t.Fatalf("CarOrder(unknown) = %d; want %d", got, len(c.Cars))
	}
	if c.CarOrder(c.Cars[0].ID) != 0 {
		t.Fatalf("first car should have order 0")
	}
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	base := string(defaultYAML)

	cases := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "duplicate part",
			yaml: strings.Replace(base, "id: tires", "id: engine", 1),
			want: ErrDuplicateID,
		},
		{
			name: "missing default car",
			yaml: strings.Replace(base, "default_car: rusty_hatch", "default_car: unicorn", 1),
			want: ErrNoDefaultCar,
		},
		{
			name: "zero part cost",
			yaml: strings.Replace(base, "base_cost: 100\n    max_level: 40", "base_cost: 0\n    max_level: 40", 1),
			want: ErrInvalidAmount,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if !errors.Is(err, tc.want) {
				t.Fatalf("Parse err = %v; want %v", err, tc.want)
			}
		})
	}
}

func TestLoadOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	raw := strings.Replace(string(defaultYAML), "income_per_level: 5", "income_per_level: 7", 1)
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	wash, ok := c.Building("wash")
	if !ok || wash.IncomePerLevel != 7 {
		t.Fatalf("wash income = %d; want 7", wash.IncomePerLevel)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
