package service

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"idle_garage/internal/domain"
	"idle_garage/internal/game"
	"idle_garage/internal/idle"
	"idle_garage/internal/logger"
	"idle_garage/internal/repository"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/player.schema.json
var playerSchemaJSON []byte

var ErrInvalidDocument = errors.New("invalid player document")

// Snapshot is the player plus the live accrual view at ServerTime.
type Snapshot struct {
	Player        domain.Player `json:"player"`
	Accumulated   float64       `json:"accumulated"`
	Cap           float64       `json:"cap"`
	CapHours      float64       `json:"cap_hours"`
	State         idle.State    `json:"state"`
	Progress      float64       `json:"progress"`
	OfflineIncome float64       `json:"offline_income,omitempty"`
	ServerTime    time.Time     `json:"server_time"`
}

// ActResult is the response to a player action.
type ActResult struct {
	*Snapshot
	Effects []game.Effect `json:"effects"`
}

// PlayerService loads, mutates and persists player documents. Writes for the
// same user are serialized.
type PlayerService struct {
	store  repository.PlayerStore
	engine *game.Engine
	audit  *AuditService
	clock  idle.Clock
	schema *jsonschema.Schema

	locks [64]sync.Mutex
}

func NewPlayerService(store repository.PlayerStore, engine *game.Engine, audit *AuditService, clock idle.Clock) *PlayerService {
	if clock == nil {
		clock = idle.RealClock{}
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("player.schema.json", bytes.NewReader(playerSchemaJSON)); err != nil {
		panic(fmt.Sprintf("player schema: %v", err))
	}
	return &PlayerService{
		store:  store,
		engine: engine,
		audit:  audit,
		clock:  clock,
		schema: compiler.MustCompile("player.schema.json"),
	}
}

func (s *PlayerService) Engine() *game.Engine { return s.engine }

func (s *PlayerService) lock(userID int64) func() {
	m := &s.locks[uint64(userID)%uint64(len(s.locks))]
	m.Lock()
	return m.Unlock
}

func (s *PlayerService) now() time.Time { return s.clock.Now().UTC() }

// Load returns the player, creating it on first visit. Repairs found by
// Normalize and a changed Telegram name are persisted. The snapshot carries
// the offline income earned since the last exit.
func (s *PlayerService) Load(ctx context.Context, userID int64, firstName string) (*Snapshot, error) {
	defer s.lock(userID)()

	now := s.now()
	p, err := s.loadOrCreate(ctx, userID, firstName, now)
	if err != nil {
		return nil, err
	}

	out, err := s.engine.Apply(*p, game.Rename{FirstName: firstName}, now)
	if err != nil {
		return nil, err
	}
	if !out.Dirty.Empty() {
		if err := s.store.SaveFields(ctx, &out.Player, out.Dirty); err != nil {
			return nil, err
		}
	}

	snap := s.snapshot(&out.Player, now)
	snap.OfflineIncome = s.engine.OfflineIncome(&out.Player, now)
	return snap, nil
}

// loadOrCreate must run under the user lock.
func (s *PlayerService) loadOrCreate(ctx context.Context, userID int64, firstName string, now time.Time) (*domain.Player, error) {
	p, err := s.store.Get(ctx, userID)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		fresh := s.engine.NewPlayer(userID, firstName, now)
		created, err := s.store.Create(ctx, &fresh)
		if err != nil {
			return nil, fmt.Errorf("create player: %w", err)
		}
		if created {
			PlayersCreated.Inc()
			logger.Info("player created", "user_id", userID)
			return &fresh, nil
		}
		p, err = s.store.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	fixed, dirty := s.engine.Normalize(*p, now)
	if !dirty.Empty() {
		logger.Debug("player repaired", "user_id", userID, "fields", dirty.Keys())
		if err := s.store.SaveFields(ctx, &fixed, dirty); err != nil {
			return nil, err
		}
	}
	return &fixed, nil
}

// Get returns the stored, normalized player without creating it.
func (s *PlayerService) Get(ctx context.Context, userID int64) (*domain.Player, error) {
	p, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	fixed, _ := s.engine.Normalize(*p, s.now())
	return &fixed, nil
}

// Snapshot is the read-only accrual view used by polling clients and the
// websocket pusher.
func (s *PlayerService) Snapshot(ctx context.Context, userID int64) (*Snapshot, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(p, s.now()), nil
}

// SnapshotAt recomputes the accrual view of an already loaded player.
func (s *PlayerService) SnapshotAt(p *domain.Player, now time.Time) *Snapshot {
	return s.snapshot(p, now)
}

func (s *PlayerService) snapshot(p *domain.Player, now time.Time) *Snapshot {
	rate := float64(p.IncomeRatePerHour)
	capHours := s.engine.CapHours(p)
	acc := s.engine.Accrued(p, now)
	return &Snapshot{
		Player:      *p,
		Accumulated: acc,
		Cap:         idle.Cap(rate, capHours),
		CapHours:    capHours,
		State:       idle.StateOf(acc, rate, capHours),
		Progress:    idle.Progress(acc, rate, capHours),
		ServerTime:  now,
	}
}

// Act applies one action and persists only the fields it changed.
func (s *PlayerService) Act(ctx context.Context, userID int64, action game.Action) (*ActResult, error) {
	defer s.lock(userID)()

	now := s.now()
	p, err := s.loadOrCreate(ctx, userID, "", now)
	if err != nil {
		return nil, err
	}

	out, err := s.engine.Apply(*p, action, now)
	if err != nil {
		ActionsTotal.WithLabelValues(action.Name(), "rejected").Inc()
		return nil, err
	}

	if !out.Dirty.Empty() {
		if err := s.store.SaveFields(ctx, &out.Player, out.Dirty); err != nil {
			ActionsTotal.WithLabelValues(action.Name(), "error").Inc()
			return nil, err
		}
	}
	ActionsTotal.WithLabelValues(action.Name(), "ok").Inc()
	s.observe(ctx, userID, action, out.Effects)

	return &ActResult{Snapshot: s.snapshot(&out.Player, now), Effects: out.Effects}, nil
}

func (s *PlayerService) observe(ctx context.Context, userID int64, action game.Action, effects []game.Effect) {
	for _, ef := range effects {
		switch ef.Kind {
		case game.EffectCollected, game.EffectSettled:
			CoinsCollected.Add(float64(ef.Amount))
		case game.EffectRace:
			if ef.Race != nil {
				RacesTotal.WithLabelValues(string(ef.Race.Difficulty), string(ef.Race.Result)).Inc()
			}
		}
	}
	if s.audit != nil {
		s.audit.LogEffects(ctx, userID, action, effects)
	}
}

// Prices lists the next price of everything the player can buy.
func (s *PlayerService) Prices(ctx context.Context, userID int64) (game.PriceList, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return game.PriceList{}, err
	}
	return s.engine.Prices(p), nil
}

// SaveDocument accepts a whole client document (legacy save). It is validated
// against the player schema; derived fields are recomputed and user_id is
// forced to the caller.
func (s *PlayerService) SaveDocument(ctx context.Context, userID int64, raw []byte) (*Snapshot, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := s.schema.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	var doc domain.Player
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	doc.UserID = userID

	defer s.lock(userID)()

	now := s.now()
	if _, err := s.loadOrCreate(ctx, userID, doc.FirstName, now); err != nil {
		return nil, err
	}
	fixed, _ := s.engine.Normalize(doc, now)
	if err := s.store.SaveFields(ctx, &fixed, domain.FieldAll); err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Log(ctx, userID, domain.AuditActionLegacySave, domain.AuditCategoryEconomy, map[string]interface{}{
			"game_coins": fixed.GameCoins,
			"jet_coins":  fixed.JetCoins,
		})
	}
	return s.snapshot(&fixed, now), nil
}

// Grant adds (or with negative values removes) currency, clamping at 0.
func (s *PlayerService) Grant(ctx context.Context, userID, gameCoins, jetCoins int64) (*domain.Player, error) {
	defer s.lock(userID)()

	p, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	fixed, dirty := s.engine.Normalize(*p, s.now())
	fixed.GameCoins = clampAdd(fixed.GameCoins, gameCoins)
	fixed.JetCoins = clampAdd(fixed.JetCoins, jetCoins)
	dirty |= domain.FieldGameCoins | domain.FieldJetCoins

	if err := s.store.SaveFields(ctx, &fixed, dirty); err != nil {
		return nil, err
	}
	return &fixed, nil
}

func clampAdd(a, b int64) int64 {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case a+b < 0:
		return 0
	}
	return a + b
}
