package ws

import (
	"time"

	"idle_garage/internal/idle"
	"idle_garage/internal/service"
)

// client → server
type Inbound struct {
	Type string `json:"type"`
}

// server → client
type ReadyPayload struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

type AccrualPayload struct {
	Type        string     `json:"type"`
	SessionID   string     `json:"session_id"`
	Accumulated float64    `json:"accumulated"`
	Cap         float64    `json:"cap"`
	Rate        int64      `json:"rate"`
	State       idle.State `json:"state"`
	Progress    float64    `json:"progress"`
	GameCoins   int64      `json:"game_coins"`
	JetCoins    int64      `json:"jet_coins"`
	ServerTime  time.Time  `json:"server_time"`
}

type ErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func accrualFrom(sessionID string, s *service.Snapshot) AccrualPayload {
	return AccrualPayload{
		Type:        MsgAccrual,
		SessionID:   sessionID,
		Accumulated: s.Accumulated,
		Cap:         s.Cap,
		Rate:        s.Player.IncomeRatePerHour,
		State:       s.State,
		Progress:    s.Progress,
		GameCoins:   s.Player.GameCoins,
		JetCoins:    s.Player.JetCoins,
		ServerTime:  s.ServerTime,
	}
}
