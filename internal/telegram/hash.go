package telegram

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"
)

var ErrNoUser = errors.New("init data has no user")

// WebAppUser is the "user" field of Telegram WebApp init data.
type WebAppUser struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
}

// DisplayName is what the garage shows on the leaderboard.
func (u *WebAppUser) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName); name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "Player"
}

func ParseUser(initData string) (*WebAppUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, err
	}
	raw := values.Get("user")
	if raw == "" {
		return nil, ErrNoUser
	}

	var user WebAppUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, ErrNoUser
	}
	return &user, nil
}
