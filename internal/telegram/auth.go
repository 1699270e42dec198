package telegram

import (
	"errors"

	"idle_garage/internal/service"
)

var ErrInvalidInitData = errors.New("invalid telegram init data")

// Authenticate validates init data and returns the signed-in user.
func Authenticate(initData, botToken string) (*WebAppUser, error) {
	if _, ok := service.ValidateTelegramInitData(initData, botToken); !ok {
		return nil, ErrInvalidInitData
	}
	user, err := ParseUser(initData)
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, ErrInvalidInitData
	}
	return user, nil
}
