package game

import "errors"

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMaxLevel          = errors.New("max level reached")
	ErrBuildingLocked    = errors.New("building is locked")
	ErrUnknownBuilding   = errors.New("unknown building")
	ErrUnknownCar        = errors.New("unknown car")
	ErrCarNotOwned       = errors.New("car not owned")
	ErrCarAlreadyOwned   = errors.New("car already owned")
	ErrUnknownPart       = errors.New("unknown part")
	ErrUnknownStaff      = errors.New("unknown staff role")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrNoSelectedCar     = errors.New("no selected car")
	ErrUnknownAction     = errors.New("unknown action")
)
