package handlers

import (
	"errors"
	"net/http"

	"idle_garage/internal/game"
	"idle_garage/internal/logger"
	"idle_garage/internal/repository"
	"idle_garage/internal/service"

	"github.com/gin-gonic/gin"
)

// statusOf maps domain errors to HTTP status codes. Anything unknown is a 500.
func statusOf(err error) int {
	switch {
	case errors.Is(err, game.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, game.ErrMaxLevel),
		errors.Is(err, game.ErrBuildingLocked),
		errors.Is(err, game.ErrCarNotOwned),
		errors.Is(err, game.ErrCarAlreadyOwned),
		errors.Is(err, game.ErrNoSelectedCar):
		return http.StatusConflict
	case errors.Is(err, game.ErrUnknownBuilding),
		errors.Is(err, game.ErrUnknownCar),
		errors.Is(err, game.ErrUnknownPart),
		errors.Is(err, game.ErrUnknownStaff),
		errors.Is(err, game.ErrUnknownDifficulty),
		errors.Is(err, game.ErrUnknownAction),
		errors.Is(err, service.ErrInvalidDocument):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrPlayerNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("request failed", "route", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
