package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"idle_garage/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard returns the top players by income rate
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	top, err := h.Leaderboard.Top(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": top,
		"metric":      "income_rate_per_hour",
	})
}

// GetMyRank returns the current user's rank in the leaderboard
func (h *Handler) GetMyRank(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	entry, err := h.Leaderboard.Rank(c.Request.Context(), userID)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		// игрок ещё не создан
		c.JSON(http.StatusOK, gin.H{"rank": 0, "user_id": userID, "income_rate_per_hour": 0})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}
