package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"idle_garage/internal/logger"
	"idle_garage/internal/service"
	"idle_garage/internal/telegram"

	"github.com/gin-gonic/gin"
)

const maxInitDataLen = 4096

type AuthRequest struct {
	InitData string `json:"init_data"`
}

// Auth exchanges Telegram WebApp init data for a session token and returns the
// player with the offline income earned since the last visit.
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if len(req.InitData) > maxInitDataLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "init_data too long"})
		return
	}

	var user *telegram.WebAppUser
	if h.DevMode {
		// DEV MODE: пропускаем валидацию
		user = devUser(req.InitData)
	} else {
		u, err := telegram.Authenticate(req.InitData, h.BotToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or stale telegram data"})
			return
		}
		user = u
	}

	ctx := logger.ContextWithUser(c.Request.Context(), user.ID)
	snap, err := h.Players.Load(ctx, user.ID, user.DisplayName())
	if err != nil {
		logger.WithContext(ctx).Error("load player on auth", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load player"})
		return
	}

	token, err := service.GenerateJWT(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	h.Audit.LogLogin(ctx, user.ID, c.ClientIP())

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"first_name": user.FirstName,
		},
		"player": snap,
	})
}

// devUser takes the user from unsigned init data, or falls back to a fixed
// test account. Raw JSON like {"id":42} is accepted too.
func devUser(initData string) *telegram.WebAppUser {
	if u, err := telegram.ParseUser(initData); err == nil {
		return u
	}

	var userID int64 = 12345
	if i := strings.Index(initData, `"id":`); i >= 0 {
		start := i + len(`"id":`)
		end := start
		for end < len(initData) && initData[end] >= '0' && initData[end] <= '9' {
			end++
		}
		if parsed, err := strconv.ParseInt(initData[start:end], 10, 64); err == nil && parsed > 0 {
			userID = parsed
		}
	}
	return &telegram.WebAppUser{ID: userID, FirstName: "Test", Username: "testuser" + strconv.FormatInt(userID, 10)}
}
