package handlers

import (
	"io"
	"net/http"
	"strconv"

	"idle_garage/internal/domain"
	"idle_garage/internal/game"

	"github.com/gin-gonic/gin"
)

const maxDocumentBytes = 64 << 10

type upgradePartRequest struct {
	CarID  string `json:"car_id"`
	PartID string `json:"part_id" binding:"required"`
}

type buildingRequest struct {
	BuildingID string `json:"building_id" binding:"required"`
}

type staffRequest struct {
	StaffID string `json:"staff_id" binding:"required"`
}

type carRequest struct {
	CarID string `json:"car_id" binding:"required"`
}

type raceRequest struct {
	Difficulty domain.Difficulty `json:"difficulty" binding:"required"`
}

// GetPlayer returns the player document with the live accrual view.
func (h *Handler) GetPlayer(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	snap, err := h.Players.Load(c.Request.Context(), userID, "")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// SavePlayer is the legacy whole-document save.
func (h *Handler) SavePlayer(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDocumentBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if len(raw) > maxDocumentBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "document too large"})
		return
	}

	snap, err := h.Players.SaveDocument(c.Request.Context(), userID, raw)
	if err != nil {
		respondError(c, err)
		return
	}
	h.notify(userID)
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) Collect(c *gin.Context) { h.act(c, game.Collect{}) }

func (h *Handler) Exit(c *gin.Context) { h.act(c, game.Exit{}) }

func (h *Handler) CompleteTutorial(c *gin.Context) { h.act(c, game.CompleteTutorial{}) }

func (h *Handler) UpgradePart(c *gin.Context) {
	var req upgradePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "part_id required"})
		return
	}
	h.act(c, game.UpgradePart{CarID: req.CarID, PartID: req.PartID})
}

func (h *Handler) UpgradeBuilding(c *gin.Context) {
	var req buildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "building_id required"})
		return
	}
	h.act(c, game.UpgradeBuilding{BuildingID: req.BuildingID})
}

func (h *Handler) HireStaff(c *gin.Context) {
	var req staffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "staff_id required"})
		return
	}
	h.act(c, game.HireStaff{StaffID: req.StaffID})
}

func (h *Handler) BuyCar(c *gin.Context) {
	var req carRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "car_id required"})
		return
	}
	h.act(c, game.BuyCar{CarID: req.CarID})
}

func (h *Handler) SelectCar(c *gin.Context) {
	var req carRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "car_id required"})
		return
	}
	h.act(c, game.SelectCar{CarID: req.CarID})
}

func (h *Handler) Race(c *gin.Context) {
	var req raceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "difficulty required"})
		return
	}
	h.act(c, game.Race{Difficulty: req.Difficulty})
}

func (h *Handler) act(c *gin.Context, action game.Action) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	res, err := h.Players.Act(c.Request.Context(), userID, action)
	if err != nil {
		respondError(c, err)
		return
	}
	h.notify(userID)
	c.JSON(http.StatusOK, res)
}

// Prices lists the next price of every upgrade; maxed staff have a null cost.
func (h *Handler) Prices(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	prices, err := h.Players.Prices(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prices)
}

// History returns the caller's latest audit entries.
func (h *Handler) History(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	logs, err := h.Audit.GetUserAuditLogs(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": logs})
}

// GetCatalog returns the static game data the client renders shops from.
func (h *Handler) GetCatalog(c *gin.Context) {
	cat := h.Catalog
	c.JSON(http.StatusOK, gin.H{
		"parts":     cat.Parts,
		"cars":      cat.Cars,
		"buildings": cat.Buildings,
		"staff":     cat.Staff,
		"races":     cat.Races,
	})
}
