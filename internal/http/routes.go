package http

import (
	"time"

	"idle_garage/internal/http/handlers"
	"idle_garage/internal/http/middleware"
	"idle_garage/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Limits groups the rate limits of the API.
type Limits struct {
	API          int
	APIWindow    time.Duration
	Auth         int
	AuthWindow   time.Duration
	Action       int
	ActionWindow time.Duration
}

// DefaultLimits are used for zero fields.
var DefaultLimits = Limits{
	API:          120,
	APIWindow:    time.Minute,
	Auth:         10,
	AuthWindow:   time.Minute,
	Action:       60,
	ActionWindow: time.Minute,
}

func (l Limits) withDefaults() Limits {
	if l.API <= 0 || l.APIWindow <= 0 {
		l.API, l.APIWindow = DefaultLimits.API, DefaultLimits.APIWindow
	}
	if l.Auth <= 0 || l.AuthWindow <= 0 {
		l.Auth, l.AuthWindow = DefaultLimits.Auth, DefaultLimits.AuthWindow
	}
	if l.Action <= 0 || l.ActionWindow <= 0 {
		l.Action, l.ActionWindow = DefaultLimits.Action, DefaultLimits.ActionWindow
	}
	return l
}

// Deps is everything the router needs.
type Deps struct {
	Handler       *handlers.Handler
	Health        *handlers.HealthHandler
	Hub           *ws.Hub
	Limits        Limits
	AllowedOrigin string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	limits := d.Limits.withDefaults()
	h := d.Handler

	r.Use(middleware.Observe())

	// Health checks (no rate limiting)
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(limits.API, limits.APIWindow))
	registerAPIRoutes(v1, h, limits)

	// Legacy /api routes for older clients
	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(limits.API, limits.APIWindow))
	api.GET("/health", d.Health.Health)
	registerAPIRoutes(api, h, limits)

	// WebSocket accrual push
	if d.Hub != nil {
		h.Notifier = d.Hub
		r.GET("/ws", ws.HandleWS(d.Hub, d.AllowedOrigin))
	}
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, limits Limits) {
	// Auth
	api.POST("/auth", middleware.RedisRateLimit(limits.Auth, limits.AuthWindow), h.Auth)

	// Static game data
	api.GET("/catalog", h.GetCatalog)

	// Action rate limiter middleware (per user, not per IP)
	actionRL := middleware.ActionRateLimit(limits.Action, limits.ActionWindow)

	player := api.Group("/player")
	player.Use(middleware.JWT())
	{
		player.GET("", h.GetPlayer)
		player.PUT("", actionRL, h.SavePlayer)
		player.GET("/prices", h.Prices)
		player.GET("/history", h.History)

		player.POST("/collect", actionRL, h.Collect)
		player.POST("/exit", h.Exit)
		player.POST("/tutorial/complete", actionRL, h.CompleteTutorial)
		player.POST("/parts/upgrade", actionRL, h.UpgradePart)
		player.POST("/buildings/upgrade", actionRL, h.UpgradeBuilding)
		player.POST("/staff/hire", actionRL, h.HireStaff)
		player.POST("/cars/buy", actionRL, h.BuyCar)
		player.POST("/cars/select", actionRL, h.SelectCar)
		player.POST("/race", actionRL, h.Race)
	}

	// Leaderboard by income rate + caller rank
	api.GET("/leaderboard", h.GetLeaderboard)
	api.GET("/leaderboard/rank", middleware.JWT(), h.GetMyRank)
}
