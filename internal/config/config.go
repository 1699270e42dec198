package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"idle_garage/internal/logger"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	AppPort          string
	Store            string
	DatabaseURL      string
	SQLitePath       string
	BotToken         string
	JWTSecret        string
	JWTTTL           time.Duration
	AdminTelegramIDs []int64 // tg id админов бота
	AdminBotEnabled  bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIRateLimit     int
	APIRateWindow    time.Duration
	AuthRateLimit    int
	AuthRateWindow   time.Duration
	ActionRateLimit  int
	ActionRateWindow time.Duration

	CatalogPath     string
	MaxOfflineHours float64
	AccrualTick     time.Duration

	LogLevel      string
	LogJSON       bool
	DevMode       bool
	AllowedOrigin string
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	store := strings.ToLower(os.Getenv("STORE"))
	if store == "" {
		store = StorePostgres
	}
	if store != StorePostgres && store != StoreSQLite {
		logger.Fatal("unknown STORE", "store", store)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" && store == StorePostgres {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	devMode := os.Getenv("DEV_MODE") == "true"

	// без токена бота initData не проверить, в dev режиме это допустимо
	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" && !devMode {
		logger.Fatal("BOT_TOKEN is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = "garage.db"
	}

	// !! ЧЕРЕЗ ЗАПЯТУЮ В ENV !!
	adminIDs := parseIDs(os.Getenv("ADMIN_TELEGRAM_IDS"))

	return &Config{
		AppPort:          port,
		Store:            store,
		DatabaseURL:      dbURL,
		SQLitePath:       sqlitePath,
		BotToken:         botToken,
		JWTSecret:        jwtSecret,
		JWTTTL:           envDuration("JWT_TTL_HOURS", 24, time.Hour),
		AdminTelegramIDs: adminIDs,
		AdminBotEnabled:  os.Getenv("ADMIN_BOT_ENABLED") == "true",

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		APIRateLimit:     envInt("API_RATE_LIMIT", 120),
		APIRateWindow:    envDuration("API_RATE_WINDOW_SECONDS", 60, time.Second),
		AuthRateLimit:    envInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow:   envDuration("AUTH_RATE_WINDOW_SECONDS", 60, time.Second),
		ActionRateLimit:  envInt("ACTION_RATE_LIMIT", 60), // макс действий за ->
		ActionRateWindow: envDuration("ACTION_RATE_WINDOW", 60, time.Second),

		CatalogPath:     os.Getenv("CATALOG_PATH"),
		MaxOfflineHours: envFloat("MAX_OFFLINE_HOURS", 0),
		AccrualTick:     envDuration("ACCRUAL_TICK_MS", 1000, time.Millisecond),

		LogLevel:      envString("LOG_LEVEL", "info"),
		LogJSON:       os.Getenv("LOG_JSON") == "true",
		DevMode:       devMode,
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
	}
}

func parseIDs(s string) []int64 {
	var ids []int64
	for _, idStr := range strings.Split(s, ",") {
		idStr = strings.TrimSpace(idStr)
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
		logger.Warn("invalid int in env, using default", "key", key, "value", v)
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
		logger.Warn("invalid number in env, using default", "key", key, "value", v)
	}
	return def
}

func envDuration(key string, def int, unit time.Duration) time.Duration {
	n := envInt(key, def)
	if n == 0 {
		n = def
	}
	return time.Duration(n) * unit
}
