package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// connectRedis runs only if REDIS_ADDR env is set.
func connectRedis(t *testing.T) {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}

	InitRedisRateLimiter(addr, os.Getenv("REDIS_PASSWORD"), db)
	if redisClient == nil {
		t.Fatalf("redis at %s unreachable", addr)
	}
	t.Cleanup(CloseRedis)
	gin.SetMode(gin.TestMode)
}

func withUser(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func TestRedisActionRateLimitPerUser(t *testing.T) {
	connectRedis(t)
	ctx := context.Background()

	window := 5 * time.Second
	userA := time.Now().UnixNano()
	userB := userA + 1
	keyA := "action_rl:" + strconv.FormatInt(userA, 10) + ":5"
	keyB := "action_rl:" + strconv.FormatInt(userB, 10) + ":5"
	redisClient.Del(ctx, keyA, keyB)
	t.Cleanup(func() { redisClient.Del(context.Background(), keyA, keyB) })

	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	r := gin.New()
	r.POST("/a/collect", withUser(userA), ActionRateLimit(2, window), ok)
	r.POST("/b/collect", withUser(userB), ActionRateLimit(2, window), ok)

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/a/collect", nil))
		if w.Code != want {
			t.Fatalf("request %d: status = %d; want %d", i+1, w.Code, want)
		}
	}

	n, err := redisClient.Get(ctx, keyA).Int64()
	if err != nil || n != 3 {
		t.Fatalf("%s = %d, %v; want 3", keyA, n, err)
	}
	if ttl, err := redisClient.TTL(ctx, keyA).Result(); err != nil || ttl <= 0 || ttl > window {
		t.Fatalf("ttl = %v, %v", ttl, err)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/b/collect", nil))
	if w.Code != http.StatusOK || w.Header().Get("X-ActionRateLimit-Remaining") != "1" {
		t.Fatalf("other user: status = %d remaining = %q", w.Code, w.Header().Get("X-ActionRateLimit-Remaining"))
	}
}

func TestRedisRateLimitSharedAcrossPrefixes(t *testing.T) {
	connectRedis(t)
	ctx := context.Background()

	window := 9 * time.Second
	ip := "203.0.113." + strconv.Itoa(int(time.Now().UnixNano()%200)+1)
	key := "rl:9:" + ip
	redisClient.Del(ctx, key)
	t.Cleanup(func() { redisClient.Del(context.Background(), key) })

	// same layout as the router: one limiter per group, shared key
	r := gin.New()
	ping := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	v1 := r.Group("/api/v1")
	v1.Use(RedisRateLimit(3, window))
	v1.GET("/catalog", ping)
	legacy := r.Group("/api")
	legacy.Use(RedisRateLimit(3, window))
	legacy.GET("/catalog", ping)

	paths := []string{"/api/v1/catalog", "/api/catalog", "/api/v1/catalog", "/api/catalog"}
	for i, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-Forwarded-For", ip)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		want := http.StatusOK
		if i == len(paths)-1 {
			want = http.StatusTooManyRequests
		}
		if w.Code != want {
			t.Fatalf("%s (#%d): status = %d; want %d", path, i+1, w.Code, want)
		}
	}
}

func TestRateLimitFailsOpenOnRedisError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	prev := redisClient
	redisClient = redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() {
		_ = redisClient.Close()
		redisClient = prev
	})

	r := gin.New()
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	r.GET("/api/catalog", RedisRateLimit(1, time.Minute), ok)
	r.POST("/api/player/collect", withUser(7), ActionRateLimit(1, time.Minute), ok)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
		if w.Code != http.StatusOK || w.Header().Get("X-RateLimit-Error") != "redis-error" {
			t.Fatalf("ip limiter: status = %d header = %q", w.Code, w.Header().Get("X-RateLimit-Error"))
		}

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/player/collect", nil))
		if w.Code != http.StatusOK || w.Header().Get("X-ActionRateLimit-Error") != "redis-error" {
			t.Fatalf("action limiter: status = %d header = %q", w.Code, w.Header().Get("X-ActionRateLimit-Error"))
		}
	}
}
