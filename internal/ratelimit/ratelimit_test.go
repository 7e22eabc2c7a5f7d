package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/plantdesklabs/plantdesk/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLimitedEngine(t *testing.T, requests int) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := config.Config{}
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Requests = requests
	cfg.RateLimit.Window = time.Minute

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/ping", New(cfg, client, zap.NewNop()).Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return engine, mr
}

func hit(engine *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/ping", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestLimiterAllowsUnderTheWindowBudget(t *testing.T) {
	engine, _ := newLimitedEngine(t, 3)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, hit(engine).Code)
	}
}

func TestLimiterRejectsOverTheWindowBudget(t *testing.T) {
	engine, _ := newLimitedEngine(t, 2)

	require.Equal(t, http.StatusOK, hit(engine).Code)
	require.Equal(t, http.StatusOK, hit(engine).Code)

	rec := hit(engine)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.JSONEq(t, `{"message": "Too many requests"}`, rec.Body.String())
}

func TestLimiterFailsOpenWhenRedisIsDown(t *testing.T) {
	engine, mr := newLimitedEngine(t, 1)
	mr.Close()

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, hit(engine).Code)
	}
}

func TestLimiterClampsSubSecondWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	for _, window := range []time.Duration{0, 500 * time.Millisecond} {
		cfg := config.Config{}
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.Requests = 10
		cfg.RateLimit.Window = window

		l := New(cfg, client, zap.NewNop())
		require.Equal(t, time.Second, l.window)
	}

	// Requests still pass through the clamped window.
	cfg := config.Config{}
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Requests = 10

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/ping", New(cfg, client, zap.NewNop()).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	require.Equal(t, http.StatusOK, hit(engine).Code)
}

func TestLimiterDisabledWithoutClient(t *testing.T) {
	cfg := config.Config{}
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Requests = 1
	cfg.RateLimit.Window = time.Minute

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/ping", New(cfg, nil, zap.NewNop()).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, hit(engine).Code)
	}
}
