package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRateLimiter_Allow(t *testing.T) {
	mr, rdb := newTestRedis(t)
	limiter := NewRateLimiter(rdb, "production")
	rule := RateRule{Name: "toggle_like", Limit: 2, Window: time.Minute}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _, err := limiter.Allow(ctx, rule, "user:1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, retry, err := limiter.Allow(ctx, rule, "user:1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, retry, time.Duration(0))

	// Other callers have their own window.
	allowed, _, err = limiter.Allow(ctx, rule, "user:2")
	require.NoError(t, err)
	assert.True(t, allowed)

	mr.FastForward(time.Minute + time.Second)
	allowed, _, err = limiter.Allow(ctx, rule, "user:1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_DisabledEnvironments(t *testing.T) {
	for _, env := range []string{"", "test", "development", "stress"} {
		limiter := NewRateLimiter(nil, env)
		allowed, _, err := limiter.Allow(context.Background(), RateRule{Name: "x", Limit: 0, Window: time.Minute}, "ip:1")
		assert.NoError(t, err, env)
		assert.True(t, allowed, env)
	}
}

func TestRateLimiter_NilStore(t *testing.T) {
	limiter := NewRateLimiter(nil, "production")
	allowed, _, err := limiter.Allow(context.Background(), RateRule{Name: "x", Limit: 1, Window: time.Minute}, "ip:1")
	assert.ErrorIs(t, err, errNoStore)
	assert.False(t, allowed)
}

func TestRateLimiter_Handler(t *testing.T) {
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	t.Run("rejects over limit", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		limiter := NewRateLimiter(rdb, "production")
		app := fiber.New()
		app.Post("/posts", limiter.Handler(RateRule{Name: "create_post", Limit: 1, Window: time.Minute}), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/posts", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/posts", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("Retry-After"))
		_ = resp.Body.Close()
	})

	t.Run("fail open without store", func(t *testing.T) {
		limiter := NewRateLimiter(nil, "production")
		app := fiber.New()
		app.Get("/test", limiter.Handler(RateRule{Name: "x", Limit: 1, Window: time.Minute}), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("fail closed without store", func(t *testing.T) {
		limiter := NewRateLimiter(nil, "production")
		app := fiber.New()
		app.Get("/sensitive", limiter.Handler(RateRule{Name: "x", Limit: 1, Window: time.Minute, Policy: FailClosed}), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/sensitive", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
