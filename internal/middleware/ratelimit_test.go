package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInMemoryRateLimiter(t *testing.T) {
	ctx := context.Background()
	l := NewInMemoryRateLimiter(2, time.Minute)
	defer l.Close()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok, "keys are limited independently")
}

func TestRedisRateLimiter(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	l := NewRedisRateLimiter(client, 2, time.Minute)

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "ip")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("carehub:ratelimit:ip"))

	mr.FastForward(time.Minute + time.Second)
	ok, err = l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, ok, "a new window starts after expiry")
}

func TestRedisRateLimiter_RestoresMissingExpiry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	l := NewRedisRateLimiter(client, 2, time.Minute)

	// A counter left over limit with no expiry, as after a failed EXPIRE.
	require.NoError(t, mr.Set("carehub:ratelimit:ip", "5"))
	assert.Zero(t, mr.TTL("carehub:ratelimit:ip"))

	ok, err := l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("carehub:ratelimit:ip"))

	mr.FastForward(time.Minute + time.Second)
	ok, err = l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, ok, "the stuck counter expires")
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewInMemoryRateLimiter(1, time.Minute)
	defer l.Close()
	r := gin.New()
	r.Use(RateLimit(l, zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	r := gin.New()
	r.Use(RateLimit(NewRedisRateLimiter(client, 1, time.Minute), zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
