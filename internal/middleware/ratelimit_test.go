package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"buzztub/internal/config"
)

func TestRateLimit_PostOnly(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2}, nil))
	r.Any("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(config.RateLimitConfig{Enabled: false}, nil))
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestLimiterStore_EvictsIdleClients(t *testing.T) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := newLimiterStore(rate.Limit(1), 1)
	store.now = func() time.Time { return clock }

	store.get("10.0.0.1")
	store.get("10.0.0.2")
	assert.Len(t, store.limiters, 2)

	clock = clock.Add(5 * time.Minute)
	store.get("10.0.0.2")

	clock = clock.Add(limiterIdleTTL - time.Minute)
	store.get("10.0.0.3")

	assert.Len(t, store.limiters, 2)
	assert.NotContains(t, store.limiters, "10.0.0.1")
	assert.Contains(t, store.limiters, "10.0.0.2")
}

func TestLimiterStore_KeepsActiveClientBucket(t *testing.T) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := newLimiterStore(rate.Limit(0.001), 1)
	store.now = func() time.Time { return clock }

	first := store.get("10.0.0.1")
	clock = clock.Add(time.Minute)

	assert.Same(t, first, store.get("10.0.0.1"))
}
