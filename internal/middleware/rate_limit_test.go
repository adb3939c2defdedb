package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/recepti/backend/internal/testhelpers"
	"github.com/pageza/recepti/backend/internal/types"
)

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	client := testhelpers.SetupTestRedis(t)
	rl := NewRateLimiter(client, RateLimitConfig{Window: time.Minute, Limit: 2}, nil)

	router := gin.New()
	router.POST("/recipes", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recipes", nil))
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, types.CodeRateLimited, decodeError(t, w).Code)
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
			assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
		}
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer client.Close()
	rl := NewRateLimiter(client, RateLimitConfig{Window: time.Minute, Limit: 1}, nil)

	router := gin.New()
	router.POST("/recipes", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recipes", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	}
}
