// Package middleware provides HTTP middleware for the API endpoints.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	domainerror "github.com/household-ledger/backend/internal/domain/error"
	"github.com/household-ledger/backend/internal/integration/entrypoint/dto"
)

const (
	// defaultMaxAttempts is the default number of allowed attempts per window.
	defaultMaxAttempts = 5
	// defaultWindowDuration is the default time window for rate limiting.
	defaultWindowDuration = 1 * time.Minute
	// rateLimitKeyPrefix namespaces rate limit counters in Redis.
	rateLimitKeyPrefix = "ledger:ratelimit:"
)

// rateLimitStore counts attempts for a key within the current window.
type rateLimitStore interface {
	allow(ctx context.Context, key string) (bool, error)
}

// RateLimiter limits requests per identity, or per client IP for anonymous
// requests.
type RateLimiter struct {
	store rateLimitStore
}

// NewRateLimiter creates a new in-memory rate limiter with default settings.
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithConfig(defaultMaxAttempts, defaultWindowDuration)
}

// NewRateLimiterWithConfig creates a new in-memory rate limiter with custom settings.
func NewRateLimiterWithConfig(maxAttempts int, windowDuration time.Duration) *RateLimiter {
	return &RateLimiter{
		store: &memoryStore{
			entries:        make(map[string]*rateLimitEntry),
			maxAttempts:    maxAttempts,
			windowDuration: windowDuration,
		},
	}
}

// NewRedisRateLimiter creates a rate limiter whose counters live in Redis,
// so that every API instance shares them.
func NewRedisRateLimiter(client redis.UniversalClient, maxAttempts int, windowDuration time.Duration) *RateLimiter {
	return &RateLimiter{
		store: &redisStore{
			client:         client,
			maxAttempts:    maxAttempts,
			windowDuration: windowDuration,
		},
	}
}

// Middleware returns a Gin middleware handler that enforces rate limiting.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip rate limiting in E2E mode or test environment
		if os.Getenv("E2E_MODE") == "true" || os.Getenv("ENV") == "test" {
			c.Next()
			return
		}

		allowed, err := rl.store.allow(c.Request.Context(), rateLimitKey(c))
		if err != nil {
			// Counting failures never block provisioning.
			slog.WarnContext(c.Request.Context(), "Rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		if !allowed {
			c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error: "Too many requests. Please try again later.",
				Code:  string(domainerror.ErrCodeRateLimited),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// rateLimitKey prefers the verified identity subject over the client IP.
func rateLimitKey(c *gin.Context) string {
	if profile, ok := GetIdentityFromContext(c); ok && profile.Subject != "" {
		return "sub:" + profile.Subject
	}

	clientIP := c.ClientIP()
	if clientIP == "" {
		clientIP = c.Request.RemoteAddr
	}
	return "ip:" + clientIP
}

// Reset clears the in-memory rate limiter state (useful for testing).
func (rl *RateLimiter) Reset() {
	if store, ok := rl.store.(*memoryStore); ok {
		store.reset()
	}
}

// Cleanup removes expired in-memory entries (can be called periodically to free memory).
func (rl *RateLimiter) Cleanup() {
	if store, ok := rl.store.(*memoryStore); ok {
		store.cleanup()
	}
}

// rateLimitEntry tracks rate limit data for a single key.
type rateLimitEntry struct {
	attempts  int
	resetTime time.Time
}

type memoryStore struct {
	mu             sync.Mutex
	entries        map[string]*rateLimitEntry
	maxAttempts    int
	windowDuration time.Duration
}

func (s *memoryStore) allow(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	entry, exists := s.entries[key]
	if !exists {
		s.entries[key] = &rateLimitEntry{
			attempts:  1,
			resetTime: now.Add(s.windowDuration),
		}
		return true, nil
	}

	if now.After(entry.resetTime) {
		entry.attempts = 1
		entry.resetTime = now.Add(s.windowDuration)
		return true, nil
	}

	if entry.attempts < s.maxAttempts {
		entry.attempts++
		return true, nil
	}

	return false, nil
}

func (s *memoryStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*rateLimitEntry)
}

func (s *memoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, entry := range s.entries {
		if now.After(entry.resetTime) {
			delete(s.entries, key)
		}
	}
}

// redisStore is a fixed-window counter: INCR, then EXPIRE on the first hit.
type redisStore struct {
	client         redis.UniversalClient
	maxAttempts    int
	windowDuration time.Duration
}

func (s *redisStore) allow(ctx context.Context, key string) (bool, error) {
	redisKey := rateLimitKeyPrefix + key

	attempts, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if attempts == 1 {
		if err := s.client.Expire(ctx, redisKey, s.windowDuration).Err(); err != nil {
			return false, err
		}
	}

	return attempts <= int64(s.maxAttempts), nil
}
