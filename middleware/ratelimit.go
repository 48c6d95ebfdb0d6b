package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"ecofloss-backend/dtos"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	cleanupInterval = 5 * time.Minute
	staleAfter      = 10 * time.Minute
)

// clientKey scopes a bucket to one route for one client.
type clientKey struct {
	route string
	ip    string
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands each (route, client IP) pair its own token bucket.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[clientKey]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
	logger   *zap.Logger
}

// NewRateLimiter creates a rate limiter allowing bursts of maxRequests, refilled over
// perDuration. Stale clients are evicted until ctx is done.
func NewRateLimiter(ctx context.Context, maxRequests int, perDuration time.Duration, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRequests < 1 {
		maxRequests = 1
	}
	rl := &RateLimiter{
		visitors: make(map[clientKey]*visitor),
		limit:    rate.Every(perDuration / time.Duration(maxRequests)),
		burst:    maxRequests,
		now:      time.Now,
		logger:   logger,
	}

	go rl.cleanup(ctx)

	return rl
}

func (rl *RateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evictStale()
		}
	}
}

func (rl *RateLimiter) evictStale() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	evicted := 0
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > staleAfter {
			delete(rl.visitors, key)
			evicted++
		}
	}
	return evicted
}

func (rl *RateLimiter) allow(route, clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	key := clientKey{route: route, ip: clientIP}
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Middleware returns a gin middleware that rejects over-limit clients with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !rl.allow(c.FullPath(), clientIP) {
			rl.logger.Warn("rate limited", zap.String("client_ip", clientIP), zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dtos.ErrorResponse{Error: "Too many requests. Please try again later."})
			return
		}
		c.Next()
	}
}
