package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"photoshare/logger"
	"photoshare/metrics"
)

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rateLimitClient
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewIPRateLimiter allows perMinute requests per IP, with bursts up to the
// same number.
func NewIPRateLimiter(perMinute int) *IPRateLimiter {
	return &IPRateLimiter{
		clients: make(map[string]*rateLimitClient),
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   perMinute,
		now:     time.Now,
	}
}

func (rl *IPRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	client, ok := rl.clients[ip]
	if !ok {
		client = &rateLimitClient{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = client
	}
	client.lastSeen = now
	return client.limiter.AllowN(now, 1)
}

// Cleanup forgets clients idle for longer than maxIdle.
func (rl *IPRateLimiter) Cleanup(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-maxIdle)
	removed := 0
	for ip, client := range rl.clients {
		if client.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
			removed++
		}
	}
	return removed
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (rl *IPRateLimiter) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Cleanup(interval); n > 0 {
				logger.Log.Debug("Rate limiter cleanup", zap.Int("removed", n))
			}
		}
	}
}

// RateLimit rejects requests over the limiter's budget with 429. name labels
// the rejection metric.
func RateLimit(name string, rl *IPRateLimiter) gin.HandlerFunc {
	exceeded := metrics.Get().RateLimitExceededTotal.WithLabelValues(name)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.Allow(ip) {
			exceeded.Inc()
			logger.Log.Warn("Rate limit exceeded", zap.String("limiter", name), zap.String("client_ip", ip))
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"code": "TOO_MANY_REQUESTS", "error": "Too many requests"})
			return
		}
		c.Next()
	}
}
