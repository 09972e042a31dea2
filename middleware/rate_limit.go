package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/regport/api-go/utils"
	"golang.org/x/time/rate"
)

// RateLimiter is an injected service with its own lifecycle rather than a
// package-level counter map. One token bucket per caller, idle buckets
// evicted by a janitor goroutine until Close.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[uint]*callerLimiter
	rps      rate.Limit
	burst    int
	done     chan struct{}
	closed   sync.Once
}

type callerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[uint]*callerLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		done:     make(chan struct{}),
	}
	go rl.janitor()
	return rl
}

func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-3 * time.Minute)
			rl.mu.Lock()
			for id, cl := range rl.limiters {
				if cl.lastSeen.Before(cutoff) {
					delete(rl.limiters, id)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) allow(userID uint) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cl, ok := rl.limiters[userID]
	if !ok {
		cl = &callerLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[userID] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter.Allow()
}

func (rl *RateLimiter) Close() {
	rl.closed.Do(func() { close(rl.done) })
}

// Middleware rejects over-limit callers with 429. Runs after auth so the
// bucket key is the authenticated user, not the connection.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := utils.GetCaller(c)
		if caller == nil {
			c.Next()
			return
		}
		if !rl.allow(caller.UserID) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}
