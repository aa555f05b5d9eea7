package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"entitlement-backend/shared/config"
)

// Entries with no traffic for this long are dropped by the cleanup loop.
const staleAfter = 24 * time.Hour

// RateLimitConfig bounds how many requests one client may make inside a
// window and how long an offender stays blocked.
type RateLimitConfig struct {
	MaxRequests   int
	TimeWindow    time.Duration
	BlockDuration time.Duration
}

// NewRateLimitConfig reads the limits from the loaded configuration.
func NewRateLimitConfig() RateLimitConfig {
	cfg := config.GetConfig()
	return RateLimitConfig{
		MaxRequests:   cfg.RateLimitMaxRequests,
		TimeWindow:    time.Duration(cfg.RateLimitWindowSeconds) * time.Second,
		BlockDuration: time.Duration(cfg.RateLimitBlockMinutes) * time.Minute,
	}
}

// clientWindow is the per-client counter. blockedUntil is zero unless the
// client exceeded the limit and is serving a block.
type clientWindow struct {
	count        int
	windowEnds   time.Time
	blockedUntil time.Time
	lastSeen     time.Time
}

// RateLimiter counts requests per client IP in gateway memory.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
}

// NewRateLimiter starts a limiter whose stale entries are swept every
// cleanupEvery.
func NewRateLimiter(cleanupEvery time.Duration) *RateLimiter {
	rl := &RateLimiter{clients: make(map[string]*clientWindow)}
	go rl.sweep(cleanupEvery)
	return rl
}

func (rl *RateLimiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-staleAfter)
		rl.mu.Lock()
		for ip, w := range rl.clients {
			if w.lastSeen.Before(cutoff) {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) allow(ip string, cfg RateLimitConfig) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.clients[ip]
	if !ok {
		rl.clients[ip] = &clientWindow{
			count:      1,
			windowEnds: now.Add(cfg.TimeWindow),
			lastSeen:   now,
		}
		return true
	}
	w.lastSeen = now

	if !w.blockedUntil.IsZero() {
		if now.Before(w.blockedUntil) {
			return false
		}
		// Block served; start a fresh window.
		w.blockedUntil = time.Time{}
		w.count = 1
		w.windowEnds = now.Add(cfg.TimeWindow)
		return true
	}

	if now.After(w.windowEnds) {
		w.count = 1
		w.windowEnds = now.Add(cfg.TimeWindow)
		return true
	}

	if w.count >= cfg.MaxRequests {
		w.blockedUntil = now.Add(cfg.BlockDuration)
		return false
	}

	w.count++
	return true
}

// GlobalRateLimitMiddleware rejects a client's requests with 429 once it
// exceeds the window, until its block expires.
func (rl *RateLimiter) GlobalRateLimitMiddleware(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP(), cfg) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"message":     "Too many requests from this IP. Please try again later.",
				"retry_after": cfg.BlockDuration.Seconds(),
			})
			return
		}
		c.Next()
	}
}
