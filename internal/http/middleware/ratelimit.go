package middleware

import (
	"net/http"
	"sync"
	"time"
)

// The conversation turn endpoint is the only unauthenticated write surface,
// so per-client abuse control lives here rather than at a gateway.

const (
	sweepInterval = 5 * time.Minute
	clientIdleTTL = 10 * time.Minute
)

// RateLimiter is a token-bucket limiter keyed by client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*tokenBucket
	rate    float64 // tokens refilled per second
	burst   int     // bucket capacity
	now     func() time.Time
}

type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing rate requests/sec with the given
// burst size per client.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*tokenBucket),
		rate:    rate,
		burst:   burst,
		now:     time.Now,
	}
	go rl.sweepLoop()
	return rl
}

// Allow reports whether a request from the client is within the rate limit.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.clients[client]
	if !ok {
		b = &tokenBucket{tokens: float64(rl.burst), lastSeen: now}
		rl.clients[client] = b
	}

	b.tokens += now.Sub(b.lastSeen).Seconds() * rl.rate
	if b.tokens > float64(rl.burst) {
		b.tokens = float64(rl.burst)
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		rl.sweep(rl.now().Add(-clientIdleTTL))
	}
}

// sweep evicts clients idle since before cutoff. Conversations are short, so
// buckets rarely outlive a few turns.
func (rl *RateLimiter) sweep(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for client, b := range rl.clients {
		if b.lastSeen.Before(cutoff) {
			delete(rl.clients, client)
		}
	}
}

// RateLimit returns an HTTP middleware that rejects requests exceeding the
// configured rate with 429 Too Many Requests.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := r.RemoteAddr
			// Prefer X-Real-Ip set by chi's RealIP middleware.
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				client = xri
			}
			if !limiter.Allow(client) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
