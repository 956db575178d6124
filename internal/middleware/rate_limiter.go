package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/harentsoaR/hospital-staff-api/internal/apperror"
	"github.com/harentsoaR/hospital-staff-api/internal/response"
)

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	r        rate.Limit
	b        int
	idle     time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter allows rps requests per second per IP with the given burst.
// Visitors idle for longer than three minutes are dropped until ctx is done.
func NewIPRateLimiter(ctx context.Context, rps float64, burst int) *IPRateLimiter {
	l := &IPRateLimiter{
		visitors: make(map[string]*visitor),
		r:        rate.Limit(rps),
		b:        burst,
		idle:     3 * time.Minute,
	}
	go l.cleanupLoop(ctx, time.Minute)
	return l
}

func (l *IPRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.r, l.b)}
		l.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Allow consumes one token for ip.
func (l *IPRateLimiter) Allow(ip string) bool {
	return l.limiter(ip).Allow()
}

func (l *IPRateLimiter) cleanupLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup(time.Now())
		}
	}
}

func (l *IPRateLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.idle {
			delete(l.visitors, ip)
		}
	}
}

func (l *IPRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// RateLimit answers 429 once a client IP exhausts its bucket.
func RateLimit(l *IPRateLimiter, r *response.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			r.Error(c, apperror.New(http.StatusTooManyRequests, apperror.StatusFail, "Too many requests, please try again later"))
			return
		}
		c.Next()
	}
}
