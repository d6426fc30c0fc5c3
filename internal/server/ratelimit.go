package server

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/ZanzyTHEbar/procurement-lens/internal/errors"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPLimiter keeps one token bucket per client IP
type IPLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	interval time.Duration
	burst    int
	now      func() time.Time
}

// NewIPLimiter allows perMinute requests per IP with an initial burst of
// half that, never less than 5. perMinute <= 0 disables limiting.
func NewIPLimiter(perMinute int) *IPLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &IPLimiter{
		visitors: make(map[string]*visitor),
		interval: time.Minute / time.Duration(perMinute),
		burst:    max(perMinute/2, 5),
		now:      time.Now,
	}
}

// Allow reports whether ip may make a request now
func (l *IPLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(l.interval), l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Prune forgets IPs not seen for idle and returns how many were dropped
func (l *IPLimiter) Prune(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-idle)
	dropped := 0
	for ip, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
			dropped++
		}
	}
	return dropped
}

func (s *Server) rateLimit(l *IPLimiter) gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(math.Ceil(l.interval.Seconds())))
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			s.metrics.IncrementRateLimited()
			c.Header("Retry-After", retryAfter)
			s.fail(c, errors.NewRateLimitError(retryAfter))
			return
		}
		c.Next()
	}
}
