package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterSweepEvery = 5 * time.Minute
	limiterIdleAfter  = 30 * time.Minute
)

type ipLimiter struct {
	limiter *rate.Limiter
	mu      sync.Mutex
	last    time.Time
}

func (l *ipLimiter) touch(now time.Time) {
	l.mu.Lock()
	l.last = now
	l.mu.Unlock()
}

func (l *ipLimiter) idleSince(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return now.Sub(l.last)
}

// loginLimiter throttles login attempts per client IP. A zero rate disables
// it.
type loginLimiter struct {
	rate      rate.Limit
	burst     int
	limiters  sync.Map // map[string]*ipLimiter
	sweepOnce sync.Once
}

func newLoginLimiter(r rate.Limit, burst int) *loginLimiter {
	return &loginLimiter{rate: r, burst: burst}
}

func (l *loginLimiter) get(ip string) *ipLimiter {
	if v, ok := l.limiters.Load(ip); ok {
		return v.(*ipLimiter)
	}
	v, _ := l.limiters.LoadOrStore(ip, &ipLimiter{
		limiter: rate.NewLimiter(l.rate, l.burst),
		last:    time.Now(),
	})
	l.sweepOnce.Do(func() {
		go l.sweepLoop()
	})
	return v.(*ipLimiter)
}

func (l *loginLimiter) sweepLoop() {
	t := time.NewTicker(limiterSweepEvery)
	defer t.Stop()
	for now := range t.C {
		l.sweep(now)
	}
}

func (l *loginLimiter) sweep(now time.Time) {
	l.limiters.Range(func(key, val any) bool {
		if val.(*ipLimiter).idleSince(now) > limiterIdleAfter {
			l.limiters.Delete(key)
		}
		return true
	})
}

func (l *loginLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.rate <= 0 {
			c.Next()
			return
		}

		lim := l.get(c.ClientIP())
		lim.touch(time.Now())
		if !lim.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts, try again later"})
			return
		}
		c.Next()
	}
}
