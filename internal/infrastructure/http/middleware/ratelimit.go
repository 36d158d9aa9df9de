package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pantrysense/v2/internal/infrastructure/http/response"
	"github.com/pantrysense/v2/pkg/errors"
	"golang.org/x/time/rate"
)

// RateLimitConfig sets the per-client token bucket
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	Burst             int
	IdleTTL           time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client address
type RateLimiter struct {
	cfg      RateLimitConfig
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

// NewRateLimiter creates a limiter from cfg
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 120
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 20
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{cfg: cfg, visitors: make(map[string]*visitor), now: time.Now}
}

// Handler rejects requests over the budget with 429
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.cfg.Enabled {
			next.ServeHTTP(w, r)
			return
		}
		if !l.allow(clientKey(r)) {
			retry := int(time.Minute.Seconds()) / l.cfg.RequestsPerMinute
			if retry < 1 {
				retry = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			response.Error(w, r, nil, errors.NewAppError(errors.CodeTooManyRequests, "Rate limit exceeded", ""))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(float64(l.cfg.RequestsPerMinute)/60), l.cfg.Burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	for k, other := range l.visitors {
		if now.Sub(other.lastSeen) > l.cfg.IdleTTL {
			delete(l.visitors, k)
		}
	}
	return v.limiter.AllowN(now, 1)
}

// clientKey is the remote host; RealIP has already applied forwarded headers
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
