package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/eventdesk/server/internal/api/problem"
	"github.com/eventdesk/server/internal/config"
)

var errRateLimited = errors.New("rate limit exceeded")

const limiterTTL = 15 * time.Minute

// RateLimit throttles requests per client IP to cfg.PublicPerMinute. A
// non-positive limit disables it. Stale limiters are dropped until ctx is
// done.
func RateLimit(ctx context.Context, cfg config.RateLimitConfig, env string) func(http.Handler) http.Handler {
	store := newLimiterStore(cfg.PublicPerMinute)
	if store != nil {
		go store.cleanupLoop(ctx)
	}
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := store.limiter(clientKey(r, cfg.TrustedProxyCIDRs))
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "60")
				problem.Write(w, r, http.StatusTooManyRequests, problem.TypeRateLimited, "Too many requests", errRateLimited, env)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type limiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	perMinute int
	now       func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(perMinute int) *limiterStore {
	if perMinute <= 0 {
		return nil
	}
	return &limiterStore{
		limiters:  make(map[string]*limiterEntry),
		perMinute: perMinute,
		now:       time.Now,
	}
}

func (s *limiterStore) limiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.limiters[key]; ok {
		entry.lastSeen = s.now()
		return entry.limiter
	}

	interval := time.Minute / time.Duration(s.perMinute)
	limiter := rate.NewLimiter(rate.Every(interval), s.perMinute)
	s.limiters[key] = &limiterEntry{limiter: limiter, lastSeen: s.now()}
	return limiter
}

func (s *limiterStore) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-ctx.Done():
			return
		}
	}
}

func (s *limiterStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.limiters {
		if now.Sub(entry.lastSeen) > limiterTTL {
			delete(s.limiters, key)
		}
	}
}

// clientKey identifies the client. Forwarding headers are honoured only when
// the connection comes from a trusted proxy.
func clientKey(r *http.Request, trustedProxyCIDRs []string) string {
	remoteIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remoteIP = host
	}

	if isTrustedProxy(remoteIP, trustedProxyCIDRs) {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			return strings.TrimSpace(first)
		}
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			return strings.TrimSpace(realIP)
		}
	}
	return remoteIP
}

func isTrustedProxy(ip string, trustedCIDRs []string) bool {
	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}
	for _, cidrStr := range trustedCIDRs {
		_, cidr, err := net.ParseCIDR(cidrStr)
		if err != nil {
			continue
		}
		if cidr.Contains(parsedIP) {
			return true
		}
	}
	return false
}
