package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	maxLoginAttempts = 5
	attemptWindow    = time.Minute
)

type attempt struct {
	count int
	first time.Time
}

// LoginThrottle counts login attempts per client IP and answers 429 once
// an IP has used up its attempts for the current window.
type LoginThrottle struct {
	mu       sync.Mutex
	attempts map[string]*attempt
	log      *zap.Logger
	now      func() time.Time
}

func NewLoginThrottle(log *zap.Logger) *LoginThrottle {
	return &LoginThrottle{
		attempts: make(map[string]*attempt),
		log:      log.Named("throttle"),
		now:      time.Now,
	}
}

// allow records an attempt from ip and reports whether it may proceed.
func (t *LoginThrottle) allow(ip string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for k, a := range t.attempts {
		if now.Sub(a.first) > attemptWindow {
			delete(t.attempts, k)
		}
	}
	a, ok := t.attempts[ip]
	if !ok {
		a = &attempt{first: now}
		t.attempts[ip] = a
	}
	a.count++
	return a.count <= maxLoginAttempts
}

func (t *LoginThrottle) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !t.allow(ip) {
			t.log.Warn("login throttled", zap.String("client_ip", ip), zap.String("request_id", RequestID(r.Context())))
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"too many login attempts"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
