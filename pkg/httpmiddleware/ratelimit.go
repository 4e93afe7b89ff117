package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/jx"
)

// RateLimitConfig configures the per-client request limit.
type RateLimitConfig struct {
	// Max requests per Window. Zero or negative disables limiting.
	Max    int
	Window time.Duration
	// ClientKey identifies the client. Defaults to ClientIP.
	ClientKey func(*http.Request) string
	// Now is the clock, overridable in tests.
	Now func() time.Time
}

// counter approximates a sliding window by weighting the previous fixed
// window by its remaining overlap.
type counter struct {
	start time.Time
	curr  float64
	prev  float64
}

type limiter struct {
	max    float64
	window time.Duration

	mu      sync.Mutex
	clients map[string]*counter
}

type decision struct {
	allowed   bool
	remaining int
	reset     time.Time
}

func (l *limiter) take(key string, now time.Time) decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[key]
	if !ok {
		c = &counter{start: now.Truncate(l.window)}
		l.clients[key] = c
	}
	switch elapsed := now.Sub(c.start); {
	case elapsed >= 2*l.window:
		c.start, c.prev, c.curr = now.Truncate(l.window), 0, 0
	case elapsed >= l.window:
		c.start, c.prev, c.curr = c.start.Add(l.window), c.curr, 0
	}

	weight := 1 - float64(now.Sub(c.start))/float64(l.window)
	used := c.prev*max(weight, 0) + c.curr
	d := decision{reset: c.start.Add(l.window)}
	if used >= l.max {
		return d
	}
	c.curr++
	d.allowed = true
	d.remaining = max(int(l.max-used-1), 0)
	return d
}

// evict drops clients idle for two windows.
func (l *limiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, c := range l.clients {
		if now.Sub(c.start) >= 2*l.window {
			delete(l.clients, key)
		}
	}
}

// RateLimit limits requests per client and answers 429 with a JSON body
// once the limit is reached. X-RateLimit-* headers are set on every
// response. Idle clients are evicted until ctx is done.
func RateLimit(ctx context.Context, cfg RateLimitConfig) Middleware {
	if cfg.Max <= 0 || cfg.Window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.ClientKey == nil {
		cfg.ClientKey = ClientIP
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	l := &limiter{
		max:     float64(cfg.Max),
		window:  cfg.Window,
		clients: map[string]*counter{},
	}
	go func() {
		ticker := time.NewTicker(2 * cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				l.evict(now)
			}
		}
	}()

	limit := strconv.Itoa(cfg.Max)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := cfg.Now()
			d := l.take(cfg.ClientKey(r), now)

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(d.reset.Unix(), 10))
			if d.allowed {
				next.ServeHTTP(w, r)
				return
			}

			wait := max(d.reset.Sub(now), 0)
			h.Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
		})
	}
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	e.ObjStart()
	e.FieldStart("code")
	e.Int(code)
	e.FieldStart("message")
	e.Str(msg)
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then the
// host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
