package api

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RequestClass groups API requests by what they cost the server. Each class
// is limited separately so a polling frontend cannot starve a player's clicks.
type RequestClass uint8

const (
	// ClassRead covers state, levels and stats polling
	ClassRead RequestClass = iota
	// ClassAction covers clicks and the other player inputs
	ClassAction
	// ClassFrame is a PNG render; it draws from the read bucket at FrameCost
	ClassFrame
	numClasses
)

func (c RequestClass) String() string {
	switch c {
	case ClassRead:
		return "read"
	case ClassAction:
		return "action"
	case ClassFrame:
		return "frame"
	default:
		return "unknown"
	}
}

// ClassifyRequest maps a request onto its class.
func ClassifyRequest(r *http.Request) RequestClass {
	switch {
	case r.Method == http.MethodPost:
		return ClassAction
	case strings.HasSuffix(r.URL.Path, "/frame.png"):
		return ClassFrame
	default:
		return ClassRead
	}
}

// RateLimitConfig configures the per-IP limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64 // read refill per IP
	Burst             int     // read bucket size per IP
	ActionsPerSecond  float64 // action refill per IP; 0 uses RequestsPerSecond
	ActionBurst       int     // action bucket size per IP; 0 uses Burst
	FrameCost         int     // read tokens per rendered frame; 0 uses DefaultFrameCost
	CleanupInterval   time.Duration
}

// DefaultFrameCost is what one /api/frame.png takes from the read bucket.
const DefaultFrameCost = 5

// DefaultRateLimitConfig lets a frontend poll state at 20/s and a player
// click about as fast as a human can.
var DefaultRateLimitConfig = RateLimitConfig{
	RequestsPerSecond: 20,
	Burst:             40,
	ActionsPerSecond:  10,
	ActionBurst:       10,
	FrameCost:         DefaultFrameCost,
	CleanupInterval:   5 * time.Minute,
}

type ipLimiterEntry struct {
	read     *rate.Limiter
	action   *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// IPRateLimiter limits API requests per client IP and request class.
type IPRateLimiter struct {
	limiters sync.Map // map[string]*ipLimiterEntry
	config   RateLimitConfig
	stopChan chan struct{}
	stopOnce sync.Once

	allowed  atomic.Uint64
	rejected [numClasses]atomic.Uint64
}

// NewIPRateLimiter creates a limiter and starts its cleanup goroutine.
func NewIPRateLimiter(cfg RateLimitConfig) *IPRateLimiter {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultRateLimitConfig.CleanupInterval
	}
	if cfg.ActionsPerSecond <= 0 {
		cfg.ActionsPerSecond = cfg.RequestsPerSecond
	}
	if cfg.ActionBurst <= 0 {
		cfg.ActionBurst = cfg.Burst
	}
	if cfg.FrameCost <= 0 {
		cfg.FrameCost = DefaultFrameCost
	}
	// A frame must fit in the bucket or it could never be served
	if cfg.FrameCost > cfg.Burst {
		cfg.FrameCost = cfg.Burst
	}

	rl := &IPRateLimiter{
		config:   cfg,
		stopChan: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop stops the cleanup goroutine
func (rl *IPRateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopChan)
	})
}

func (rl *IPRateLimiter) entry(ip string) *ipLimiterEntry {
	now := time.Now().UnixNano()

	if v, ok := rl.limiters.Load(ip); ok {
		e := v.(*ipLimiterEntry)
		e.lastSeen.Store(now)
		return e
	}

	e := &ipLimiterEntry{
		read:   rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst),
		action: rate.NewLimiter(rate.Limit(rl.config.ActionsPerSecond), rl.config.ActionBurst),
	}
	e.lastSeen.Store(now)

	actual, _ := rl.limiters.LoadOrStore(ip, e)
	return actual.(*ipLimiterEntry)
}

func (rl *IPRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopChan:
			return
		case <-ticker.C:
			rl.cleanup(time.Now().Add(-rl.config.CleanupInterval * 2))
		}
	}
}

// cleanup removes limiters not used since cutoff
func (rl *IPRateLimiter) cleanup(cutoff time.Time) {
	rl.limiters.Range(func(key, value interface{}) bool {
		if value.(*ipLimiterEntry).lastSeen.Load() < cutoff.UnixNano() {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// Allow takes a request of the given class from ip's budget. When the request
// is refused, retryAfter is how long until it would fit, at least one second.
func (rl *IPRateLimiter) Allow(ip string, class RequestClass) (ok bool, retryAfter time.Duration) {
	e := rl.entry(ip)

	limiter, cost := e.read, 1
	switch class {
	case ClassAction:
		limiter = e.action
	case ClassFrame:
		cost = rl.config.FrameCost
	}

	now := time.Now()
	if limiter.AllowN(now, cost) {
		rl.allowed.Add(1)
		return true, 0
	}
	if class < numClasses {
		rl.rejected[class].Add(1)
	}
	return false, retryDelay(limiter, now, cost)
}

func retryDelay(l *rate.Limiter, now time.Time, cost int) time.Duration {
	deficit := float64(cost) - l.TokensAt(now)
	if l.Limit() <= 0 || deficit <= 0 {
		return time.Second
	}
	secs := math.Ceil(deficit / float64(l.Limit()))
	return time.Duration(math.Max(secs, 1)) * time.Second
}

// Middleware rejects requests over the caller's budget with 429.
func (rl *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		class := ClassifyRequest(r)
		if ok, retry := rl.Allow(GetClientIP(r), class); !ok {
			RecordConnectionRejected("rate_limit_" + class.String())
			w.Header().Set("Retry-After", strconv.Itoa(int(retry/time.Second)))
			writeError(w, fmt.Sprintf("Too many %s requests", class), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimitStats holds limiter counters
type RateLimitStats struct {
	Allowed         uint64 `json:"allowed"`
	Rejected        uint64 `json:"rejected"`
	RejectedReads   uint64 `json:"rejectedReads"`
	RejectedActions uint64 `json:"rejectedActions"`
	RejectedFrames  uint64 `json:"rejectedFrames"`
}

// Stats returns rate limiter statistics
func (rl *IPRateLimiter) Stats() RateLimitStats {
	s := RateLimitStats{
		Allowed:         rl.allowed.Load(),
		RejectedReads:   rl.rejected[ClassRead].Load(),
		RejectedActions: rl.rejected[ClassAction].Load(),
		RejectedFrames:  rl.rejected[ClassFrame].Load(),
	}
	s.Rejected = s.RejectedReads + s.RejectedActions + s.RejectedFrames
	return s
}

// GetClientIP extracts the client IP from an HTTP request.
// X-Forwarded-For is trusted, so run behind a proxy that sets it.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// WebSocketRateLimiter limits concurrent WebSocket connections per IP
type WebSocketRateLimiter struct {
	connections sync.Map // map[string]*atomic.Int32
	maxPerIP    int

	rejected atomic.Uint64
}

// NewWebSocketRateLimiter creates a WebSocket connection limiter
func NewWebSocketRateLimiter(maxPerIP int) *WebSocketRateLimiter {
	return &WebSocketRateLimiter{maxPerIP: maxPerIP}
}

// Allow reserves a connection slot for ip
func (wrl *WebSocketRateLimiter) Allow(ip string) bool {
	actual, _ := wrl.connections.LoadOrStore(ip, new(atomic.Int32))
	counter := actual.(*atomic.Int32)

	for {
		current := counter.Load()
		if int(current) >= wrl.maxPerIP {
			wrl.rejected.Add(1)
			return false
		}
		if counter.CompareAndSwap(current, current+1) {
			return true
		}
	}
}

// Release frees a slot reserved by Allow
func (wrl *WebSocketRateLimiter) Release(ip string) {
	if v, ok := wrl.connections.Load(ip); ok {
		v.(*atomic.Int32).Add(-1)
	}
}

// ConnectionCount returns the open connections for an IP
func (wrl *WebSocketRateLimiter) ConnectionCount(ip string) int {
	if v, ok := wrl.connections.Load(ip); ok {
		return int(v.(*atomic.Int32).Load())
	}
	return 0
}

// Rejected returns how many connections were refused
func (wrl *WebSocketRateLimiter) Rejected() uint64 {
	return wrl.rejected.Load()
}

// DefaultCORSOrigins is used when no origins are configured.
var DefaultCORSOrigins = []string{
	"http://localhost:*",
	"http://127.0.0.1:*",
}

// IsAllowedOrigin checks a WebSocket Origin header. Clients that send no
// Origin (native frontends, tools) are allowed; browsers must come from a
// local page or one of extra.
func IsAllowedOrigin(origin string, extra []string) bool {
	if origin == "" {
		return true
	}

	if strings.HasPrefix(origin, "http://localhost") || strings.HasPrefix(origin, "http://127.0.0.1") {
		return true
	}

	for _, allowed := range extra {
		if origin == allowed {
			return true
		}
		// "https://*.example.com" matches any subdomain
		if suffix, ok := strings.CutPrefix(allowed, "https://*"); ok && strings.HasPrefix(origin, "https://") && strings.HasSuffix(origin, suffix) {
			return true
		}
	}

	return false
}
