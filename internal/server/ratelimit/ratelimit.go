// Package ratelimit provides per-client request throttling using token buckets.
package ratelimit

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// Rule limits one endpoint: Limit requests per Window with Burst capacity.
type Rule struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled       bool
	DefaultLimit  int
	DefaultWindow time.Duration
	Rules         []Rule
}

// LoadConfig loads rate limiting configuration from environment variables.
// RATE_LIMIT_ENABLED defaults to true; RATE_LIMIT_DEFAULT_LIMIT defaults to
// 300 requests per minute.
func LoadConfig() *Config {
	enabled := true
	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			enabled = parsed
		}
	}

	defaultLimit := 300
	if v := os.Getenv("RATE_LIMIT_DEFAULT_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			defaultLimit = parsed
		}
	}

	return &Config{
		Enabled:       enabled,
		DefaultLimit:  defaultLimit,
		DefaultWindow: time.Minute,
		Rules:         DefaultRules(),
	}
}

// DefaultRules throttles the expensive and abuse-prone endpoints. Reads fall
// under the default limit; /health is never throttled.
func DefaultRules() []Rule {
	return []Rule{
		// Match generation runs the AI pipeline.
		{Path: "/attendees/", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		// Registration is the public unauthenticated surface.
		{Path: "/attendees", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},
		// Login brute-force protection.
		{Path: "/admin/login", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
	}
}

// bucket is a token bucket refilling at a steady rate.
type bucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
}

func newBucket(capacity int, refillRate float64) *bucket {
	return &bucket{
		capacity:   float64(capacity),
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

func (b *bucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens = min(b.capacity, b.tokens+now.Sub(b.lastRefill).Seconds()*b.refillRate)
	b.lastRefill = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true
	}
	return false
}

// Limiter throttles clients per endpoint.
type Limiter struct {
	mu      sync.Mutex
	config  *Config
	buckets map[string]*bucket
	seen    map[string]time.Time

	stop chan struct{}
	once sync.Once
}

// NewLimiter creates a rate limiter; idle buckets are dropped hourly.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{Enabled: true, DefaultLimit: 300, DefaultWindow: time.Minute}
	}

	l := &Limiter{
		config:  config,
		buckets: make(map[string]*bucket),
		seen:    make(map[string]time.Time),
		stop:    make(chan struct{}),
	}
	if config.Enabled {
		go l.cleanupLoop()
	}
	return l
}

// Allow reports whether a request from clientID to the given endpoint may
// proceed, and how long to wait when it may not.
func (l *Limiter) Allow(clientID, path, method string) (bool, time.Duration) {
	if !l.config.Enabled {
		return true, 0
	}
	if path == "/health" {
		return true, 0
	}

	rule := l.match(path, method)
	limit, window, burst := l.config.DefaultLimit, l.config.DefaultWindow, 0
	if rule != nil {
		limit, window, burst = rule.Limit, rule.Window, rule.Burst
	}
	if limit <= 0 {
		return true, 0
	}
	if burst <= 0 {
		burst = limit
	}

	key := clientID + ":" + method + ":" + path
	b := l.getBucket(key, burst, float64(limit)/window.Seconds())

	if b.allow() {
		return true, 0
	}

	b.mu.Lock()
	wait := time.Duration((1.0 - b.tokens) / b.refillRate * float64(time.Second))
	b.mu.Unlock()
	if wait < 0 {
		wait = 0
	}
	return false, wait
}

// match returns the most specific rule covering the request, preferring the
// longest matching path prefix.
func (l *Limiter) match(path, method string) *Rule {
	var best *Rule
	for i := range l.config.Rules {
		r := &l.config.Rules[i]
		if r.Method != method {
			continue
		}
		if path != r.Path && !hasPrefix(path, r.Path) {
			continue
		}
		if best == nil || len(r.Path) > len(best.Path) {
			best = r
		}
	}
	return best
}

func hasPrefix(path, prefix string) bool {
	return len(prefix) > 0 && prefix[len(prefix)-1] == '/' &&
		len(path) >= len(prefix) && path[:len(prefix)] == prefix
}

func (l *Limiter) getBucket(key string, capacity int, refillRate float64) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(capacity, refillRate)
		l.buckets[key] = b
	}
	l.seen[key] = time.Now()
	return b
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.evictIdle(time.Hour)
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) evictIdle(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, last := range l.seen {
		if last.Before(cutoff) {
			delete(l.buckets, key)
			delete(l.seen, key)
		}
	}
}

// Stop terminates the cleanup goroutine.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}
