// Package ratelimit provides per-key token bucket rate limiting for MCP tools.
package ratelimit

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Limiter implements a per-key token bucket rate limiter. Each key gets its
// own bucket with the configured rate and burst. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64 // tokens per second
	burst   float64 // max tokens, also the initial count
	now     func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewLimiter creates a rate limiter with the given rate (tokens/sec) and burst size.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   float64(burst),
		now:     time.Now,
	}
}

// Allow reports whether one request for key may proceed, consuming a token if so.
func (l *Limiter) Allow(key string) bool {
	return l.AllowN(key, 1)
}

// AllowN consumes n tokens for key if available. Requests costing more than
// the burst are clamped to the burst so they are slow rather than impossible.
func (l *Limiter) AllowN(key string, n int) bool {
	if n <= 0 {
		return true
	}
	cost := math.Min(float64(n), l.burst)

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.refill(key)
	if b.tokens < cost {
		return false
	}
	b.tokens -= cost
	return true
}

// Tokens returns the tokens currently available for key.
func (l *Limiter) Tokens(key string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refill(key).tokens
}

// refill tops up the bucket for key. Caller holds mu.
func (l *Limiter) refill(key string) *bucket {
	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, last: now}
		l.buckets[key] = b
		return b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(l.burst, b.tokens+l.rate*elapsed)
		b.last = now
	}
	return b
}

// ToolLimiters maps tool names to their rate limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters creates the default per-tool limits for the brain MCP server.
// Cheap reads are generous; ticking is charged by simulated time.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		"brain_inject": NewLimiter(20.0, 50),
		"brain_reward": NewLimiter(10.0, 20),
		// Charged TickCost(ticks) per call: 50 units/minute, burst 20.
		"brain_tick":   NewLimiter(50.0/60.0, 20),
		"brain_status": NewLimiter(2.0, 10),
		"brain_spoken": NewLimiter(5.0, 20),
		"brain_graph":  NewLimiter(30.0/60.0, 5),
		"brain_export": NewLimiter(10.0/60.0, 3),
	}
}

// TickCostUnit is the number of simulated ticks one brain_tick token buys.
const TickCostUnit = 10_000

// TickCost returns the token cost of advancing ticks.
func TickCost(ticks int) int {
	if ticks <= 0 {
		return 0
	}
	return (ticks + TickCostUnit - 1) / TickCostUnit
}

// CheckLimit checks the rate limit for one call of toolName.
// Tools without a configured limiter are always allowed.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	return CheckLimitN(limiters, toolName, 1)
}

// CheckLimitN checks the rate limit for a call costing n tokens.
func CheckLimitN(limiters ToolLimiters, toolName string, n int) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}
	if !limiter.AllowN(toolName, n) {
		return fmt.Errorf("rate limit exceeded for %s, please try again shortly", toolName)
	}
	return nil
}
