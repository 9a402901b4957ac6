package ratelimit

import (
    "sync"
    "time"
)

type bucket struct {
    tokens     float64
    capacity   float64
    refillRate float64 // tokens per second
    last       time.Time
}

// Limiter is a token bucket per client key.
type Limiter struct {
    mu  sync.Mutex
    m   map[string]*bucket
    now func() time.Time
}

func New() *Limiter { return &Limiter{m: make(map[string]*bucket), now: time.Now} }

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
    l.mu.Lock()
    defer l.mu.Unlock()

    now := l.now()
    b, ok := l.m[key]
    if !ok {
        b = &bucket{tokens: capacity, capacity: capacity, refillRate: refillPerSec, last: now}
        l.m[key] = b
    }
    // refill
    elapsed := now.Sub(b.last).Seconds()
    if elapsed > 0 {
        b.tokens += elapsed * b.refillRate
        if b.tokens > b.capacity { b.tokens = b.capacity }
        b.last = now
    }
    if b.tokens >= 1 {
        b.tokens -= 1
        return true
    }
    return false
}

// Prune drops buckets untouched for longer than idle and returns how many were removed.
// A dropped bucket starts full on the client's next request, which is what a
// refill over that idle period would have produced anyway.
func (l *Limiter) Prune(idle time.Duration) int {
    l.mu.Lock()
    defer l.mu.Unlock()

    cutoff := l.now().Add(-idle)
    removed := 0
    for key, b := range l.m {
        if b.last.Before(cutoff) {
            delete(l.m, key)
            removed++
        }
    }
    return removed
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
    l.mu.Lock()
    defer l.mu.Unlock()
    return len(l.m)
}
