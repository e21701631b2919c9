// Package ratelimit throttles nonce issuance per wallet address.
package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AddressLimiter keeps one token bucket per wallet address.
// Addresses are compared case-insensitively, so a client cannot dodge its
// bucket by re-casing the hex. A nil *AddressLimiter allows everything.
type AddressLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu        sync.Mutex
	byAddress map[string]*bucket
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New returns nil if rps or burst is not positive, which disables limiting.
func New(rps float64, burst int, idleTTL time.Duration) *AddressLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &AddressLimiter{
		limit:     rate.Limit(rps),
		burst:     burst,
		idleTTL:   idleTTL,
		byAddress: make(map[string]*bucket),
	}
}

func normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Allow takes one token from the address bucket at now. When the bucket is
// empty nothing is consumed and the wait until the next token is returned.
func (l *AddressLimiter) Allow(address string, now time.Time) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	address = normalize(address)
	if address == "" {
		return true, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.byAddress[address]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byAddress[address] = b
	}
	b.lastSeen = now

	r := b.limiter.ReserveN(now, 1)
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return false, wait
	}
	return true, 0
}

// Sweep drops buckets not touched within the idle TTL and returns how many went.
func (l *AddressLimiter) Sweep(now time.Time) int {
	if l == nil {
		return 0
	}
	cutoff := now.Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for address, b := range l.byAddress {
		if b.lastSeen.Before(cutoff) {
			delete(l.byAddress, address)
			n++
		}
	}
	return n
}

// RunJanitor sweeps idle buckets every interval until ctx is done.
func (l *AddressLimiter) RunJanitor(ctx context.Context, interval time.Duration) {
	if l == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Sweep(now)
		}
	}
}

// Size returns the number of tracked addresses
func (l *AddressLimiter) Size() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byAddress)
}
