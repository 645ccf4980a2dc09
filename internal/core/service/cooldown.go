package service

import (
	"sync"
	"time"
)

// CooldownLedger records the time of each identity's most recent accepted
// write and decides whether a new write may proceed.
//
// All methods are safe for concurrent use. CheckAndRecord is atomic per
// call; callers that need to validate more input between the check and the
// record must use Check and Record under their own lock.
type CooldownLedger struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     map[string]time.Time
}

// NewCooldownLedger creates a ledger with a fixed cooldown shared by all
// identities. A zero cooldown admits every write.
func NewCooldownLedger(cooldown time.Duration) *CooldownLedger {
	if cooldown < 0 {
		cooldown = 0
	}
	return &CooldownLedger{
		cooldown: cooldown,
		last:     make(map[string]time.Time),
	}
}

// Cooldown returns the configured cooldown.
func (l *CooldownLedger) Cooldown() time.Duration {
	return l.cooldown
}

// Check reports whether identity may write at now. When it may not, the
// remaining wait is returned. Check never modifies the ledger.
func (l *CooldownLedger) Check(identity string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.checkLocked(identity, now)
}

// Record marks now as identity's latest accepted write.
func (l *CooldownLedger) Record(identity string, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last[identity] = now
}

// CheckAndRecord admits and records a write in one step. A rejected
// attempt leaves the stored timestamp untouched.
func (l *CooldownLedger) CheckAndRecord(identity string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ok, remaining := l.checkLocked(identity, now)
	if ok {
		l.last[identity] = now
	}
	return ok, remaining
}

func (l *CooldownLedger) checkLocked(identity string, now time.Time) (bool, time.Duration) {
	last, seen := l.last[identity]
	if !seen {
		return true, 0
	}
	elapsed := now.Sub(last)
	if elapsed >= l.cooldown {
		return true, 0
	}
	return false, l.cooldown - elapsed
}

// Prune drops identities whose cooldown has fully elapsed at now and
// returns how many were removed. A pruned identity is indistinguishable
// from one that never wrote.
func (l *CooldownLedger) Prune(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for identity, last := range l.last {
		if now.Sub(last) >= l.cooldown {
			delete(l.last, identity)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked identities.
func (l *CooldownLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.last)
}
