// FilePath: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"sync"
	"time"

	"github.com/itsatony/misting-hub/internal/models"
)

// DefaultCooldown is the minimum interval between persisted readings for
// one stream.
const DefaultCooldown = 60 * time.Second

// Limiter tracks the last admitted persistence write per stream key. The
// ledger lives for the process lifetime; a restart may permit one early
// write, which is acceptable.
type Limiter struct {
	mu       sync.Mutex
	cooldown time.Duration
	ledger   map[models.StreamKey]time.Time
}

// New creates a Limiter with the given cooldown. A non-positive cooldown
// falls back to the default.
func New(cooldown time.Duration) *Limiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Limiter{
		cooldown: cooldown,
		ledger:   make(map[models.StreamKey]time.Time),
	}
}

// Admit reports whether a write for key may happen at now, recording the
// admission on success only. Keys are independent: admission for one stream
// never affects another.
func (l *Limiter) Admit(key models.StreamKey, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	last, seen := l.ledger[key]
	if seen && now.Sub(last) < l.cooldown {
		return false
	}
	l.ledger[key] = now
	return true
}

// LastAdmitted returns the last admission time for key, if any.
func (l *Limiter) LastAdmitted(key models.StreamKey) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	last, ok := l.ledger[key]
	return last, ok
}
