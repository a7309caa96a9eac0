package discordcommands

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// cleanupThreshold is the minimum map size before a cleanup pass runs.
	cleanupThreshold = 500
	// maxIdleAge is the duration after which an idle user entry is eligible for cleanup.
	maxIdleAge = 10 * time.Minute
)

type userEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter is a per-user command limiter that prunes stale entries inline.
type UserRateLimiter struct {
	users map[string]*userEntry
	mu    sync.Mutex
	r     rate.Limit
	b     int
	now   func() time.Time
}

// NewUserRateLimiter creates a new UserRateLimiter.
func NewUserRateLimiter(r rate.Limit, b int) *UserRateLimiter {
	return &UserRateLimiter{
		users: make(map[string]*userEntry),
		r:     r,
		b:     b,
		now:   time.Now,
	}
}

// Allow reports whether userID may run another command now.
func (l *UserRateLimiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.users) > cleanupThreshold {
		cutoff := now.Add(-maxIdleAge)
		for k, e := range l.users {
			if e.lastSeen.Before(cutoff) {
				delete(l.users, k)
			}
		}
	}

	e, exists := l.users[userID]
	if !exists {
		e = &userEntry{limiter: rate.NewLimiter(l.r, l.b)}
		l.users[userID] = e
	}
	e.lastSeen = now

	return e.limiter.AllowN(now, 1)
}
