package discordcommands

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestUserRateLimiter_Allow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewUserRateLimiter(rate.Every(10*time.Second), 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("alice"))
	assert.True(t, l.Allow("alice"))
	assert.False(t, l.Allow("alice"), "burst exhausted")
	assert.True(t, l.Allow("bob"), "users have separate buckets")

	now = now.Add(10 * time.Second)
	assert.True(t, l.Allow("alice"), "one token refilled")
	assert.False(t, l.Allow("alice"))
}

func TestUserRateLimiter_PrunesIdleEntries(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewUserRateLimiter(rate.Inf, 1)
	l.now = func() time.Time { return now }

	for i := 0; i <= cleanupThreshold; i++ {
		l.Allow(fmt.Sprintf("user-%d", i))
	}
	assert.Len(t, l.users, cleanupThreshold+1)

	now = now.Add(maxIdleAge + time.Minute)
	l.Allow("fresh")
	assert.Len(t, l.users, 1)
}
