package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRateLimiterEvictsIdleUsers(t *testing.T) {
	l := NewUserRateLimiter(1, 5)
	clock := time.Now()
	l.now = func() time.Time { return clock }
	l.lastSweep = clock

	for userID := int64(1); userID <= 100; userID++ {
		require.True(t, l.limiter(userID).Allow())
	}
	assert.Len(t, l.limiters, 100)

	clock = clock.Add(l.idleTTL / 2)
	l.limiter(1).Allow()

	clock = clock.Add(l.idleTTL / 2)
	l.limiter(2).Allow()
	// Only user 1, seen half a TTL ago, and user 2 survive the sweep.
	assert.Len(t, l.limiters, 2)
	assert.Contains(t, l.limiters, int64(1))
	assert.Contains(t, l.limiters, int64(2))
}

func TestUserRateLimiterIdleTTLCoversRefill(t *testing.T) {
	assert.Equal(t, minIdleTTL, NewUserRateLimiter(5, 10).idleTTL)
	// 1000 tokens at 0.5/s take 2000s to refill.
	assert.Equal(t, 2000*time.Second, NewUserRateLimiter(0.5, 1000).idleTTL)
}
