package middleware

import (
	"net/http"
	"sync"
	"time"

	"brokerage/src/utils"

	"golang.org/x/time/rate"
)

const minIdleTTL = 10 * time.Minute

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter keeps one token bucket per authenticated user. Buckets idle
// for longer than idleTTL are full again, so they are dropped and recreated on
// the next request.
type UserRateLimiter struct {
	mu        sync.Mutex
	limiters  map[int64]*userLimiter
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewUserRateLimiter(requestsPerSecond float64, burst int) *UserRateLimiter {
	idleTTL := minIdleTTL
	if requestsPerSecond > 0 {
		if refill := time.Duration(float64(burst) / requestsPerSecond * float64(time.Second)); refill > idleTTL {
			idleTTL = refill
		}
	}
	return &UserRateLimiter{
		limiters:  make(map[int64]*userLimiter),
		limit:     rate.Limit(requestsPerSecond),
		burst:     burst,
		idleTTL:   idleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *UserRateLimiter) limiter(userID int64) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}

	entry, ok := l.limiters[userID]
	if !ok {
		entry = &userLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[userID] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// sweep must be called with mu held.
func (l *UserRateLimiter) sweep(now time.Time) {
	for userID, entry := range l.limiters {
		if now.Sub(entry.lastSeen) >= l.idleTTL {
			delete(l.limiters, userID)
		}
	}
	l.lastSweep = now
}

// Limit must run after Authenticate. Requests over the user's budget get 429.
func (l *UserRateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current, ok := CurrentUserFromContext(r.Context())
		if !ok {
			utils.WriteError(w, utils.Unauthorized("authentication required"))
			return
		}
		if !l.limiter(current.User.ID).Allow() {
			utils.LoggerFromContext(r.Context()).Warn("trade rate limit exceeded")
			utils.WriteError(w, utils.TooManyRequests("too many trade requests, slow down"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
