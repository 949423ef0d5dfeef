package auth

import (
	"context"
	"strconv"
	"sync"
	"time"

	"tasklist/internal/cache"
	apperrors "tasklist/internal/errors"
)

const (
	// LoginAttemptLimit is the number of failed logins tolerated per email
	// within one window.
	LoginAttemptLimit = 5
	// LoginAttemptWindow is the rolling window for counting failures.
	LoginAttemptWindow = 15 * time.Minute

	loginAttemptKeyPrefix = "login_attempts:"
)

// LoginThrottle limits repeated failed login attempts per email. It is a
// best-effort abuse deterrent, not a security boundary: the memory variant
// loses state on restart and the redis variant fails open when redis is
// unreachable.
type LoginThrottle interface {
	Check(ctx context.Context, email string) error
	RecordFailure(ctx context.Context, email string) error
	RecordSuccess(ctx context.Context, email string) error
}

type loginAttempt struct {
	count     int
	windowEnd time.Time
}

// MemoryThrottle is a process-local throttle guarded by a single mutex.
type MemoryThrottle struct {
	mu       sync.Mutex
	attempts map[string]*loginAttempt
	limit    int
	window   time.Duration
	now      func() time.Time
}

// NewMemoryThrottle creates an in-memory login throttle.
func NewMemoryThrottle() *MemoryThrottle {
	return &MemoryThrottle{
		attempts: make(map[string]*loginAttempt),
		limit:    LoginAttemptLimit,
		window:   LoginAttemptWindow,
		now:      time.Now,
	}
}

// Check reports whether the email is currently rate limited. An elapsed
// window resets the counter and starts a fresh window.
func (t *MemoryThrottle) Check(ctx context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.attempts[email]
	if !ok {
		return nil
	}

	now := t.now()
	if !now.Before(a.windowEnd) {
		a.count = 0
		a.windowEnd = now.Add(t.window)
		return nil
	}

	if a.count >= t.limit {
		return &apperrors.RateLimitError{
			RetryAfterMinutes: retryAfterMinutes(a.windowEnd.Sub(now)),
		}
	}
	return nil
}

// RecordFailure increments the counter, creating the entry if absent.
func (t *MemoryThrottle) RecordFailure(ctx context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.attempts[email]
	if !ok {
		t.attempts[email] = &loginAttempt{count: 1, windowEnd: t.now().Add(t.window)}
		return nil
	}
	a.count++
	return nil
}

// RecordSuccess removes the entry entirely.
func (t *MemoryThrottle) RecordSuccess(ctx context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.attempts, email)
	return nil
}

// RedisThrottle keeps the counters in redis so multiple instances share
// one view of failed attempts. The window is enforced by key expiry.
type RedisThrottle struct {
	cache  *cache.Client
	limit  int
	window time.Duration
}

// NewRedisThrottle creates a redis-backed login throttle.
func NewRedisThrottle(cache *cache.Client) *RedisThrottle {
	return &RedisThrottle{
		cache:  cache,
		limit:  LoginAttemptLimit,
		window: LoginAttemptWindow,
	}
}

func (t *RedisThrottle) Check(ctx context.Context, email string) error {
	data, _ := t.cache.Get(ctx, loginAttemptKeyPrefix+email)
	if data == nil {
		return nil
	}
	count, err := strconv.Atoi(string(data))
	if err != nil || count < t.limit {
		return nil
	}

	ttl, _ := t.cache.TTL(ctx, loginAttemptKeyPrefix+email)
	if ttl <= 0 {
		// key expired between the read and the TTL lookup
		return nil
	}
	return &apperrors.RateLimitError{RetryAfterMinutes: retryAfterMinutes(ttl)}
}

func (t *RedisThrottle) RecordFailure(ctx context.Context, email string) error {
	n, _ := t.cache.Incr(ctx, loginAttemptKeyPrefix+email)
	if n == 1 {
		return t.cache.Expire(ctx, loginAttemptKeyPrefix+email, t.window)
	}
	return nil
}

func (t *RedisThrottle) RecordSuccess(ctx context.Context, email string) error {
	return t.cache.Delete(ctx, loginAttemptKeyPrefix+email)
}

// retryAfterMinutes rounds the remaining wait up to whole minutes.
func retryAfterMinutes(d time.Duration) int {
	minutes := int((d + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
