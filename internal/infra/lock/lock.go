// Package lock serializes writes to one (hospital, department) pair across service instances.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

var (
	// ErrLockTimeout is returned when the lock could not be taken within the wait timeout
	ErrLockTimeout = errors.New("lock: wait timeout exceeded")

	// ErrLockBackend is returned when Redis fails
	ErrLockBackend = errors.New("lock: backend error")
)

// Locker runs fn while holding the lock for one department.
type Locker interface {
	WithDepartmentLock(ctx context.Context, hospitalID, departmentID string, fn func(ctx context.Context) error) error
}

// Options tune the Redis locker.
type Options struct {
	TTL           time.Duration
	WaitTimeout   time.Duration
	RetryInterval time.Duration
}

type redisLocker struct {
	client  redis.UniversalClient
	opts    Options
	metrics *metrics.Metrics
}

// NewRedisLocker creates a locker that uses one Redis key per department.
// m may be nil.
func NewRedisLocker(client redis.UniversalClient, opts Options, m *metrics.Metrics) Locker {
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 25 * time.Millisecond
	}
	return &redisLocker{client: client, opts: opts, metrics: m}
}

// Key returns the Redis key guarding a department.
func Key(hospitalID, departmentID string) string {
	return fmt.Sprintf("lock:appointments:%s:%s", hospitalID, departmentID)
}

func (l *redisLocker) WithDepartmentLock(ctx context.Context, hospitalID, departmentID string, fn func(ctx context.Context) error) error {
	key := Key(hospitalID, departmentID)
	token := uuid.NewString()

	start := time.Now()
	if err := l.acquire(ctx, key, token); err != nil {
		l.observeWait(start, "timeout")
		return err
	}
	l.observeWait(start, "acquired")

	defer func() {
		// release uses its own context so a cancelled request still frees the key
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = l.release(releaseCtx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.opts.TTL)
	defer cancel()

	return fn(ctxWithTimeout)
}

func (l *redisLocker) acquire(ctx context.Context, key, token string) error {
	deadline := time.NewTimer(l.opts.WaitTimeout)
	defer deadline.Stop()

	ticker := time.NewTicker(l.opts.RetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.opts.TTL).Result()
		if err != nil {
			return fmt.Errorf("%w: acquire %s: %v", ErrLockBackend, key, err)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-ticker.C:
		}
	}
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: release %s: %v", ErrLockBackend, key, err)
	}
	return nil
}

func (l *redisLocker) observeWait(start time.Time, result string) {
	if l.metrics == nil {
		return
	}
	l.metrics.LockWaitDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}

// NoopLocker runs fn without locking. Used when Redis is disabled; the database constraint still holds.
type NoopLocker struct{}

func (NoopLocker) WithDepartmentLock(ctx context.Context, _, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
