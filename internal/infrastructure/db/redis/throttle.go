package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts = 5
	defaultLockout     = 15 * time.Minute
)

// LoginThrottle counts failed logins per account in Redis and reports an
// account as locked once the count reaches maxAttempts. The counter expires
// lockout after the last failure.
// Key format: login:fail:<normalized_user_name>
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int64
	lockout     time.Duration
}

// NewLoginThrottle wraps client. Non-positive limits fall back to defaults.
func NewLoginThrottle(client *redis.Client, maxAttempts int, lockout time.Duration) *LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if lockout <= 0 {
		lockout = defaultLockout
	}
	return &LoginThrottle{client: client, maxAttempts: int64(maxAttempts), lockout: lockout}
}

// Locked reports whether account has reached the failure limit.
func (t *LoginThrottle) Locked(ctx context.Context, account string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(account)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return n >= t.maxAttempts, nil
}

// RecordFailure increments the failure counter and refreshes its expiry.
func (t *LoginThrottle) RecordFailure(ctx context.Context, account string) error {
	key := t.key(account)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, t.lockout)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("throttle record: %w", err)
	}
	return nil
}

// Reset clears the failure counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, account string) error {
	return t.client.Del(ctx, t.key(account)).Err()
}

func (t *LoginThrottle) key(account string) string {
	return fmt.Sprintf("login:fail:%s", account)
}
