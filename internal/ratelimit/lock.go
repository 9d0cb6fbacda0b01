package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	redis "github.com/redis/go-redis/v9"
)

const defaultCallerLockTTL = 10 * time.Second

// Deletes the lock only while it still carries the holder's token, so a
// request that outlived its TTL cannot drop a lock taken by a newer one.
var releaseCallerLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

var (
	errLockNotConfigured = errors.New("ratelimit: caller lock not configured")
	errLockNoSubject     = errors.New("ratelimit: caller lock needs a subject")
)

type lockClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// callerLock allows one in-flight redemption per caller. Locks expire after
// ttl even if never released.
type callerLock struct {
	client lockClient
	ttl    time.Duration
}

func newCallerLock(client lockClient, ttl time.Duration) *callerLock {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultCallerLockTTL
	}
	return &callerLock{client: client, ttl: ttl}
}

func callerLockKey(subjectID string) string {
	return fmt.Sprintf(keyRedeemLock, strings.TrimSpace(subjectID))
}

// acquire returns the holder token when the lock was taken, or ok=false when
// another redemption for the same caller is still running.
func (l *callerLock) acquire(ctx context.Context, subjectID string) (token string, ok bool, err error) {
	if l == nil || l.client == nil {
		return "", false, errLockNotConfigured
	}
	if strings.TrimSpace(subjectID) == "" {
		return "", false, errLockNoSubject
	}

	token = ulid.Make().String()
	ok, err = l.client.SetNX(ctx, callerLockKey(subjectID), token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("ratelimit: lock caller: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *callerLock) release(ctx context.Context, subjectID, token string) error {
	if l == nil || l.client == nil || token == "" || strings.TrimSpace(subjectID) == "" {
		return nil
	}
	return releaseCallerLock.Run(ctx, l.client, []string{callerLockKey(subjectID)}, token).Err()
}
