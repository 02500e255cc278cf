package cache

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionLock serializes confirmation of a single checkout session across
// concurrent requests. Acquire is a SetNX with TTL so a crashed holder cannot
// wedge the session forever.
type SessionLock struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionLock(rdb *redis.Client, ttl time.Duration) *SessionLock {
	return &SessionLock{rdb: rdb, ttl: ttl}
}

func (l *SessionLock) Acquire(ctx context.Context, sessionID string) (bool, error) {
	lockValue := uuid.NewString() // Unique value for this lock instance
	ok, err := l.rdb.SetNX(ctx, lockKey(sessionID), lockValue, l.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (l *SessionLock) Release(ctx context.Context, sessionID string) {
	if err := l.rdb.Del(ctx, lockKey(sessionID)).Err(); err != nil {
		log.Printf("WARN: failed to release confirmation lock for session %s: %v", sessionID, err)
	}
}

func lockKey(sessionID string) string {
	return "confirm_lock:" + sessionID
}
