package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SweepLockKey guards the milestone store's bulk writers. Ingestion and the
// auto-close sweep both take it, so the two never interleave.
const SweepLockKey = "donorops:milestones:sweep"

// releaseScript deletes the lock only when the caller still owns it, so an
// expired-and-reacquired lock is never released by the previous holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SweepLock is a single-holder lock on redis SETNX with a TTL safety net.
type SweepLock struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewSweepLock creates a lock handle. ttl bounds how long a crashed holder
// can block the next sweep.
func NewSweepLock(rdb *redis.Client, key string, ttl time.Duration) *SweepLock {
	return &SweepLock{rdb: rdb, key: key, ttl: ttl}
}

// TryAcquire attempts to take the lock without blocking. On success it
// returns a release func; when the lock is held elsewhere it returns
// ok=false and no error.
func (l *SweepLock) TryAcquire(ctx context.Context) (release func(), ok bool, err error) {
	token := uuid.NewString()
	ok, err = l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}

	release = func() {
		// Best effort; TTL cleans up if the connection is gone.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.rdb, []string{l.key}, token).Err()
	}
	return release, true, nil
}
