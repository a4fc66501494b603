package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLock(t *testing.T) (*SweepLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewSweepLock(rdb, SweepLockKey, time.Minute), mr
}

func TestSweepLockExcludesSecondHolder(t *testing.T) {
	lock, _ := newTestLock(t)
	ctx := context.Background()

	release, ok, err := lock.TryAcquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}

	_, ok, err = lock.TryAcquire(ctx)
	if err != nil {
		t.Fatalf("second acquire errored: %v", err)
	}
	if ok {
		t.Fatal("second acquire succeeded while lock held")
	}

	release()

	_, ok, err = lock.TryAcquire(ctx)
	if err != nil || !ok {
		t.Fatalf("acquire after release: ok=%v err=%v", ok, err)
	}
}

func TestSweepLockExpiresAfterTTL(t *testing.T) {
	lock, mr := newTestLock(t)
	ctx := context.Background()

	if _, ok, err := lock.TryAcquire(ctx); err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}

	// A crashed holder never calls release; the TTL frees the lock.
	mr.FastForward(2 * time.Minute)

	if _, ok, err := lock.TryAcquire(ctx); err != nil || !ok {
		t.Fatalf("acquire after expiry: ok=%v err=%v", ok, err)
	}
}

func TestStaleReleaseDoesNotFreeNewHolder(t *testing.T) {
	lock, mr := newTestLock(t)
	ctx := context.Background()

	staleRelease, ok, err := lock.TryAcquire(ctx)
	if err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}

	mr.FastForward(2 * time.Minute)

	if _, ok, err := lock.TryAcquire(ctx); err != nil || !ok {
		t.Fatalf("reacquire after expiry: ok=%v err=%v", ok, err)
	}

	// The first holder's release must not delete the new holder's lock.
	staleRelease()

	if _, ok, err := lock.TryAcquire(ctx); err != nil {
		t.Fatalf("probe errored: %v", err)
	} else if ok {
		t.Fatal("stale release freed a lock it no longer owned")
	}
}
