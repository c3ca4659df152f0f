package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func newTestClient(t *testing.T) *RedisClient {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return &RedisClient{client: client}
}

func TestGenerationLock_LockUnlock(t *testing.T) {
	rc := newTestClient(t)
	lock := NewGenerationLock(rc, time.Minute)
	ctx := context.Background()

	acquired, err := lock.TryLock(ctx, "task-1")
	assert.NoError(t, err)
	assert.True(t, acquired)

	err = lock.Unlock(ctx, "task-1")
	assert.NoError(t, err)

	// Reacquirable after release
	acquired, err = lock.TryLock(ctx, "task-1")
	assert.NoError(t, err)
	assert.True(t, acquired)
}

func TestGenerationLock_ConcurrentGenerators(t *testing.T) {
	rc := newTestClient(t)
	lock1 := NewGenerationLock(rc, time.Minute)
	lock2 := NewGenerationLock(rc, time.Minute)
	ctx := context.Background()

	acquired, err := lock1.TryLock(ctx, "task-1")
	assert.NoError(t, err)
	assert.True(t, acquired)

	// Another instance cannot generate the same task concurrently
	acquired, err = lock2.TryLock(ctx, "task-1")
	assert.NoError(t, err)
	assert.False(t, acquired)

	// A different task is unrelated
	acquired, err = lock2.TryLock(ctx, "task-2")
	assert.NoError(t, err)
	assert.True(t, acquired)

	assert.NoError(t, lock1.Unlock(ctx, "task-1"))

	acquired, err = lock2.TryLock(ctx, "task-1")
	assert.NoError(t, err)
	assert.True(t, acquired)
}

func TestGenerationLock_UnlockWithoutHold(t *testing.T) {
	rc := newTestClient(t)
	lock1 := NewGenerationLock(rc, time.Minute)
	lock2 := NewGenerationLock(rc, time.Minute)
	ctx := context.Background()

	acquired, err := lock1.TryLock(ctx, "task-1")
	assert.NoError(t, err)
	assert.True(t, acquired)

	// Unlocking a lock we never acquired must not release the holder's lock
	assert.NoError(t, lock2.Unlock(ctx, "task-1"))

	acquired, err = lock2.TryLock(ctx, "task-1")
	assert.NoError(t, err)
	assert.False(t, acquired)
}

func TestGenerationLock_NilClient(t *testing.T) {
	lock := NewGenerationLock(nil, time.Minute)
	ctx := context.Background()

	// Without redis the lock degrades to a no-op so single-instance
	// deployments still work.
	acquired, err := lock.TryLock(ctx, "task-1")
	assert.NoError(t, err)
	assert.True(t, acquired)
	assert.NoError(t, lock.Unlock(ctx, "task-1"))
}

func TestGenerationLock_AcquireWaitsForHolder(t *testing.T) {
	rc := newTestClient(t)
	holder := NewGenerationLock(rc, time.Minute)
	waiter := NewGenerationLock(rc, time.Minute)
	ctx := context.Background()

	acquired, err := holder.TryLock(ctx, "task-9")
	assert.NoError(t, err)
	assert.True(t, acquired)

	// Holder finishes shortly after the waiter starts polling
	go func() {
		time.Sleep(150 * time.Millisecond)
		_ = holder.Unlock(ctx, "task-9")
	}()

	start := time.Now()
	acquired, err = waiter.Acquire(ctx, "task-9")
	assert.NoError(t, err)
	assert.True(t, acquired)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)

	assert.NoError(t, waiter.Unlock(ctx, "task-9"))
}

func TestGenerationLock_AcquireCancelled(t *testing.T) {
	rc := newTestClient(t)
	holder := NewGenerationLock(rc, time.Minute)
	waiter := NewGenerationLock(rc, time.Minute)

	acquired, err := holder.TryLock(context.Background(), "task-10")
	assert.NoError(t, err)
	assert.True(t, acquired)

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	acquired, err = waiter.Acquire(ctx, "task-10")
	assert.False(t, acquired)
	assert.Error(t, err)
}
