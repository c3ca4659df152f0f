package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"evalgrid/pkg/logger"

	"github.com/go-redis/redis/v8"
)

const (
	generationLockPrefix = "generation:lock:"
	lockAcquireTimeout   = 5 * time.Second
	lockRetryInterval    = 100 * time.Millisecond
)

// unlockScript deletes the lock only when it still carries our value, so a
// lock that expired and was re-acquired by another instance is never removed.
const unlockScript = `
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`

// GenerationLock serializes subtask generation per task across instances.
// The unique index on the generation key tuple is the correctness backstop;
// the lock only keeps concurrent generators from wasting work on inserts
// that would collide anyway.
type GenerationLock struct {
	client *redis.Client
	ttl    time.Duration

	mu     sync.Mutex
	values map[string]string // taskID -> lock value held by this instance
}

// NewGenerationLock creates a per-task generation lock manager
func NewGenerationLock(redisClient *RedisClient, ttl time.Duration) *GenerationLock {
	var client *redis.Client
	if redisClient != nil {
		client = redisClient.GetClient()
	}
	return &GenerationLock{
		client: client,
		ttl:    ttl,
		values: make(map[string]string),
	}
}

// TryLock attempts to take the generation lock for a task. Returns false
// when another instance is already generating.
func (l *GenerationLock) TryLock(ctx context.Context, taskID string) (bool, error) {
	if l.client == nil {
		logger.Warn("redis client is nil, skipping generation lock (running in single-instance mode)")
		return true, nil
	}

	acquireCtx, cancel := context.WithTimeout(ctx, lockAcquireTimeout)
	defer cancel()

	key := generationLockPrefix + taskID
	value := fmt.Sprintf("%s-%d", taskID, time.Now().UnixNano())

	acquired, err := l.client.SetNX(acquireCtx, key, value, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire generation lock: %w", err)
	}
	if !acquired {
		logger.DebugCtx(ctx, "generation lock for task %s already held by another instance", taskID)
		return false, nil
	}

	l.mu.Lock()
	l.values[key] = value
	l.mu.Unlock()

	logger.DebugCtx(ctx, "generation lock acquired for task %s", taskID)
	return true, nil
}

// Acquire takes the generation lock, waiting for a concurrent holder to
// finish. A holder normally releases within milliseconds of its insert
// committing, so losing the race resolves into "subtasks already exist"
// rather than an error. Returns false when the holder outlives the wait.
func (l *GenerationLock) Acquire(ctx context.Context, taskID string) (bool, error) {
	deadline := time.Now().Add(lockAcquireTimeout)
	for {
		acquired, err := l.TryLock(ctx, taskID)
		if err != nil || acquired {
			return acquired, err
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

// Unlock releases the generation lock for a task.
func (l *GenerationLock) Unlock(ctx context.Context, taskID string) error {
	if l.client == nil {
		return nil
	}

	key := generationLockPrefix + taskID

	l.mu.Lock()
	value, held := l.values[key]
	delete(l.values, key)
	l.mu.Unlock()

	if !held {
		return nil
	}

	result, err := l.client.Eval(ctx, unlockScript, []string{key}, value).Result()
	if err != nil {
		return fmt.Errorf("failed to release generation lock: %w", err)
	}
	if result.(int64) == 0 {
		logger.WarnCtx(ctx, "generation lock for task %s expired or was taken by another instance", taskID)
	}
	return nil
}
