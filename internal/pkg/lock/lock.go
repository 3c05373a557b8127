package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var (
	ErrNotAcquired = errors.New("lock not acquired")
	ErrWaitTimeout = errors.New("lock wait timeout")
)

// 只有持有者才能释放
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const pollInterval = 100 * time.Millisecond

// Locker 基于 Redis SET NX PX 的互斥锁
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

// Lock 已获取的锁
type Lock struct {
	client *redis.Client
	key    string
	token  string
}

// NewLocker 创建锁管理器
func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl}
}

// ChapterKey 章节物化锁的 key，kind 为 content 或 quiz
func ChapterKey(chapterID int64, kind string) string {
	return fmt.Sprintf("lock:chapter:%d:%s", chapterID, kind)
}

// TryAcquire 尝试获取锁，已被占用时返回 ErrNotAcquired
func (l *Locker) TryAcquire(ctx context.Context, key string) (*Lock, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}
	return &Lock{client: l.client, key: key, token: token}, nil
}

// Wait 等待锁被释放，最长 timeout
func (l *Locker) Wait(ctx context.Context, key string, timeout time.Duration) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		n, err := l.client.Exists(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("check lock %s: %w", key, err)
		}
		if n == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return ErrWaitTimeout
		case <-ticker.C:
		}
	}
}

// Release 释放锁
func (k *Lock) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, k.client, []string{k.key}, k.token).Err()
}

func (k *Lock) Key() string {
	return k.key
}
