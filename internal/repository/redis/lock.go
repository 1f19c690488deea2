package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const LockKeyPrefix = "lock:"

// DistLock 基于 SET NX 的分布式锁，多实例部署时只让一个实例跑清理任务
type DistLock struct {
	RDB *redis.Client
	TTL time.Duration
}

func (l *DistLock) Acquire(ctx context.Context, name, token string) (bool, error) {
	return l.RDB.SetNX(ctx, LockKeyPrefix+name, token, l.TTL).Result()
}

// Release 用lua保证原子性
func (l *DistLock) Release(ctx context.Context, name, token string) error {
	_, err := redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`).Run(ctx, l.RDB, []string{LockKeyPrefix + name}, token).Result()
	return err
}
