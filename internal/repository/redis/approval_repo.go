package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultApprovalCodeTTL = 15 * time.Minute
	ApprovalCodePrefix     = "approval:code"

	// 两阶段键
	PendingSuffix   = "pending"
	ConfirmedSuffix = "confirmed"
)

var (
	ErrCodePendingFailed   = errors.New("code pending failed")
	ErrCodeConfirmedFailed = errors.New("code confirmed failed")
	ErrCodeDelFailed       = errors.New("code delete failed")
)

// 取值+写入目标+设置 TTL+删除源，原子执行
var promoteScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val then
  return 0
end
redis.call("SET", KEYS[2], val, "PX", ARGV[1])
redis.call("DEL", KEYS[1])
return 1
`)

// 比较一致才删除，保证验证码只能用一次
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

type ApprovalCodeRepository struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewApprovalCodeRepository(rdb *redis.Client) *ApprovalCodeRepository {
	return &ApprovalCodeRepository{RDB: rdb, TTL: DefaultApprovalCodeTTL}
}

func (r *ApprovalCodeRepository) key(stage, userID string) string {
	return fmt.Sprintf("%s:%s:%s", ApprovalCodePrefix, stage, userID)
}

func (r *ApprovalCodeRepository) CodeTTL() time.Duration {
	return r.TTL
}

// SavePending 邮件发出前先写 pending 键
func (r *ApprovalCodeRepository) SavePending(ctx context.Context, userID, code string) error {
	if err := r.RDB.Set(ctx, r.key(PendingSuffix, userID), code, r.TTL).Err(); err != nil {
		return ErrCodePendingFailed
	}
	return nil
}

// Confirm 邮件发送成功后将 pending 转为 confirmed
func (r *ApprovalCodeRepository) Confirm(ctx context.Context, userID string) error {
	px := int64(r.TTL / time.Millisecond)
	keys := []string{r.key(PendingSuffix, userID), r.key(ConfirmedSuffix, userID)}
	ok, err := promoteScript.Run(ctx, r.RDB, keys, px).Int()
	if err != nil || ok != 1 {
		return ErrCodeConfirmedFailed
	}
	return nil
}

// DropPending 删除 pending 键（幂等）
func (r *ApprovalCodeRepository) DropPending(ctx context.Context, userID string) error {
	if err := r.RDB.Del(ctx, r.key(PendingSuffix, userID)).Err(); err != nil {
		return ErrCodeDelFailed
	}
	return nil
}

// Consume 校验 confirmed 验证码，匹配则删除并返回 true
func (r *ApprovalCodeRepository) Consume(ctx context.Context, userID, code string) (bool, error) {
	n, err := consumeScript.Run(ctx, r.RDB, []string{r.key(ConfirmedSuffix, userID)}, code).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
