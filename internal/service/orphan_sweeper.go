package service

import (
	"context"
	"errors"
	"time"

	"Chat_Community/internal/logging"
	"Chat_Community/internal/metrics"
	"Chat_Community/internal/repository"

	"github.com/google/uuid"
)

const sweepLockName = "orphan-sweep"

// Locker 多实例部署时保证同一时刻只有一个清理任务
type Locker interface {
	Acquire(ctx context.Context, name, token string) (bool, error)
	Release(ctx context.Context, name, token string) error
}

// OrphanSweeper 清理社区删除中途失败后残留的成员关系和消息。可重复执行
type OrphanSweeper struct {
	members  repository.MemberStore
	messages repository.MessageStore
	lock     Locker
	interval time.Duration
	metrics  *metrics.Registry
}

func NewOrphanSweeper(members repository.MemberStore, messages repository.MessageStore, lock Locker, interval time.Duration, m *metrics.Registry) *OrphanSweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &OrphanSweeper{
		members:  members,
		messages: messages,
		lock:     lock,
		interval: interval,
		metrics:  m,
	}
}

func (s *OrphanSweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, _, err := s.SweepOnce(ctx); err != nil {
				logging.Warn("orphan sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce 返回本次删除的成员关系数和消息数
func (s *OrphanSweeper) SweepOnce(ctx context.Context) (int64, int64, error) {
	if s.lock != nil {
		token := uuid.NewString()
		ok, err := s.lock.Acquire(ctx, sweepLockName, token)
		if err != nil {
			return 0, 0, err
		}
		if !ok {
			logging.Debug("orphan sweep skipped, lock held elsewhere")
			return 0, 0, nil
		}
		defer func() { _ = s.lock.Release(context.WithoutCancel(ctx), sweepLockName, token) }()
	}

	members, errMembers := s.members.DeleteOrphans(ctx)
	s.metrics.Swept("community_members", members)
	messages, errMessages := s.messages.DeleteOrphans(ctx)
	s.metrics.Swept("messages", messages)

	if members > 0 || messages > 0 {
		logging.Info("orphans swept", "memberships", members, "messages", messages)
	}
	return members, messages, errors.Join(errMembers, errMessages)
}
