package service

import (
	"context"
	"time"

	"Chat_Community/internal/logging"
	"Chat_Community/internal/metrics"
	"Chat_Community/internal/model"
	"Chat_Community/internal/pkg"
	"Chat_Community/internal/repository"
)

type Sender func(ctx context.Context, ob *model.ChatOutbox) error

// OutboxRelayer 从 outbox 表读取事件异步投递
type OutboxRelayer struct {
	repo      repository.OutboxStore
	batchSize int
	maxRetry  int
	interval  time.Duration
	sender    Sender
	metrics   *metrics.Registry
}

func NewOutboxRelayer(repo repository.OutboxStore, sender Sender, interval time.Duration, m *metrics.Registry) *OutboxRelayer {
	if interval <= 0 {
		interval = time.Second
	}
	return &OutboxRelayer{
		repo:      repo,
		batchSize: 200,
		maxRetry:  10,
		interval:  interval,
		sender:    sender,
		metrics:   m,
	}
}

// Run outbox启动器
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

func (r *OutboxRelayer) drainOnce(ctx context.Context) int {
	rows, err := r.repo.Pending(ctx, r.batchSize, r.maxRetry)
	if err != nil {
		logging.Warn("outbox query failed", "error", err)
		return 0
	}
	sent := 0
	for i := range rows {
		ob := rows[i]
		if err = r.sender(ctx, &ob); err != nil {
			logging.Warn("outbox send failed", "id", ob.ID, "event_type", ob.EventType, "retry", ob.Retry, "error", err)
			r.metrics.Relayed("failed")
			_ = r.repo.MarkRetry(ctx, ob.ID)
			continue
		}
		r.metrics.Relayed("sent")
		_ = r.repo.MarkSent(ctx, ob.ID)
		sent++
	}
	return sent
}

// LogSender 没有配置 broker 时只打日志
func LogSender(ctx context.Context, ob *model.ChatOutbox) error {
	logging.Info("outbox event",
		"event_type", ob.EventType,
		"aggregate_id", ob.AggregateID,
		"community_id", ob.CommunityID,
		"payload", ob.Payload,
	)
	return nil
}

// KafkaSender 以 community_id 为 key，同一社区的事件落在同一分区保持顺序
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.ChatOutbox) error {
		return p.Send(ctx, ob.CommunityID, ob.EventType, []byte(ob.Payload))
	}
}
