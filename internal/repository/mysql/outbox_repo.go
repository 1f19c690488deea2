package mysql

import (
	"context"

	"Chat_Community/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	DB *gorm.DB
}

func (r *OutboxRepository) Insert(ctx context.Context, ob *model.ChatOutbox) error {
	return translate(r.DB.WithContext(ctx).Create(ob).Error)
}

// Pending outbox 查询：待发送以及失败但未超过重试上限的
func (r *OutboxRepository) Pending(ctx context.Context, batchSize, maxRetry int) ([]model.ChatOutbox, error) {
	var list []model.ChatOutbox
	if err := r.DB.WithContext(ctx).
		Where("status IN ? AND retry < ?", []int8{model.OutboxPending, model.OutboxFailed}, maxRetry).
		Order("created_at ASC, id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

// MarkRetry outbox记录消息失败重试
func (r *OutboxRepository) MarkRetry(ctx context.Context, id string) error {
	return translate(r.DB.WithContext(ctx).Model(&model.ChatOutbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error)
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id string) error {
	return translate(r.DB.WithContext(ctx).Model(&model.ChatOutbox{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error)
}
