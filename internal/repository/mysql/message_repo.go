package mysql

import (
	"context"
	"time"

	"Chat_Community/internal/model"

	"gorm.io/gorm"
)

type MessageRepository struct {
	DB *gorm.DB
}

func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	return translate(r.DB.WithContext(ctx).Create(msg).Error)
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*model.Message, error) {
	var msg model.Message
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&msg).Error; err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

// UpdateText 只改 text 一列
func (r *MessageRepository) UpdateText(ctx context.Context, id, text string) (*model.Message, error) {
	res := r.DB.WithContext(ctx).Model(&model.Message{}).Where("id = ?", id).Update("text", text)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return r.FindByID(ctx, id)
}

func (r *MessageRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.Message{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ListByCommunity 索引 (community_id, created_at DESC)；同一时间点用 id 打破并列
func (r *MessageRepository) ListByCommunity(ctx context.Context, communityID string, limit int) ([]model.Message, error) {
	var list []model.Message
	err := r.DB.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	return list, translate(err)
}

func (r *MessageRepository) CountSince(ctx context.Context, senderID, communityID string, since time.Time) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Message{}).
		Where("sender_id = ? AND community_id = ? AND created_at >= ?", senderID, communityID, since.UTC()).
		Count(&n).Error
	return n, translate(err)
}

func (r *MessageRepository) DeleteByCommunity(ctx context.Context, communityID string) (int64, error) {
	res := r.DB.WithContext(ctx).Where("community_id = ?", communityID).Delete(&model.Message{})
	return res.RowsAffected, translate(res.Error)
}

func (r *MessageRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("community_id NOT IN (?)", r.DB.Model(&model.Community{}).Select("id")).
		Delete(&model.Message{})
	return res.RowsAffected, translate(res.Error)
}
