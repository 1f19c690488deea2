package mysql

import (
	"context"

	"Chat_Community/internal/model"

	"gorm.io/gorm"
)

type CommunityRepository struct {
	DB *gorm.DB
}

// Create 只写社区本身；owner 成员关系由服务层在同一事务内补写
func (r *CommunityRepository) Create(ctx context.Context, c *model.Community) error {
	return translate(r.DB.WithContext(ctx).Create(c).Error)
}

func (r *CommunityRepository) FindByID(ctx context.Context, id string) (*model.Community, error) {
	var community model.Community
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&community).Error; err != nil {
		return nil, translate(err)
	}
	return &community, nil
}

// Update 部分字段合并（$set 语义），不会整行覆盖
func (r *CommunityRepository) Update(ctx context.Context, id string, fields map[string]any) (*model.Community, error) {
	res := r.DB.WithContext(ctx).Model(&model.Community{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return r.FindByID(ctx, id)
}

func (r *CommunityRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.Community{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *CommunityRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Community, error) {
	var list []model.Community
	err := r.DB.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&list).Error
	return list, translate(err)
}

func (r *CommunityRepository) List(ctx context.Context, offset, limit int) ([]model.Community, error) {
	var list []model.Community
	err := r.DB.WithContext(ctx).Order("created_at desc, id desc").Offset(offset).Limit(limit).Find(&list).Error
	return list, translate(err)
}
