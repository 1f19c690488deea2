package mysql

import (
	"context"

	"Chat_Community/internal/model"

	"gorm.io/gorm"
)

type CommunityMemberRepository struct {
	DB *gorm.DB
}

// Join 直接插入，由唯一索引 uk_community_user 裁决并发重复加入
func (r *CommunityMemberRepository) Join(ctx context.Context, member *model.CommunityMember) error {
	return translate(r.DB.WithContext(ctx).Create(member).Error)
}

func (r *CommunityMemberRepository) Leave(ctx context.Context, userID, communityID string) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&model.CommunityMember{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *CommunityMemberRepository) IsMember(ctx context.Context, userID, communityID string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	return count > 0, translate(err)
}

func (r *CommunityMemberRepository) ListByCommunity(ctx context.Context, communityID string) ([]model.CommunityMember, error) {
	var list []model.CommunityMember
	err := r.DB.WithContext(ctx).Where("community_id = ?", communityID).Find(&list).Error
	return list, translate(err)
}

func (r *CommunityMemberRepository) ListByUser(ctx context.Context, userID string) ([]model.CommunityMember, error) {
	var list []model.CommunityMember
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&list).Error
	return list, translate(err)
}

func (r *CommunityMemberRepository) DeleteByCommunity(ctx context.Context, communityID string) (int64, error) {
	res := r.DB.WithContext(ctx).Where("community_id = ?", communityID).Delete(&model.CommunityMember{})
	return res.RowsAffected, translate(res.Error)
}

// DeleteOrphans 清理社区已不存在的成员关系
func (r *CommunityMemberRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("community_id NOT IN (?)", r.DB.Model(&model.Community{}).Select("id")).
		Delete(&model.CommunityMember{})
	return res.RowsAffected, translate(res.Error)
}
