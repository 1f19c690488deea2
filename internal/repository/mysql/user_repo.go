package mysql

import (
	"context"

	"Chat_Community/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.DB.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var usr model.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&usr).Error; err != nil {
		return nil, translate(err)
	}
	return &usr, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, fields map[string]any) (*model.User, error) {
	res := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	var list []model.User
	err := r.DB.WithContext(ctx).Order("created_at ASC").Find(&list).Error
	return list, translate(err)
}
