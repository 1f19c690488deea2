package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"Chat_Community/internal/model"
	"Chat_Community/internal/pkg"
	"Chat_Community/internal/repository"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo     repository.UserStore
	validate *validator.Validate
}

type CreateUserInput struct {
	Name     string          `json:"name" validate:"min=3,max=100"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"min=8,max=72"`
	Role     string          `json:"role" validate:"omitempty,oneof=user organiser business admin"`
	Address  *string         `json:"address" validate:"omitempty,max=255"`
	Gender   *string         `json:"gender" validate:"omitempty,max=32"`
	Location *model.Location `json:"last_synced_location"`
}

func NewUserService(repo repository.UserStore) *UserService {
	return &UserService{repo: repo, validate: validator.New()}
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// 先查一次给出友好错误，并发下仍由唯一索引兜底
	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !isNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
		Role:     in.Role,
		Address:  in.Address,
		Gender:   in.Gender,
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if in.Location != nil {
		user.Location = *in.Location
	}
	user.CreatedAt = utcNow()

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	if !pkg.IsValidID(userID) {
		return nil, ErrInvalidReference
	}
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateUserInput nil 字段保持不变，email 和密码不在此处修改
type UpdateUserInput struct {
	Name     *string         `json:"name" validate:"omitempty,min=3,max=100"`
	Address  *string         `json:"address" validate:"omitempty,max=255"`
	Gender   *string         `json:"gender" validate:"omitempty,max=32"`
	Location *model.Location `json:"last_synced_location"`
}

// UpdateUser 用户不存在时返回 (nil, nil)
func (s *UserService) UpdateUser(ctx context.Context, userID string, in UpdateUserInput) (*model.User, error) {
	if !pkg.IsValidID(userID) {
		return nil, ErrInvalidReference
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	fields := make(map[string]any)
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		fields["address"] = *in.Address
	}
	if in.Gender != nil {
		fields["gender"] = *in.Gender
	}
	if in.Location != nil {
		fields["location_x"] = in.Location.X
		fields["location_y"] = in.Location.Y
	}

	if len(fields) == 0 {
		u, err := s.repo.FindByID(ctx, userID)
		if isNotFound(err) {
			return nil, nil
		}
		return u, err
	}
	u, err := s.repo.Update(ctx, userID, fields)
	if isNotFound(err) {
		return nil, nil
	}
	return u, err
}

func (s *UserService) DeleteUser(ctx context.Context, userID string) (bool, error) {
	if !pkg.IsValidID(userID) {
		return false, ErrInvalidReference
	}
	return s.repo.Delete(ctx, userID)
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}
