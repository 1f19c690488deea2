package service

import (
	"context"
	"time"

	"Chat_Community/internal/logging"
	"Chat_Community/internal/model"
	"Chat_Community/internal/pkg"
	"Chat_Community/internal/repository"
)

// ApprovalCodeStore 两阶段保存验证码：pending 写入 -> 邮件发出 -> confirmed
type ApprovalCodeStore interface {
	SavePending(ctx context.Context, userID, code string) error
	Confirm(ctx context.Context, userID string) error
	DropPending(ctx context.Context, userID string) error
	Consume(ctx context.Context, userID, code string) (bool, error)
	CodeTTL() time.Duration
}

type ApprovalService struct {
	users  repository.UserStore
	codes  ApprovalCodeStore
	mailer pkg.Mailer
}

func NewApprovalService(users repository.UserStore, codes ApprovalCodeStore, mailer pkg.Mailer) *ApprovalService {
	return &ApprovalService{users: users, codes: codes, mailer: mailer}
}

// RequestApproval 生成验证码并发到用户邮箱，已审核的用户直接返回
func (s *ApprovalService) RequestApproval(ctx context.Context, userID string) error {
	if !pkg.IsValidID(userID) {
		return ErrInvalidReference
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	if user.Approved {
		return nil
	}

	code, err := pkg.RandDigits(6)
	if err != nil {
		return err
	}
	if err = s.codes.SavePending(ctx, userID, code); err != nil {
		return err
	}

	html := pkg.ApprovalCodeHTML(user.Name, code, s.codes.CodeTTL())
	if err = s.mailer.Send(user.Email, "Account approval code", html); err != nil {
		_ = s.codes.DropPending(ctx, userID)
		return err
	}

	// 邮件发送后再将pending转为confirmed
	if err = s.codes.Confirm(ctx, userID); err != nil {
		_ = s.codes.DropPending(ctx, userID)
		return err
	}
	logging.Info("approval code sent", "user_id", userID)
	return nil
}

// Approve 校验验证码（一次性）并标记用户已审核
func (s *ApprovalService) Approve(ctx context.Context, userID, code string) (*model.User, error) {
	if !pkg.IsValidID(userID) {
		return nil, ErrInvalidReference
	}
	ok, err := s.codes.Consume(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrApprovalFailed
	}
	user, err := s.users.Update(ctx, userID, map[string]any{"approved": true})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
