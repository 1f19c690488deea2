package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"Chat_Community/internal/logging"
	"Chat_Community/internal/metrics"
	"Chat_Community/internal/model"
	"Chat_Community/internal/pkg"
	"Chat_Community/internal/repository"
)

const (
	MaxMessagesPerWindow = 5
	RateWindow           = 60 * time.Second
	DefaultMessageLimit  = 100
)

// ChatService 消息流水线：校验 -> 存在性 -> 成员资格 -> 滑动窗口限流 -> 持久化
type ChatService struct {
	users       repository.UserStore
	communities repository.CommunityStore
	members     repository.MemberStore
	messages    repository.MessageStore
	owners      *pkg.OwnerCache
	events      *EventRecorder
	metrics     *metrics.Registry
	now         func() time.Time
}

func NewChatService(stores repository.Stores, owners *pkg.OwnerCache, events *EventRecorder, m *metrics.Registry) *ChatService {
	return &ChatService{
		users:       stores.Users,
		communities: stores.Communities,
		members:     stores.Members,
		messages:    stores.Messages,
		owners:      owners,
		events:      events,
		metrics:     m,
		now:         utcNow,
	}
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text must not be blank", ErrValidation)
	}
	if utf8.RuneCountInString(text) > model.MaxMessageLength {
		return fmt.Errorf("%w: text exceeds %d characters", ErrValidation, model.MaxMessageLength)
	}
	return nil
}

func (s *ChatService) SendMessage(ctx context.Context, senderID, communityID, text string) (*model.Message, error) {
	msg, err := s.sendMessage(ctx, senderID, communityID, text)
	switch {
	case err == nil:
		s.metrics.MessageOutcome("sent")
	case errors.Is(err, ErrRateLimited):
		s.metrics.MessageOutcome("rate_limited")
	default:
		s.metrics.MessageOutcome("rejected")
	}
	return msg, err
}

func (s *ChatService) sendMessage(ctx context.Context, senderID, communityID, text string) (*model.Message, error) {
	if !pkg.IsValidID(senderID) || !pkg.IsValidID(communityID) {
		return nil, ErrInvalidReference
	}
	if err := validateText(text); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, senderID); err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	// 存在性每次查库，缓存只用于 owner 鉴权
	c, err := s.communities.FindByID(ctx, communityID)
	if err != nil {
		if isNotFound(err) {
			s.owners.Forget(communityID)
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}
	s.owners.Remember(c.ID, c.OwnerID)

	ok, err := s.members.IsMember(ctx, senderID, communityID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAMember
	}

	// 每次按存量时间戳重新计算，不维护计数器
	now := s.now()
	n, err := s.messages.CountSince(ctx, senderID, communityID, now.Add(-RateWindow))
	if err != nil {
		return nil, err
	}
	if n >= MaxMessagesPerWindow {
		return nil, ErrRateLimited
	}

	msg := &model.Message{
		SenderID:    senderID,
		CommunityID: communityID,
		Text:        text,
		CreatedAt:   now,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.events.Record(ctx, model.EventMessageSent, msg.ID, communityID, msg)
	return msg, nil
}

// ownerOf 先查缓存，未命中回源；社区不存在时返回 ErrCommunityNotFound
func (s *ChatService) ownerOf(ctx context.Context, communityID string) (string, error) {
	if owner, ok := s.owners.Owner(communityID); ok {
		return owner, nil
	}
	c, err := s.communities.FindByID(ctx, communityID)
	if err != nil {
		if isNotFound(err) {
			return "", ErrCommunityNotFound
		}
		return "", err
	}
	s.owners.Remember(c.ID, c.OwnerID)
	return c.OwnerID, nil
}

// authorize 作者本人或社区 owner 可以修改/删除
func (s *ChatService) authorize(ctx context.Context, msg *model.Message, requesterID string) error {
	if msg.SenderID == requesterID {
		return nil
	}
	owner, err := s.ownerOf(ctx, msg.CommunityID)
	if err != nil && !errors.Is(err, ErrCommunityNotFound) {
		return err
	}
	if owner != "" && owner == requesterID {
		return nil
	}
	return ErrUnauthorized
}

// UpdateMessage 消息不存在时返回 (nil, nil)，只修改 text
func (s *ChatService) UpdateMessage(ctx context.Context, messageID, requesterID, text string) (*model.Message, error) {
	if !pkg.IsValidID(messageID) || !pkg.IsValidID(requesterID) {
		return nil, ErrInvalidReference
	}
	if err := validateText(text); err != nil {
		return nil, err
	}

	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if err := s.authorize(ctx, msg, requesterID); err != nil {
		return nil, err
	}

	updated, err := s.messages.UpdateText(ctx, messageID, text)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	s.events.Record(ctx, model.EventMessageUpdated, updated.ID, updated.CommunityID, updated)
	return updated, nil
}

// DeleteMessage 消息不存在时返回 false
func (s *ChatService) DeleteMessage(ctx context.Context, messageID, requesterID string) (bool, error) {
	if !pkg.IsValidID(messageID) || !pkg.IsValidID(requesterID) {
		return false, ErrInvalidReference
	}

	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if err := s.authorize(ctx, msg, requesterID); err != nil {
		return false, err
	}

	deleted, err := s.messages.Delete(ctx, messageID)
	if err != nil {
		return false, err
	}
	if deleted {
		logging.Debug("message deleted", "message_id", messageID, "requester", requesterID)
		s.events.Record(ctx, model.EventMessageDeleted, messageID, msg.CommunityID, map[string]string{
			"id":         messageID,
			"cid":        msg.CommunityID,
			"deleted_by": requesterID,
		})
	}
	return deleted, nil
}

// ListMessages 按创建时间倒序，limit<=0 时取默认值
func (s *ChatService) ListMessages(ctx context.Context, communityID string, limit int) ([]model.Message, error) {
	if !pkg.IsValidID(communityID) {
		return nil, ErrInvalidReference
	}
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	return s.messages.ListByCommunity(ctx, communityID, limit)
}
