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
	minCommunityName   = 3
	maxCommunityName   = 100
	maxDescriptionSize = 500
)

type CommunityService struct {
	users       repository.UserStore
	communities repository.CommunityStore
	members     repository.MemberStore
	messages    repository.MessageStore
	tx          repository.TxFunc
	owners      *pkg.OwnerCache
	events      *EventRecorder
	metrics     *metrics.Registry
	now         func() time.Time
}

type CreateCommunityInput struct {
	Name        string
	Description *string
	OwnerID     string
}

func NewCommunityService(stores repository.Stores, owners *pkg.OwnerCache, events *EventRecorder, m *metrics.Registry) *CommunityService {
	return &CommunityService{
		users:       stores.Users,
		communities: stores.Communities,
		members:     stores.Members,
		messages:    stores.Messages,
		tx:          stores.Tx,
		owners:      owners,
		events:      events,
		metrics:     m,
		now:         utcNow,
	}
}

func validateCommunityName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < minCommunityName || n > maxCommunityName {
		return fmt.Errorf("%w: name must be %d-%d characters", ErrValidation, minCommunityName, maxCommunityName)
	}
	return nil
}

func validateDescription(desc *string) error {
	if desc != nil && utf8.RuneCountInString(*desc) > maxDescriptionSize {
		return fmt.Errorf("%w: description exceeds %d characters", ErrValidation, maxDescriptionSize)
	}
	return nil
}

// CreateCommunity 支持事务的后端把社区与 owner 成员关系放在同一事务；
// 否则先写社区再补成员关系，后者失败时社区照常返回，错误为告警
func (s *CommunityService) CreateCommunity(ctx context.Context, in CreateCommunityInput) (*model.Community, error) {
	if !pkg.IsValidID(in.OwnerID) {
		return nil, ErrInvalidReference
	}
	if err := validateCommunityName(in.Name); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, in.OwnerID); err != nil {
		if isNotFound(err) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}

	now := s.now()
	community := &model.Community{
		Name:        in.Name,
		Description: in.Description,
		OwnerID:     in.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if s.tx != nil {
		err := s.tx(ctx, func(tx repository.Stores) error {
			if err := tx.Communities.Create(ctx, community); err != nil {
				return err
			}
			return joinOwner(ctx, tx.Members, community, now)
		})
		if err != nil {
			return nil, err
		}
		s.communityCreated(ctx, community)
		return community, nil
	}

	if err := s.communities.Create(ctx, community); err != nil {
		return nil, err
	}
	s.communityCreated(ctx, community)

	if err := joinOwner(ctx, s.members, community, now); err != nil {
		logging.Warn("owner membership not recorded", "community_id", community.ID, "owner", community.OwnerID, "error", err)
		s.metrics.CascadeFailed("owner_membership")
		return community, fmt.Errorf("%w: %w", ErrOwnerMembershipIncomplete, err)
	}
	return community, nil
}

// joinOwner 已存在的 owner 成员关系视为成功
func joinOwner(ctx context.Context, members repository.MemberStore, c *model.Community, now time.Time) error {
	err := members.Join(ctx, &model.CommunityMember{
		UserID:      c.OwnerID,
		CommunityID: c.ID,
		Role:        model.MemberRoleOwner,
		JoinedAt:    now,
	})
	if err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	return nil
}

func (s *CommunityService) communityCreated(ctx context.Context, c *model.Community) {
	s.owners.Remember(c.ID, c.OwnerID)
	s.events.Record(ctx, model.EventCommunityCreated, c.ID, c.ID, c)
}

func (s *CommunityService) GetCommunity(ctx context.Context, communityID string) (*model.Community, error) {
	if !pkg.IsValidID(communityID) {
		return nil, ErrInvalidReference
	}
	c, err := s.communities.FindByID(ctx, communityID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}
	return c, nil
}

// filterCommunityFields 只保留 name/description，其余字段静默丢弃
func filterCommunityFields(fields map[string]any) (map[string]any, error) {
	out := make(map[string]any, 2)
	if v, ok := fields["name"]; ok {
		name, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: name must be a string", ErrValidation)
		}
		if err := validateCommunityName(name); err != nil {
			return nil, err
		}
		out["name"] = name
	}
	if v, ok := fields["description"]; ok {
		switch desc := v.(type) {
		case nil:
			out["description"] = nil
		case string:
			if err := validateDescription(&desc); err != nil {
				return nil, err
			}
			out["description"] = desc
		default:
			return nil, fmt.Errorf("%w: description must be a string", ErrValidation)
		}
	}
	return out, nil
}

// UpdateCommunity 社区不存在时返回 (nil, nil)
func (s *CommunityService) UpdateCommunity(ctx context.Context, communityID, requesterID string, fields map[string]any) (*model.Community, error) {
	if !pkg.IsValidID(communityID) || !pkg.IsValidID(requesterID) {
		return nil, ErrInvalidReference
	}
	c, err := s.communities.FindByID(ctx, communityID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if c.OwnerID != requesterID {
		return nil, ErrUnauthorized
	}

	changes, err := filterCommunityFields(fields)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return c, nil
	}
	changes["updated_at"] = s.now()

	updated, err := s.communities.Update(ctx, communityID, changes)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return updated, nil
}

// DeleteCommunity 依次删除社区、成员关系、消息。支持事务的后端任一步失败整体回滚；
// 否则后两步失败不回滚，返回 (true, ErrCascadeIncomplete)，残留由 OrphanSweeper 兜底
func (s *CommunityService) DeleteCommunity(ctx context.Context, communityID, requesterID string) (bool, error) {
	if !pkg.IsValidID(communityID) || !pkg.IsValidID(requesterID) {
		return false, ErrInvalidReference
	}
	c, err := s.communities.FindByID(ctx, communityID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if c.OwnerID != requesterID {
		return false, ErrUnauthorized
	}

	if s.tx != nil {
		var deleted bool
		var members, messages int64
		err := s.tx(ctx, func(tx repository.Stores) error {
			ok, err := tx.Communities.Delete(ctx, communityID)
			if err != nil || !ok {
				return err
			}
			if members, err = tx.Members.DeleteByCommunity(ctx, communityID); err != nil {
				return fmt.Errorf("memberships: %w", err)
			}
			if messages, err = tx.Messages.DeleteByCommunity(ctx, communityID); err != nil {
				return fmt.Errorf("messages: %w", err)
			}
			deleted = true
			return nil
		})
		if err != nil {
			return false, err
		}
		if deleted {
			s.communityDeleted(ctx, communityID, requesterID, members, messages)
		}
		return deleted, nil
	}

	deleted, err := s.communities.Delete(ctx, communityID)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}

	var failures []error
	members, err := s.members.DeleteByCommunity(ctx, communityID)
	if err != nil {
		s.metrics.CascadeFailed("memberships")
		failures = append(failures, fmt.Errorf("memberships: %w", err))
	}
	messages, err := s.messages.DeleteByCommunity(ctx, communityID)
	if err != nil {
		s.metrics.CascadeFailed("messages")
		failures = append(failures, fmt.Errorf("messages: %w", err))
	}
	s.communityDeleted(ctx, communityID, requesterID, members, messages)

	if len(failures) > 0 {
		cascadeErr := errors.Join(failures...)
		logging.Warn("community cascade incomplete", "community_id", communityID, "error", cascadeErr)
		return true, fmt.Errorf("%w: %w", ErrCascadeIncomplete, cascadeErr)
	}
	return true, nil
}

func (s *CommunityService) communityDeleted(ctx context.Context, communityID, requesterID string, members, messages int64) {
	s.owners.Forget(communityID)
	s.metrics.CommunityDeleted()
	s.events.Record(ctx, model.EventCommunityDeleted, communityID, communityID, map[string]any{
		"id":          communityID,
		"deleted_by":  requesterID,
		"memberships": members,
		"messages":    messages,
	})
}

func (s *CommunityService) ListForOwner(ctx context.Context, ownerID string) ([]model.Community, error) {
	if !pkg.IsValidID(ownerID) {
		return nil, ErrInvalidReference
	}
	return s.communities.ListByOwner(ctx, ownerID)
}

func (s *CommunityService) ListCommunities(ctx context.Context, page, size int) ([]model.Community, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}

	offset := (page - 1) * size
	return s.communities.List(ctx, offset, size)
}
