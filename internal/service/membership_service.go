package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Chat_Community/internal/model"
	"Chat_Community/internal/pkg"
	"Chat_Community/internal/repository"
)

type MembershipService struct {
	members repository.MemberStore
	now     func() time.Time
}

func NewMembershipService(members repository.MemberStore) *MembershipService {
	return &MembershipService{members: members, now: utcNow}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// Join 不检查用户/社区是否存在，唯一约束交给存储层
func (s *MembershipService) Join(ctx context.Context, userID, communityID, role string) (*model.CommunityMember, error) {
	if !pkg.IsValidID(userID) || !pkg.IsValidID(communityID) {
		return nil, ErrInvalidReference
	}
	if role == "" {
		role = model.MemberRoleMember
	}
	if !model.ValidMemberRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	m := &model.CommunityMember{
		UserID:      userID,
		CommunityID: communityID,
		Role:        role,
		JoinedAt:    s.now(),
	}
	if err := s.members.Join(ctx, m); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateMembership
		}
		return nil, err
	}
	return m, nil
}

func (s *MembershipService) Leave(ctx context.Context, userID, communityID string) (bool, error) {
	if !pkg.IsValidID(userID) || !pkg.IsValidID(communityID) {
		return false, ErrInvalidReference
	}
	return s.members.Leave(ctx, userID, communityID)
}

func (s *MembershipService) IsMember(ctx context.Context, userID, communityID string) (bool, error) {
	if !pkg.IsValidID(userID) || !pkg.IsValidID(communityID) {
		return false, ErrInvalidReference
	}
	return s.members.IsMember(ctx, userID, communityID)
}

func (s *MembershipService) MembersOf(ctx context.Context, communityID string) ([]model.CommunityMember, error) {
	if !pkg.IsValidID(communityID) {
		return nil, ErrInvalidReference
	}
	return s.members.ListByCommunity(ctx, communityID)
}

func (s *MembershipService) CommunitiesOf(ctx context.Context, userID string) ([]model.CommunityMember, error) {
	if !pkg.IsValidID(userID) {
		return nil, ErrInvalidReference
	}
	return s.members.ListByUser(ctx, userID)
}
