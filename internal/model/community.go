package model

import (
	"time"

	"Chat_Community/internal/pkg"

	"gorm.io/gorm"
)

const (
	MemberRoleMember    = "member"
	MemberRoleModerator = "moderator"
	MemberRoleOwner     = "owner"
)

func ValidMemberRole(role string) bool {
	switch role {
	case MemberRoleMember, MemberRoleModerator, MemberRoleOwner:
		return true
	}
	return false
}

type Community struct {
	ID          string    `gorm:"primaryKey;size:24" bson:"_id" json:"id"`
	Name        string    `gorm:"size:100;not null" bson:"name" json:"name"`
	Description *string   `gorm:"size:500" bson:"description,omitempty" json:"description,omitempty"`
	OwnerID     string    `gorm:"column:owner_id;size:24;not null;index" bson:"owner_id" json:"owner"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

func (c *Community) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = pkg.NewID()
	}
	return nil
}

// CommunityMember 用户与社区的多对多关系，(user_id, community_id) 唯一
type CommunityMember struct {
	ID          string    `gorm:"primaryKey;size:24" bson:"_id" json:"id"`
	UserID      string    `gorm:"size:24;not null;index;uniqueIndex:uk_community_user" bson:"user_id" json:"user_id"`
	CommunityID string    `gorm:"size:24;not null;index;uniqueIndex:uk_community_user" bson:"community_id" json:"community_id"`
	Role        string    `gorm:"size:16;not null;default:member" bson:"role" json:"role"`
	JoinedAt    time.Time `bson:"joined_at" json:"joined_at"`
}

func (m *CommunityMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = pkg.NewID()
	}
	return nil
}
