package model

import (
	"time"

	"Chat_Community/internal/pkg"

	"gorm.io/gorm"
)

const (
	EventMessageSent      = "message.sent"
	EventMessageUpdated   = "message.updated"
	EventMessageDeleted   = "message.deleted"
	EventCommunityCreated = "community.created"
	EventCommunityDeleted = "community.deleted"
)

const (
	OutboxPending int8 = 0
	OutboxSent    int8 = 1
	OutboxFailed  int8 = 2
)

// ChatOutbox 聊天事件监控表，由 OutboxRelayer 异步投递
type ChatOutbox struct {
	ID          string    `gorm:"primaryKey;size:24" bson:"_id"`
	EventType   string    `gorm:"size:32;not null" bson:"event_type"`
	AggregateID string    `gorm:"size:24;not null" bson:"aggregate_id"`
	CommunityID string    `gorm:"size:24;not null;index" bson:"community_id"`
	Payload     string    `gorm:"type:text;not null" bson:"payload"`
	Status      int8      `gorm:"not null;default:0;index;comment:'0=pending,1=sent,2=failed'" bson:"status"`
	Retry       int       `gorm:"not null;default:0" bson:"retry"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (ChatOutbox) TableName() string { return "chat_outbox" }

func (o *ChatOutbox) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = pkg.NewID()
	}
	return nil
}
