package model

import (
	"time"

	"Chat_Community/internal/pkg"

	"gorm.io/gorm"
)

const MaxMessageLength = 1000

type Message struct {
	ID          string    `gorm:"primaryKey;size:24" bson:"_id" json:"id"`
	SenderID    string    `gorm:"size:24;not null;index:idx_sender_comm_time,priority:1" bson:"sender_id" json:"uid"`
	CommunityID string    `gorm:"size:24;not null;index:idx_sender_comm_time,priority:2;index:idx_comm_time,priority:1" bson:"community_id" json:"cid"`
	Text        string    `gorm:"size:1000;not null" bson:"text" json:"text"`
	CreatedAt   time.Time `gorm:"index:idx_sender_comm_time,priority:3;index:idx_comm_time,priority:2,sort:desc" bson:"created_at" json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = pkg.NewID()
	}
	return nil
}
