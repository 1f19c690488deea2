// Package repository 定义实体存储契约，mysql(gorm) 与 mongo 两种后端分别实现。
package repository

import (
	"context"
	"errors"
	"time"

	"Chat_Community/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// Update 按字段部分合并，返回更新后的记录
	Update(ctx context.Context, id string, fields map[string]any) (*model.User, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]model.User, error)
}

type CommunityStore interface {
	Create(ctx context.Context, c *model.Community) error
	FindByID(ctx context.Context, id string) (*model.Community, error)
	Update(ctx context.Context, id string, fields map[string]any) (*model.Community, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Community, error)
	List(ctx context.Context, offset, limit int) ([]model.Community, error)
}

type MemberStore interface {
	// Join 依赖 (user_id, community_id) 唯一索引，冲突时返回 ErrDuplicate
	Join(ctx context.Context, m *model.CommunityMember) error
	Leave(ctx context.Context, userID, communityID string) (bool, error)
	IsMember(ctx context.Context, userID, communityID string) (bool, error)
	ListByCommunity(ctx context.Context, communityID string) ([]model.CommunityMember, error)
	ListByUser(ctx context.Context, userID string) ([]model.CommunityMember, error)
	DeleteByCommunity(ctx context.Context, communityID string) (int64, error)
	DeleteOrphans(ctx context.Context) (int64, error)
}

type MessageStore interface {
	Create(ctx context.Context, m *model.Message) error
	FindByID(ctx context.Context, id string) (*model.Message, error)
	UpdateText(ctx context.Context, id, text string) (*model.Message, error)
	Delete(ctx context.Context, id string) (bool, error)
	// ListByCommunity 按 created_at 倒序
	ListByCommunity(ctx context.Context, communityID string, limit int) ([]model.Message, error)
	// CountSince 统计 created_at >= since 的消息数
	CountSince(ctx context.Context, senderID, communityID string, since time.Time) (int64, error)
	DeleteByCommunity(ctx context.Context, communityID string) (int64, error)
	DeleteOrphans(ctx context.Context) (int64, error)
}

type OutboxStore interface {
	Insert(ctx context.Context, ob *model.ChatOutbox) error
	// Pending 待投递或可重试的事件，按创建顺序
	Pending(ctx context.Context, batchSize, maxRetry int) ([]model.ChatOutbox, error)
	MarkSent(ctx context.Context, id string) error
	MarkRetry(ctx context.Context, id string) error
}

// TxFunc 在同一事务内执行 fn，fn 返回错误时整体回滚
type TxFunc func(ctx context.Context, fn func(tx Stores) error) error

// Stores 一个后端的全部集合
type Stores struct {
	Users       UserStore
	Communities CommunityStore
	Members     MemberStore
	Messages    MessageStore
	Outbox      OutboxStore
	// Tx 为 nil 表示后端不支持多文档事务，由 OrphanSweeper 兜底
	Tx TxFunc
}
