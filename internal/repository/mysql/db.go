package mysql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"Chat_Community/internal/model"
	"Chat_Community/internal/repository"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 按驱动名打开 gorm 连接；mysql 为默认，postgres 与 sqlite 共用同一套仓储
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	return db, nil
}

// Migrate 建表与唯一索引
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.CommunityMember{},
		&model.Message{},
		&model.ChatOutbox{},
	)
}

func NewStores(db *gorm.DB) repository.Stores {
	return repository.Stores{
		Users:       &UserRepository{DB: db},
		Communities: &CommunityRepository{DB: db},
		Members:     &CommunityMemberRepository{DB: db},
		Messages:    &MessageRepository{DB: db},
		Outbox:      &OutboxRepository{DB: db},
		Tx: func(ctx context.Context, fn func(tx repository.Stores) error) error {
			return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				return fn(NewStores(tx))
			})
		},
	}
}

// translate 把 gorm/驱动错误映射为仓储错误
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrDuplicate
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value") {
		return repository.ErrDuplicate
	}
	return err
}
