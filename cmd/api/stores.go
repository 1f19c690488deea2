package main

import (
	"context"
	"fmt"
	"time"

	"Chat_Community/internal/config"
	"Chat_Community/internal/repository"
	"Chat_Community/internal/repository/mongo"
	"Chat_Community/internal/repository/mysql"
)

// openStores 按 STORE_DRIVER 打开存储，migrate=true 时同时建表/建索引
func openStores(ctx context.Context, cfg config.App, migrate bool) (repository.Stores, func() error, error) {
	if cfg.StoreDriver == "mongo" {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return repository.Stores{}, nil, err
		}
		db := client.Database(cfg.MongoDB)
		if migrate {
			if err := mongo.EnsureIndexes(ctx, db); err != nil {
				_ = client.Disconnect(context.Background())
				return repository.Stores{}, nil, err
			}
		}
		closeFn := func() error { return client.Disconnect(context.Background()) }
		return mongo.NewStores(db), closeFn, nil
	}

	db, err := mysql.Open(cfg.StoreDriver, cfg.DBDSN)
	if err != nil {
		return repository.Stores{}, nil, fmt.Errorf("open %s: %w", cfg.StoreDriver, err)
	}
	if migrate {
		if err := mysql.Migrate(db); err != nil {
			return repository.Stores{}, nil, err
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return repository.Stores{}, nil, err
	}
	return mysql.NewStores(db), sqlDB.Close, nil
}
