// Package mongo 文档存储后端，集合与 gorm 表一一对应
package mongo

import (
	"context"
	"errors"
	"fmt"

	"Chat_Community/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	collUsers       = "users"
	collCommunities = "communities"
	collMembers     = "community_members"
	collMessages    = "messages"
	collOutbox      = "chat_outbox"
)

// Connect 建立连接并 Ping 一次
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// EnsureIndexes 创建唯一约束与查询索引，重复执行无副作用
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	collections := map[string][]mongo.IndexModel{
		collUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collCommunities: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		},
		collMembers: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "community_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uk_community_user"),
			},
			{Keys: bson.D{{Key: "community_id", Value: 1}}},
		},
		collMessages: {
			{Keys: bson.D{{Key: "community_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "community_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		collOutbox: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		},
	}
	for name, indexes := range collections {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("mongo: failed to create indexes for %s: %w", name, err)
		}
	}
	return nil
}

// NewStores 不提供 Tx：单机 mongod 不支持多文档事务
func NewStores(db *mongo.Database) repository.Stores {
	return repository.Stores{
		Users:       &UserStore{coll: db.Collection(collUsers)},
		Communities: &CommunityStore{coll: db.Collection(collCommunities)},
		Members:     &MemberStore{coll: db.Collection(collMembers), communities: db.Collection(collCommunities)},
		Messages:    &MessageStore{coll: db.Collection(collMessages), communities: db.Collection(collCommunities)},
		Outbox:      &OutboxStore{coll: db.Collection(collOutbox)},
	}
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

// findOneAndSet $set 部分更新并返回更新后的文档
func findOneAndSet[T any](ctx context.Context, coll *mongo.Collection, id string, fields map[string]any) (*T, error) {
	var out T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&out)
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...options.Lister[options.FindOptions]) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func deleteOne(ctx context.Context, coll *mongo.Collection, filter bson.M) (bool, error) {
	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, translate(err)
	}
	return res.DeletedCount == 1, nil
}

// deleteOrphans 删除 community_id 指向已不存在社区的文档
func deleteOrphans(ctx context.Context, coll, communities *mongo.Collection) (int64, error) {
	var ids []string
	if err := coll.Distinct(ctx, "community_id", bson.M{}).Decode(&ids); err != nil {
		return 0, translate(err)
	}
	var total int64
	for _, cid := range ids {
		n, err := communities.CountDocuments(ctx, bson.M{"_id": cid})
		if err != nil {
			return total, translate(err)
		}
		if n > 0 {
			continue
		}
		res, err := coll.DeleteMany(ctx, bson.M{"community_id": cid})
		if err != nil {
			return total, translate(err)
		}
		total += res.DeletedCount
	}
	return total, nil
}
