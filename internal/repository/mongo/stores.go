package mongo

import (
	"context"
	"time"

	"Chat_Community/internal/model"
	"Chat_Community/internal/pkg"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type UserStore struct {
	coll *mongo.Collection
}

func (s *UserStore) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = pkg.NewID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.coll.InsertOne(ctx, u)
	return translate(err)
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](ctx, s.coll, bson.M{"_id": id})
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, s.coll, bson.M{"email": email})
}

func (s *UserStore) Update(ctx context.Context, id string, fields map[string]any) (*model.User, error) {
	return findOneAndSet[model.User](ctx, s.coll, id, fields)
}

func (s *UserStore) Delete(ctx context.Context, id string) (bool, error) {
	return deleteOne(ctx, s.coll, bson.M{"_id": id})
}

func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	return findAll[model.User](ctx, s.coll, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

type CommunityStore struct {
	coll *mongo.Collection
}

func (s *CommunityStore) Create(ctx context.Context, c *model.Community) error {
	if c.ID == "" {
		c.ID = pkg.NewID()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	_, err := s.coll.InsertOne(ctx, c)
	return translate(err)
}

func (s *CommunityStore) FindByID(ctx context.Context, id string) (*model.Community, error) {
	return findOne[model.Community](ctx, s.coll, bson.M{"_id": id})
}

func (s *CommunityStore) Update(ctx context.Context, id string, fields map[string]any) (*model.Community, error) {
	return findOneAndSet[model.Community](ctx, s.coll, id, fields)
}

func (s *CommunityStore) Delete(ctx context.Context, id string) (bool, error) {
	return deleteOne(ctx, s.coll, bson.M{"_id": id})
}

func (s *CommunityStore) ListByOwner(ctx context.Context, ownerID string) ([]model.Community, error) {
	return findAll[model.Community](ctx, s.coll, bson.M{"owner_id": ownerID})
}

func (s *CommunityStore) List(ctx context.Context, offset, limit int) ([]model.Community, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	return findAll[model.Community](ctx, s.coll, bson.M{}, opts)
}

type MemberStore struct {
	coll        *mongo.Collection
	communities *mongo.Collection
}

func (s *MemberStore) Join(ctx context.Context, m *model.CommunityMember) error {
	if m.ID == "" {
		m.ID = pkg.NewID()
	}
	_, err := s.coll.InsertOne(ctx, m)
	return translate(err)
}

func (s *MemberStore) Leave(ctx context.Context, userID, communityID string) (bool, error) {
	return deleteOne(ctx, s.coll, bson.M{"user_id": userID, "community_id": communityID})
}

func (s *MemberStore) IsMember(ctx context.Context, userID, communityID string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"user_id": userID, "community_id": communityID})
	return n > 0, translate(err)
}

func (s *MemberStore) ListByCommunity(ctx context.Context, communityID string) ([]model.CommunityMember, error) {
	return findAll[model.CommunityMember](ctx, s.coll, bson.M{"community_id": communityID})
}

func (s *MemberStore) ListByUser(ctx context.Context, userID string) ([]model.CommunityMember, error) {
	return findAll[model.CommunityMember](ctx, s.coll, bson.M{"user_id": userID})
}

func (s *MemberStore) DeleteByCommunity(ctx context.Context, communityID string) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"community_id": communityID})
	if err != nil {
		return 0, translate(err)
	}
	return res.DeletedCount, nil
}

func (s *MemberStore) DeleteOrphans(ctx context.Context) (int64, error) {
	return deleteOrphans(ctx, s.coll, s.communities)
}

type MessageStore struct {
	coll        *mongo.Collection
	communities *mongo.Collection
}

func (s *MessageStore) Create(ctx context.Context, m *model.Message) error {
	if m.ID == "" {
		m.ID = pkg.NewID()
	}
	_, err := s.coll.InsertOne(ctx, m)
	return translate(err)
}

func (s *MessageStore) FindByID(ctx context.Context, id string) (*model.Message, error) {
	return findOne[model.Message](ctx, s.coll, bson.M{"_id": id})
}

func (s *MessageStore) UpdateText(ctx context.Context, id, text string) (*model.Message, error) {
	return findOneAndSet[model.Message](ctx, s.coll, id, map[string]any{"text": text})
}

func (s *MessageStore) Delete(ctx context.Context, id string) (bool, error) {
	return deleteOne(ctx, s.coll, bson.M{"_id": id})
}

func (s *MessageStore) ListByCommunity(ctx context.Context, communityID string, limit int) ([]model.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	return findAll[model.Message](ctx, s.coll, bson.M{"community_id": communityID}, opts)
}

func (s *MessageStore) CountSince(ctx context.Context, senderID, communityID string, since time.Time) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{
		"sender_id":    senderID,
		"community_id": communityID,
		"created_at":   bson.M{"$gte": since.UTC()},
	})
	return n, translate(err)
}

func (s *MessageStore) DeleteByCommunity(ctx context.Context, communityID string) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"community_id": communityID})
	if err != nil {
		return 0, translate(err)
	}
	return res.DeletedCount, nil
}

func (s *MessageStore) DeleteOrphans(ctx context.Context) (int64, error) {
	return deleteOrphans(ctx, s.coll, s.communities)
}

type OutboxStore struct {
	coll *mongo.Collection
}

func (s *OutboxStore) Insert(ctx context.Context, ob *model.ChatOutbox) error {
	if ob.ID == "" {
		ob.ID = pkg.NewID()
	}
	now := time.Now().UTC()
	ob.CreatedAt, ob.UpdatedAt = now, now
	_, err := s.coll.InsertOne(ctx, ob)
	return translate(err)
}

func (s *OutboxStore) Pending(ctx context.Context, batchSize, maxRetry int) ([]model.ChatOutbox, error) {
	filter := bson.M{
		"status": bson.M{"$in": []int8{model.OutboxPending, model.OutboxFailed}},
		"retry":  bson.M{"$lt": maxRetry},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(int64(batchSize))
	return findAll[model.ChatOutbox](ctx, s.coll, filter, opts)
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": model.OutboxSent, "updated_at": time.Now().UTC()}})
	return translate(err)
}

func (s *OutboxStore) MarkRetry(ctx context.Context, id string) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": model.OutboxFailed, "updated_at": time.Now().UTC()},
		"$inc": bson.M{"retry": 1},
	})
	return translate(err)
}
