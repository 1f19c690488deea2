package service

import (
	"context"
	"testing"

	"Chat_Community/internal/model"
	"Chat_Community/internal/pkg"
	"Chat_Community/internal/repository"
	"Chat_Community/internal/repository/mysql"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db          *gorm.DB
	stores      repository.Stores
	owners      *pkg.OwnerCache
	members     *MembershipService
	chat        *ChatService
	communities *CommunityService
	users       *UserService
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := mysql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, mysql.Migrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	stores := mysql.NewStores(db)
	owners := pkg.NewOwnerCache(0)
	events := NewEventRecorder(stores.Outbox)
	return &testEnv{
		db:          db,
		stores:      stores,
		owners:      owners,
		members:     NewMembershipService(stores.Members),
		chat:        NewChatService(stores, owners, events, nil),
		communities: NewCommunityService(stores, owners, events, nil),
		users:       NewUserService(stores.Users),
	}
}

// mkUser 直接写库，跳过 bcrypt
func (e *testEnv) mkUser(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: name + "@example.com", Password: "x", Role: model.RoleUser}
	require.NoError(t, e.stores.Users.Create(context.Background(), u))
	return u
}

func (e *testEnv) mkCommunity(t *testing.T, owner *model.User, name string) *model.Community {
	t.Helper()
	c, err := e.communities.CreateCommunity(context.Background(), CreateCommunityInput{Name: name, OwnerID: owner.ID})
	require.NoError(t, err)
	return c
}

func (e *testEnv) join(t *testing.T, u *model.User, c *model.Community) {
	t.Helper()
	_, err := e.members.Join(context.Background(), u.ID, c.ID, "")
	require.NoError(t, err)
}
