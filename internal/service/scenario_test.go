package service

import (
	"context"
	"testing"

	"Chat_Community/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndToEnd_CommunityLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u1, err := env.users.CreateUser(ctx, CreateUserInput{Name: "User One", Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)

	c1, err := env.communities.CreateCommunity(ctx, CreateCommunityInput{Name: "C1 community", OwnerID: u1.ID})
	require.NoError(t, err)

	members, err := env.members.MembersOf(ctx, c1.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, model.MemberRoleOwner, members[0].Role)

	ok, err := env.members.IsMember(ctx, u1.ID, c1.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	msg, err := env.chat.SendMessage(ctx, u1.ID, c1.ID, "hi")
	require.NoError(t, err)
	list, err := env.chat.ListMessages(ctx, c1.ID, 0)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	assert.Equal(t, msg.ID, list[0].ID)

	deleted, err := env.communities.DeleteCommunity(ctx, c1.ID, u1.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	list, err = env.chat.ListMessages(ctx, c1.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
	ok, err = env.members.IsMember(ctx, u1.ID, c1.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
