package service

import (
	"context"
	"errors"
	"testing"

	"Chat_Community/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRelayer_DrainOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.mkUser(t, "owner")
	c := env.mkCommunity(t, owner, "gophers")
	_, err := env.chat.SendMessage(ctx, owner.ID, c.ID, "relay me")
	require.NoError(t, err)

	var got []string
	sender := func(_ context.Context, ob *model.ChatOutbox) error {
		got = append(got, ob.EventType)
		return nil
	}
	relayer := NewOutboxRelayer(env.stores.Outbox, sender, 0, nil)

	assert.Equal(t, 2, relayer.drainOnce(ctx))
	assert.Equal(t, []string{model.EventCommunityCreated, model.EventMessageSent}, got)

	assert.Zero(t, relayer.drainOnce(ctx))
	assert.Len(t, got, 2)
}

func TestOutboxRelayer_RetriesFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	events := NewEventRecorder(env.stores.Outbox)
	events.Record(ctx, model.EventMessageDeleted, "agg", "comm", map[string]string{"id": "agg"})

	calls := 0
	failing := func(context.Context, *model.ChatOutbox) error {
		calls++
		return errors.New("broker unavailable")
	}
	relayer := NewOutboxRelayer(env.stores.Outbox, failing, 0, nil)
	relayer.maxRetry = 2

	assert.Zero(t, relayer.drainOnce(ctx))
	assert.Zero(t, relayer.drainOnce(ctx))
	// 超过重试上限后不再投递
	assert.Zero(t, relayer.drainOnce(ctx))
	assert.Equal(t, 2, calls)

	var row model.ChatOutbox
	require.NoError(t, env.db.First(&row).Error)
	assert.Equal(t, model.OutboxFailed, row.Status)
	assert.Equal(t, 2, row.Retry)
	assert.JSONEq(t, `{"id":"agg"}`, row.Payload)
}
