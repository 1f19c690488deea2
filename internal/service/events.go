package service

import (
	"context"
	"encoding/json"

	"Chat_Community/internal/logging"
	"Chat_Community/internal/model"
	"Chat_Community/internal/repository"
)

// EventRecorder 写 outbox 表，失败只记日志，不影响主流程
type EventRecorder struct {
	store repository.OutboxStore
}

func NewEventRecorder(store repository.OutboxStore) *EventRecorder {
	return &EventRecorder{store: store}
}

func (r *EventRecorder) Record(ctx context.Context, eventType, aggregateID, communityID string, payload any) {
	if r == nil || r.store == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		logging.Warn("outbox payload marshal failed", "event_type", eventType, "aggregate_id", aggregateID, "error", err)
		return
	}
	ob := &model.ChatOutbox{
		EventType:   eventType,
		AggregateID: aggregateID,
		CommunityID: communityID,
		Payload:     string(b),
		Status:      model.OutboxPending,
	}
	if err := r.store.Insert(ctx, ob); err != nil {
		logging.Warn("outbox insert failed", "event_type", eventType, "aggregate_id", aggregateID, "error", err)
	}
}
