package activity

import (
	"context"

	"github.com/goliatone/go-push-tracking/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-push-tracking/pkg/interfaces/logger"
)

// BroadcastHook republishes activity events on a real-time broadcaster.
type BroadcastHook struct {
	Broadcaster broadcaster.Broadcaster
	Logger      logger.Logger
}

var _ Hook = BroadcastHook{}

func (h BroadcastHook) Notify(ctx context.Context, evt Event) {
	if h.Broadcaster == nil {
		return
	}
	payload := CloneMetadata(evt.Metadata)
	if payload == nil {
		payload = make(map[string]any)
	}
	payload["verb"] = evt.Verb
	payload["object_id"] = evt.ObjectID
	payload["occurred_at"] = evt.OccurredAt

	err := h.Broadcaster.Broadcast(ctx, broadcaster.Event{Topic: topicFor(evt.Verb), Payload: payload})
	if err != nil {
		logger.OrNop(h.Logger).Warn("activity: broadcast failed", logger.Err(err), logger.F("verb", evt.Verb))
	}
}

func topicFor(verb string) string {
	switch verb {
	case VerbPushOpened:
		return broadcaster.TopicPushOpened
	case VerbPushTokenRegistered:
		return broadcaster.TopicTokenRegistered
	default:
		return verb
	}
}
