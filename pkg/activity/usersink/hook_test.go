package usersink

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-push-tracking/pkg/activity"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []types.ActivityRecord
}

func (s *recordingSink) Log(_ context.Context, rec types.ActivityRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func TestHookNotifyMapsFields(t *testing.T) {
	sink := &recordingSink{}
	hook := Hook{Sink: sink}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	userID := uuid.New()

	hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbPushOpened,
		UserID:     userID.String(),
		ObjectType: activity.ObjectNotification,
		ObjectID:   "c1",
		Channel:    activity.ChannelPush,
		EventType:  "push_opened",
		Metadata:   map[string]any{"action": "browser"},
		OccurredAt: now,
	})

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	rec := sink.records[0]
	if rec.Verb != activity.VerbPushOpened || rec.ObjectID != "c1" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.UserID != userID {
		t.Fatalf("expected user id %s, got %s", userID, rec.UserID)
	}
	if rec.ActorID != uuid.Nil {
		t.Fatalf("expected nil actor for empty input, got %s", rec.ActorID)
	}
	if rec.Data["event_type"] != "push_opened" || rec.Data["action"] != "browser" {
		t.Fatalf("unexpected data %v", rec.Data)
	}
	if !rec.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred at %s, got %s", now, rec.OccurredAt)
	}
}

func TestHookWithoutSinkIsNoop(t *testing.T) {
	Hook{}.Notify(context.Background(), activity.Event{Verb: activity.VerbPushTokenRegistered})
}
