package tracking

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/goliatone/go-push-tracking/pkg/activity"
	"github.com/goliatone/go-push-tracking/pkg/redact"
)

// SubjectFunc resolves the user and tenant an event belongs to.
type SubjectFunc func(ctx context.Context) (userID, tenantID string)

// HookTracker turns tracked events into activity events.
type HookTracker struct {
	Hooks   activity.Hooks
	Subject SubjectFunc
}

func (h HookTracker) Track(ctx context.Context, eventType EventType, properties map[string]any) error {
	if len(h.Hooks) == 0 {
		return nil
	}
	evt := activity.Event{
		Channel:   activity.ChannelPush,
		EventType: string(eventType),
		Metadata:  activity.CloneMetadata(properties),
	}
	if h.Subject != nil {
		evt.UserID, evt.TenantID = h.Subject(ctx)
	}

	switch eventType {
	case EventPushOpened:
		evt.Verb = activity.VerbPushOpened
		evt.ObjectType = activity.ObjectNotification
		evt.ObjectID = stringProperty(properties, "campaign_id")
	case EventRegisterPushToken:
		evt.Verb = activity.VerbPushTokenRegistered
		evt.ObjectType = activity.ObjectDeviceToken
		token := stringProperty(properties, "token")
		if raw, err := hex.DecodeString(token); err == nil {
			evt.ObjectID = redact.Fingerprint(raw)
		}
		if evt.Metadata != nil {
			evt.Metadata["token"] = redact.Token(token)
		}
	default:
		evt.Verb = "push." + string(eventType)
	}

	h.Hooks.Notify(ctx, evt)
	return nil
}

func stringProperty(props map[string]any, key string) string {
	raw, ok := props[key]
	if !ok || raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprint(raw)
}
