package tracking

import (
	"context"
	"errors"
	"fmt"
)

// EventType names a tracked event.
type EventType string

const (
	EventPushOpened        EventType = "push_opened"
	EventRegisterPushToken EventType = "register_push_token"
)

// Tracker is the transport consumed by the push manager. Implementations
// should return quickly; wrap slow transports with Async.
type Tracker interface {
	Track(ctx context.Context, eventType EventType, properties map[string]any) error
}

// TrackerFunc adapts a function to Tracker.
type TrackerFunc func(ctx context.Context, eventType EventType, properties map[string]any) error

func (f TrackerFunc) Track(ctx context.Context, eventType EventType, properties map[string]any) error {
	return f(ctx, eventType, properties)
}

// Error wraps a failure reported by a Tracker.
type Error struct {
	EventType EventType
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("tracking: %s: %v", e.EventType, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns err as a *Error unless it already is one.
func Wrap(eventType EventType, err error) error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return err
	}
	return &Error{EventType: eventType, Err: err}
}

// Multi fans a call out to every tracker and joins their failures.
type Multi []Tracker

func (m Multi) Track(ctx context.Context, eventType EventType, properties map[string]any) error {
	var errs []error
	for _, t := range m {
		if t == nil {
			continue
		}
		if err := t.Track(ctx, eventType, cloneProperties(properties)); err != nil {
			errs = append(errs, err)
		}
	}
	return Wrap(eventType, errors.Join(errs...))
}

// Nop discards every event.
type Nop struct{}

func (Nop) Track(context.Context, EventType, map[string]any) error { return nil }

func cloneProperties(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
