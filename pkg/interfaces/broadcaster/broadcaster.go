package broadcaster

import "context"

// Topics published for push activity.
const (
	TopicPushOpened      = "push.opened"
	TopicTokenRegistered = "push.token_registered"
)

// Event carries a push activity payload destined for real-time transports.
type Event struct {
	Topic   string
	Payload map[string]any
}

// Broadcaster pushes events to WebSocket/SSE/webhook transports.
type Broadcaster interface {
	Broadcast(ctx context.Context, event Event) error
}

// Nop broadcaster discards events.
type Nop struct{}

var _ Broadcaster = (*Nop)(nil)

func (n *Nop) Broadcast(context.Context, Event) error { return nil }

// Func adapts a function to the Broadcaster interface.
type Func func(ctx context.Context, event Event) error

func (f Func) Broadcast(ctx context.Context, event Event) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

// Fanout multicasts to every target and reports the first failure. Every
// target is called even after an error.
type Fanout []Broadcaster

func (f Fanout) Broadcast(ctx context.Context, event Event) error {
	var firstErr error
	for _, target := range f {
		if target == nil {
			continue
		}
		if err := target.Broadcast(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
