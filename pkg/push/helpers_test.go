package push

import (
	"context"
	"sync"

	"github.com/goliatone/go-push-tracking/pkg/domain"
	"github.com/goliatone/go-push-tracking/pkg/tracking"
)

type trackedCall struct {
	eventType  tracking.EventType
	properties map[string]any
}

type recordingTracker struct {
	mu    sync.Mutex
	calls []trackedCall
	err   error
}

func (r *recordingTracker) Track(_ context.Context, eventType tracking.EventType, properties map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, trackedCall{eventType: eventType, properties: properties})
	return r.err
}

func (r *recordingTracker) snapshot() []trackedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]trackedCall(nil), r.calls...)
}

type delegateCall struct {
	kind  domain.ActionKind
	value *string
	extra map[string]any
}

type recordingDelegate struct {
	mu    sync.Mutex
	calls []delegateCall
}

func (d *recordingDelegate) PushNotificationOpened(_ context.Context, kind domain.ActionKind, value *string, extra map[string]any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, delegateCall{kind: kind, value: value, extra: extra})
}

func (d *recordingDelegate) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

// counting returns a table implementing name with a handler that counts calls.
func counting(name Callback) (*CallbackTable, *int) {
	var mu sync.Mutex
	count := 0
	table := NewCallbackTable()
	table.Implement(name, func(_ context.Context, call Call) {
		mu.Lock()
		count++
		mu.Unlock()
		call.Done()
	})
	return table, &count
}

func newTestHost(app Target) (*StaticHost, *Slot) {
	slot := NewSlot()
	return &StaticHost{
		App:    app,
		Center: slot,
		Opener: func(context.Context, string) error { return nil },
	}, slot
}

func strPtr(s string) *string { return &s }
