package push

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/goliatone/go-push-tracking/pkg/domain"
	"github.com/goliatone/go-push-tracking/pkg/tracking"
)

func newTestManager(t *testing.T, host Host, tracker tracking.Tracker) (*Manager, *recordingDelegate) {
	t.Helper()
	delegate := &recordingDelegate{}
	m, err := New(Dependencies{Host: host, Tracker: tracker, Delegate: delegate})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	m.router.dispatch = func(fn func()) { fn() }
	return m, delegate
}

func notificationRecords(m *Manager) []Record {
	return m.Registry().Records(NameNotificationOpened)
}

func TestManagerRequiresHostAndTracker(t *testing.T) {
	if _, err := New(Dependencies{Tracker: tracking.Nop{}}); !errors.Is(err, ErrMissingHost) {
		t.Fatalf("expected ErrMissingHost, got %v", err)
	}
	host, _ := newTestHost(nil)
	if _, err := New(Dependencies{Host: host}); !errors.Is(err, ErrMissingTracker) {
		t.Fatalf("expected ErrMissingTracker, got %v", err)
	}
}

func TestManagerLifecycleWithAppDelegate(t *testing.T) {
	app, receives := counting(CallbackReceiveWithCompletion)
	host, _ := newTestHost(app)
	tracker := &recordingTracker{}
	m, delegate := newTestManager(t, host, tracker)

	if m.State() != StateUninitialized {
		t.Fatalf("expected uninitialized, got %s", m.State())
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if m.State() != StateActive {
		t.Fatalf("expected active, got %s", m.State())
	}
	if err := m.Start(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on second start, got %v", err)
	}
	if m.Registry().Len() != 2 {
		t.Fatalf("expected token and notification records, got %d", m.Registry().Len())
	}

	completed := false
	app.Invoke(context.Background(), CallbackReceiveWithCompletion, Call{
		Payload:          map[string]any{"attributes": map[string]any{"campaign_id": "c1"}},
		ActionIdentifier: "OPEN_APP",
		Complete:         func() { completed = true },
	})
	if *receives != 1 || !completed {
		t.Fatalf("expected host callback to run once and complete, got %d %v", *receives, completed)
	}
	calls := tracker.snapshot()
	if len(calls) != 1 || calls[0].eventType != tracking.EventPushOpened || calls[0].properties["campaign_id"] != "c1" {
		t.Fatalf("unexpected tracking calls %+v", calls)
	}
	if delegate.count() != 1 {
		t.Fatalf("expected one delegate notification, got %d", delegate.count())
	}

	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if m.State() != StateTornDown || m.Registry().Len() != 0 {
		t.Fatalf("expected torn down and empty registry, got %s %d", m.State(), m.Registry().Len())
	}
	if app.Implements(CallbackRegisterToken) {
		t.Fatalf("expected synthesized token callback removed")
	}
	app.Invoke(context.Background(), CallbackReceiveWithCompletion, Call{})
	if len(tracker.snapshot()) != 1 {
		t.Fatalf("expected no tracking after close")
	}
}

func TestManagerTokenCanonicalization(t *testing.T) {
	app, registrations := counting(CallbackRegisterToken)
	host, _ := newTestHost(app)
	tracker := &recordingTracker{}
	m, _ := newTestManager(t, host, tracker)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	app.Invoke(context.Background(), CallbackRegisterToken, Call{Token: []byte{0x01, 0xAB}})

	calls := tracker.snapshot()
	if len(calls) != 1 || calls[0].eventType != tracking.EventRegisterPushToken {
		t.Fatalf("unexpected tracking calls %+v", calls)
	}
	if calls[0].properties["token"] != "01ab" {
		t.Fatalf("expected 01ab, got %v", calls[0].properties["token"])
	}
	if *registrations != 1 {
		t.Fatalf("expected host token callback once, got %d", *registrations)
	}
}

func TestManagerInstallsFallbackWhenHostHasNoReceiver(t *testing.T) {
	host, slot := newTestHost(NewCallbackTable())
	m, _ := newTestManager(t, host, &recordingTracker{})
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	if !IsFallback(slot.Delegate()) {
		t.Fatalf("expected fallback receiver in slot")
	}
	recs := notificationRecords(m)
	if len(recs) != 1 || !sameTarget(recs[0].Target, slot.Delegate()) {
		t.Fatalf("expected fallback intercepted, got %+v", recs)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if slot.Delegate() != nil {
		t.Fatalf("expected fallback released on close")
	}
}

func TestManagerTrackingFailureStillNotifiesDelegate(t *testing.T) {
	host, _ := newTestHost(nil)
	tracker := &recordingTracker{err: errors.New("transport down")}
	m, delegate := newTestManager(t, host, tracker)

	action := m.HandlePushOpened(context.Background(), map[string]any{
		"attributes": map[string]any{"campaign_id": "c1"},
		"actions":    []any{map[string]any{"url": "https://example.com"}},
	}, "OPEN_BROWSER_0")

	if action.Kind != domain.ActionBrowser || action.ValueString() != "https://example.com" {
		t.Fatalf("unexpected action %+v", action)
	}
	if action.ExtraData["campaign_id"] != "c1" {
		t.Fatalf("expected attributes as extra data, got %v", action.ExtraData)
	}
	if delegate.count() != 1 {
		t.Fatalf("expected delegate notified despite tracking failure")
	}
}

func TestManagerRespectsFeatureToggles(t *testing.T) {
	app, _ := counting(CallbackReceive)
	host, _ := newTestHost(app)
	opened := 0
	host.Opener = func(context.Context, string) error {
		opened++
		return nil
	}
	tracker := &recordingTracker{}
	m, err := New(Dependencies{Host: host, Tracker: tracker, Features: &Features{}})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	m.router.dispatch = func(fn func()) { fn() }

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if m.Registry().Len() != 0 {
		t.Fatalf("expected no interceptions, got %d", m.Registry().Len())
	}

	m.HandleTokenRegistered(context.Background(), []byte{0x01})
	m.HandlePushOpened(context.Background(), map[string]any{
		"actions": []any{map[string]any{"url": "https://example.com"}},
	}, "OPEN_BROWSER_0")

	if opened != 0 {
		t.Fatalf("expected url opening disabled")
	}
	calls := tracker.snapshot()
	if len(calls) != 1 || calls[0].eventType != tracking.EventPushOpened {
		t.Fatalf("expected only push_opened tracked, got %+v", calls)
	}
}

func TestManagerConcurrentPushOpened(t *testing.T) {
	app, _ := counting(CallbackReceiveWithCompletion)
	host, _ := newTestHost(app)
	tracker := &recordingTracker{}
	m, delegate := newTestManager(t, host, tracker)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.Invoke(context.Background(), CallbackReceiveWithCompletion, Call{
				Payload:          map[string]any{"data": map[string]any{"campaign_id": "c1"}},
				ActionIdentifier: "OPEN_APP",
			})
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		other, _ := counting(CallbackReceive)
		noop := func(ctx context.Context, call Call, original Handler) { original(ctx, call) }
		for i := 0; i < 10; i++ {
			rec, err := m.Registry().Install("Other", other, CallbackReceive, noop, false)
			if err == nil {
				_ = m.Registry().Uninstall(rec)
			}
		}
	}()
	wg.Wait()

	if got := len(tracker.snapshot()); got != 2 {
		t.Fatalf("expected 2 tracking attempts, got %d", got)
	}
	if delegate.count() != 2 {
		t.Fatalf("expected 2 delegate notifications, got %d", delegate.count())
	}
	if got := len(notificationRecords(m)); got != 1 {
		t.Fatalf("expected exactly one notification record, got %d", got)
	}
	if m.Registry().Len() != 2 {
		t.Fatalf("expected registry untouched by concurrent cycles, got %d", m.Registry().Len())
	}
}
