package push

import (
	"context"
	"testing"
)

func TestSelectorPrefersSlotDelegate(t *testing.T) {
	app, _ := counting(CallbackReceiveWithCompletion)
	host, slot := newTestHost(app)
	delegate := NewCallbackTable()
	slot.SetDelegate(delegate)

	sel := Selector{}.Select(host)
	if sel.Source != SourceSlotDelegate || sel.Target != Target(delegate) || sel.Callback != CallbackDidReceiveResponse {
		t.Fatalf("unexpected selection %+v", sel)
	}
}

func TestSelectorIgnoresFallbackInSlot(t *testing.T) {
	app, _ := counting(CallbackReceiveWithCompletion)
	host, slot := newTestHost(app)
	slot.SetDelegate(NewFallbackReceiver())

	sel := Selector{}.Select(host)
	if sel.Source != SourceAppDelegateWithCompletion || sel.Callback != CallbackReceiveWithCompletion {
		t.Fatalf("unexpected selection %+v", sel)
	}
}

func TestSelectorPrefersCompletionOverDeprecatedReceive(t *testing.T) {
	app, _ := counting(CallbackReceiveWithCompletion)
	app.Implement(CallbackReceive, func(context.Context, Call) {})
	host, _ := newTestHost(app)

	sel := Selector{}.Select(host)
	if sel.Source != SourceAppDelegateWithCompletion || sel.Target != Target(app) || sel.Callback != CallbackReceiveWithCompletion {
		t.Fatalf("unexpected selection %+v", sel)
	}
}

func TestSelectorFallsBackToDeprecatedReceive(t *testing.T) {
	app, _ := counting(CallbackReceive)
	host, _ := newTestHost(app)

	sel := Selector{}.Select(host)
	if sel.Source != SourceAppDelegate || sel.Target != Target(app) || sel.Callback != CallbackReceive {
		t.Fatalf("unexpected selection %+v", sel)
	}
}

func TestSelectorUsesFallbackReceiver(t *testing.T) {
	host, _ := newTestHost(NewCallbackTable())
	sel := Selector{}.Select(host)
	if sel.Source != SourceFallback || sel.Target != nil || sel.Callback != CallbackDidReceiveResponse {
		t.Fatalf("unexpected selection %+v", sel)
	}

	bare, _ := newTestHost(nil)
	if got := (Selector{}).Select(bare).Source; got != SourceFallback {
		t.Fatalf("expected fallback without app delegate, got %s", got)
	}
}
