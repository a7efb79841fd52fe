package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/goliatone/go-push-tracking/pkg/push"
)

// Receiver modes for the simulated app delegate.
const (
	receiverNone       = "none"
	receiverCompletion = "completion"
	receiverLegacy     = "legacy"
)

// simHost stands in for a mobile app: an app delegate callback table, a
// notification delegate slot and a URL opener that records what it opened.
type simHost struct {
	*push.StaticHost
	app *push.CallbackTable

	mu     sync.Mutex
	opened []string
}

func newSimHost(receiver string) (*simHost, error) {
	app := push.NewCallbackTable()
	app.Implement(push.CallbackRegisterToken, func(_ context.Context, call push.Call) { call.Done() })
	switch receiver {
	case receiverNone, "":
	case receiverCompletion:
		app.Implement(push.CallbackReceiveWithCompletion, func(_ context.Context, call push.Call) { call.Done() })
	case receiverLegacy:
		app.Implement(push.CallbackReceive, func(_ context.Context, call push.Call) { call.Done() })
	default:
		return nil, fmt.Errorf("pushtrack: unknown receiver %q", receiver)
	}

	h := &simHost{app: app}
	h.StaticHost = &push.StaticHost{
		App:    app,
		Center: push.NewSlot(),
		Opener: h.open,
	}
	return h, nil
}

func (h *simHost) open(_ context.Context, rawURL string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.opened = append(h.opened, rawURL)
	return nil
}

// flushOpened writes one "open <url>" line per URL opened so far.
func (h *simHost) flushOpened(out io.Writer) error {
	h.mu.Lock()
	opened := h.opened
	h.opened = nil
	h.mu.Unlock()
	for _, rawURL := range opened {
		if _, err := fmt.Fprintf(out, "open %s\n", rawURL); err != nil {
			return err
		}
	}
	return nil
}

// deliverOpen routes a notification open the way the platform would: to the
// notification delegate when one is set, else to the app delegate.
func (h *simHost) deliverOpen(ctx context.Context, call push.Call) bool {
	if delegate := h.Center.Delegate(); delegate != nil {
		return delegate.Callbacks().Invoke(ctx, push.CallbackDidReceiveResponse, call)
	}
	if h.app.Invoke(ctx, push.CallbackReceiveWithCompletion, call) {
		return true
	}
	return h.app.Invoke(ctx, push.CallbackReceive, call)
}

func (h *simHost) deliverToken(ctx context.Context, token []byte) bool {
	return h.app.Invoke(ctx, push.CallbackRegisterToken, push.Call{Token: token})
}
