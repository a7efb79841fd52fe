package push

import (
	"context"
	"errors"
	"sync"
)

// Callback names a host callback that can be intercepted.
type Callback string

const (
	CallbackRegisterToken         Callback = "register_token"
	CallbackReceiveWithCompletion Callback = "receive_with_completion"
	CallbackReceive               Callback = "receive"
	CallbackDidReceiveResponse    Callback = "did_receive_response"
)

// Call carries the arguments of a host callback invocation.
type Call struct {
	Payload          map[string]any
	ActionIdentifier string
	Token            []byte
	Complete         func()
}

// Done signals completion to the host when it asked for it.
func (c Call) Done() {
	if c.Complete != nil {
		c.Complete()
	}
}

// Handler implements a callback.
type Handler func(ctx context.Context, call Call)

type entry struct {
	fn Handler
}

// CallbackTable is the per-object dispatch table hosts register their
// callbacks in. Platform glue routes calls through Invoke so interceptions
// installed by a Registry take effect.
type CallbackTable struct {
	mu      sync.RWMutex
	entries map[Callback]*entry
}

// NewCallbackTable returns an empty table.
func NewCallbackTable() *CallbackTable {
	return &CallbackTable{entries: make(map[Callback]*entry)}
}

// Callbacks lets a bare table be used as a Target.
func (t *CallbackTable) Callbacks() *CallbackTable { return t }

// Implement registers fn under name, replacing any previous implementation.
// A nil fn removes the callback.
func (t *CallbackTable) Implement(name Callback, fn Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if fn == nil {
		delete(t.entries, name)
		return
	}
	t.entries[name] = &entry{fn: fn}
}

// Implements reports whether name has an implementation.
func (t *CallbackTable) Implements(name Callback) bool {
	if t == nil {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[name]
	return ok
}

// Invoke dispatches call to the current implementation of name. It reports
// false when nothing is registered.
func (t *CallbackTable) Invoke(ctx context.Context, name Callback, call Call) bool {
	e, ok := t.lookup(name)
	if !ok {
		return false
	}
	e.fn(ctx, call)
	return true
}

func (t *CallbackTable) lookup(name Callback) (*entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[name]
	return e, ok
}

func (t *CallbackTable) set(name Callback, e *entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[name] = e
}

// restore puts prev back only while the slot still holds current, so an
// implementation the host registered after installation is left alone.
func (t *CallbackTable) restore(name Callback, current, prev *entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entries[name] != current {
		return
	}
	if prev == nil {
		delete(t.entries, name)
		return
	}
	t.entries[name] = prev
}

// Target is any object exposing a callback table. Two targets are the same
// when they share a table.
type Target interface {
	Callbacks() *CallbackTable
}

func isNil(t Target) bool {
	return t == nil || t.Callbacks() == nil
}

func sameTarget(a, b Target) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}
	return a.Callbacks() == b.Callbacks()
}

// DelegateSlot is the host's single notification-delegate slot.
type DelegateSlot interface {
	Delegate() Target
	SetDelegate(t Target)
	// Observe registers fn to run synchronously after every assignment.
	Observe(fn func(old, new Target)) (cancel func())
}

// Slot is the default DelegateSlot.
type Slot struct {
	mu        sync.Mutex
	current   Target
	observers map[int]func(old, new Target)
	nextID    int
}

var _ DelegateSlot = (*Slot)(nil)

// NewSlot returns an empty slot.
func NewSlot() *Slot {
	return &Slot{observers: make(map[int]func(old, new Target))}
}

func (s *Slot) Delegate() Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Slot) SetDelegate(t Target) {
	s.mu.Lock()
	old := s.current
	s.current = t
	observers := make([]func(old, new Target), 0, len(s.observers))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.observers[id]; ok {
			observers = append(observers, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(old, t)
	}
}

func (s *Slot) Observe(fn func(old, new Target)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// Host exposes the platform primitives the manager depends on.
type Host interface {
	// AppDelegate returns the application's top-level delegate, or nil.
	AppDelegate() Target
	NotificationCenter() DelegateSlot
	OpenURL(ctx context.Context, rawURL string) error
}

// ErrNoOpener is returned by StaticHost when no URL opener is configured.
var ErrNoOpener = errors.New("push: host has no url opener")

// StaticHost assembles a Host from fixed parts.
type StaticHost struct {
	App    Target
	Center DelegateSlot
	Opener func(ctx context.Context, rawURL string) error
}

var _ Host = (*StaticHost)(nil)

func (h *StaticHost) AppDelegate() Target { return h.App }

func (h *StaticHost) NotificationCenter() DelegateSlot { return h.Center }

func (h *StaticHost) OpenURL(ctx context.Context, rawURL string) error {
	if h.Opener == nil {
		return ErrNoOpener
	}
	return h.Opener(ctx, rawURL)
}
