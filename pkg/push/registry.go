package push

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Interception names used by the manager.
const (
	NameNotificationOpened    = "NotificationOpened"
	NamePushTokenRegistration = "PushTokenRegistration"
)

var (
	ErrInvalidTarget   = errors.New("push: target is required")
	ErrInvalidCallback = errors.New("push: callback name is required")
	ErrCallbackMissing = errors.New("push: target does not implement callback")
	ErrRecordNotFound  = errors.New("push: interception record not found")
)

// Interceptor replaces a callback. original is the implementation that was
// active at install time; calling it never re-enters the interceptor.
type Interceptor func(ctx context.Context, call Call, original Handler)

// Record describes one installed interception.
type Record struct {
	Name        string
	Target      Target
	Callback    Callback
	InstalledAt time.Time

	original    *entry
	replacement *entry
	synthesized bool
}

// Synthesized reports whether the original was a generated no-op.
func (r *Record) Synthesized() bool { return r.synthesized }

type recordKey struct {
	table    *CallbackTable
	callback Callback
}

// Registry tracks active interceptions. A single mutex serializes every
// install, uninstall and the delegate classification done by Monitor.
type Registry struct {
	mu      sync.Mutex
	records map[recordKey]*Record
	now     func() time.Time
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[recordKey]*Record),
		now:     time.Now,
	}
}

// Install redirects callback on target to replacement. Installing the same
// (target, callback) twice returns the existing record. When the target has
// no implementation, addIfMissing synthesizes a no-op original; otherwise
// ErrCallbackMissing is returned.
func (r *Registry) Install(name string, target Target, callback Callback, replacement Interceptor, addIfMissing bool) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.install(name, target, callback, replacement, addIfMissing)
}

func (r *Registry) install(name string, target Target, callback Callback, replacement Interceptor, addIfMissing bool) (*Record, error) {
	if isNil(target) {
		return nil, ErrInvalidTarget
	}
	if callback == "" || replacement == nil {
		return nil, ErrInvalidCallback
	}
	table := target.Callbacks()
	key := recordKey{table: table, callback: callback}
	if existing, ok := r.records[key]; ok {
		return existing, nil
	}

	original, ok := table.lookup(callback)
	synthesized := false
	if !ok {
		if !addIfMissing {
			return nil, ErrCallbackMissing
		}
		original = &entry{fn: func(_ context.Context, call Call) { call.Done() }}
		synthesized = true
	}

	next := original.fn
	wrapped := &entry{fn: func(ctx context.Context, call Call) {
		replacement(ctx, call, next)
	}}
	table.set(callback, wrapped)

	rec := &Record{
		Name:        name,
		Target:      target,
		Callback:    callback,
		InstalledAt: r.now(),
		original:    original,
		replacement: wrapped,
		synthesized: synthesized,
	}
	r.records[key] = rec
	return rec, nil
}

// Uninstall restores the call path that was active before rec was installed.
func (r *Registry) Uninstall(rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uninstall(rec)
}

func (r *Registry) uninstall(rec *Record) error {
	if rec == nil || isNil(rec.Target) {
		return ErrRecordNotFound
	}
	key := recordKey{table: rec.Target.Callbacks(), callback: rec.Callback}
	current, ok := r.records[key]
	if !ok || current != rec {
		return ErrRecordNotFound
	}
	delete(r.records, key)

	prev := rec.original
	if rec.synthesized {
		prev = nil
	}
	key.table.restore(rec.Callback, rec.replacement, prev)
	return nil
}

// UninstallAll removes every record tagged name and returns how many were removed.
func (r *Registry) UninstallAll(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uninstallAll(name)
}

func (r *Registry) uninstallAll(name string) int {
	removed := 0
	for _, rec := range r.snapshot(name) {
		if r.uninstall(rec) == nil {
			removed++
		}
	}
	return removed
}

// Reset removes every record regardless of name.
func (r *Registry) Reset() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reset()
}

func (r *Registry) reset() int {
	removed := 0
	for _, rec := range r.snapshot("") {
		if r.uninstall(rec) == nil {
			removed++
		}
	}
	return removed
}

// Records returns copies of the records tagged name, oldest first. An empty
// name matches every record.
func (r *Registry) Records(name string) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	recs := r.snapshot(name)
	out := make([]Record, len(recs))
	for i, rec := range recs {
		out[i] = *rec
	}
	return out
}

// Len returns the number of active records.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func (r *Registry) installedOn(name string, target Target) bool {
	for _, rec := range r.records {
		if rec.Name == name && sameTarget(rec.Target, target) {
			return true
		}
	}
	return false
}

func (r *Registry) snapshot(name string) []*Record {
	out := make([]*Record, 0, len(r.records))
	for _, rec := range r.records {
		if name == "" || rec.Name == name {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].InstalledAt.Before(out[j].InstalledAt)
	})
	return out
}
