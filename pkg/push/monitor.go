package push

import (
	"github.com/goliatone/go-push-tracking/pkg/interfaces/logger"
	"github.com/goliatone/go-push-tracking/pkg/interfaces/metrics"
)

// Delegate slot transitions reported to metrics.
const (
	TransitionFallbackReplaced = "fallback_replaced"
	TransitionDelegateCleared  = "delegate_cleared"
	TransitionDelegateAssigned = "delegate_assigned"
	TransitionUnhandled        = "unhandled"
)

// Monitor re-runs the notification interception whenever the host's
// delegate slot is reassigned. Its binding state is guarded by the
// registry lock.
type Monitor struct {
	registry    *Registry
	slot        DelegateSlot
	interceptor Interceptor
	logger      logger.Logger
	metrics     metrics.Recorder

	current  Target
	fallback *FallbackReceiver
	disabled bool
	closed   bool
	cancel   func()
}

func newMonitor(registry *Registry, slot DelegateSlot, interceptor Interceptor, lgr logger.Logger, rec metrics.Recorder) *Monitor {
	return &Monitor{
		registry:    registry,
		slot:        slot,
		interceptor: interceptor,
		logger:      lgr,
		metrics:     rec,
	}
}

func (m *Monitor) bind(current Target, fallback *FallbackReceiver) {
	m.registry.mu.Lock()
	defer m.registry.mu.Unlock()
	m.current = current
	m.fallback = fallback
}

func (m *Monitor) subscribe() {
	if m.slot == nil || m.cancel != nil {
		return
	}
	m.cancel = m.slot.Observe(m.onChange)
}

func (m *Monitor) unsubscribe() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// shutdown marks the monitor closed and removes every interception in the
// same critical section, so a slot change already in flight cannot install
// anything afterwards.
func (m *Monitor) shutdown() int {
	m.registry.mu.Lock()
	defer m.registry.mu.Unlock()
	m.closed = true
	return m.registry.reset()
}

// Disabled reports whether an unhandled transition switched tracking off.
func (m *Monitor) Disabled() bool {
	m.registry.mu.Lock()
	defer m.registry.mu.Unlock()
	return m.disabled
}

// Fallback returns the receiver currently owned by the monitor, if any.
func (m *Monitor) Fallback() *FallbackReceiver {
	m.registry.mu.Lock()
	defer m.registry.mu.Unlock()
	return m.fallback
}

func (m *Monitor) onChange(old, next Target) {
	m.registry.mu.Lock()
	if m.disabled || m.closed {
		m.registry.mu.Unlock()
		return
	}
	m.registry.uninstallAll(NameNotificationOpened)

	var (
		transition string
		assign     *FallbackReceiver
		err        error
	)
	switch {
	case IsFallback(old) && !isNil(next) && !IsFallback(next):
		transition = TransitionFallbackReplaced
		m.fallback = nil
		m.current = next
		err = m.intercept(next)
	case !isNil(old) && !IsFallback(old) && isNil(next):
		transition = TransitionDelegateCleared
		assign = NewFallbackReceiver()
		m.fallback = assign
		m.current = assign
		err = m.intercept(assign)
	case isNil(old) && !isNil(next):
		// Also covers the echo of our own fallback assignment.
		transition = TransitionDelegateAssigned
		if f, ok := next.(*FallbackReceiver); ok {
			m.fallback = f
		}
		m.current = next
		err = m.intercept(next)
	default:
		transition = TransitionUnhandled
		m.disabled = true
		m.current = next
	}
	active := len(m.registry.records)
	m.registry.mu.Unlock()

	m.metrics.DelegateTransition(transition)
	m.metrics.InterceptionsActive(active)

	if transition == TransitionUnhandled {
		m.logger.Error("push: unhandled delegate transition, automatic tracking disabled",
			logger.F("old_nil", isNil(old)),
			logger.F("old_fallback", IsFallback(old)),
			logger.F("new_nil", isNil(next)),
			logger.F("new_fallback", IsFallback(next)),
		)
		return
	}
	if err != nil {
		m.logger.Error("push: reinstall notification interception failed",
			logger.Err(err), logger.F("transition", transition), logger.F("fatal", true))
		return
	}
	m.logger.Debug("push: delegate changed", logger.F("transition", transition))

	if assign != nil {
		if m.isClosed() {
			return
		}
		m.slot.SetDelegate(assign)
		if m.isClosed() {
			m.release(assign)
			return
		}
		m.ensureIntercepted(assign)
	}
}

func (m *Monitor) isClosed() bool {
	m.registry.mu.Lock()
	defer m.registry.mu.Unlock()
	return m.closed
}

// release clears the slot if it still holds fallback.
func (m *Monitor) release(fallback *FallbackReceiver) {
	if m.slot != nil && sameTarget(m.slot.Delegate(), fallback) {
		m.slot.SetDelegate(nil)
	}
}

// ensureIntercepted reinstalls on t if the slot echo left it bare.
func (m *Monitor) ensureIntercepted(t Target) {
	m.registry.mu.Lock()
	defer m.registry.mu.Unlock()
	if m.disabled || m.closed || !sameTarget(m.current, t) || m.registry.installedOn(NameNotificationOpened, t) {
		return
	}
	if err := m.intercept(t); err != nil {
		m.logger.Error("push: intercept fallback receiver failed",
			logger.Err(err), logger.F("fatal", true))
	}
}

// intercept must be called with the registry lock held.
func (m *Monitor) intercept(t Target) error {
	_, err := m.registry.install(NameNotificationOpened, t, CallbackDidReceiveResponse, m.interceptor, true)
	return err
}
