package push

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-push-tracking/pkg/domain"
	"github.com/goliatone/go-push-tracking/pkg/interfaces/logger"
	"github.com/goliatone/go-push-tracking/pkg/interfaces/metrics"
	"github.com/goliatone/go-push-tracking/pkg/tracking"
)

// State is the manager lifecycle stage.
type State int

const (
	StateUninitialized State = iota
	StateInstalling
	StateActive
	StateTornDown
)

func (s State) String() string {
	switch s {
	case StateInstalling:
		return "installing"
	case StateActive:
		return "active"
	case StateTornDown:
		return "torn_down"
	default:
		return "uninitialized"
	}
}

// PushDelegate is notified after every opened notification, whether or not
// tracking succeeded.
type PushDelegate interface {
	PushNotificationOpened(ctx context.Context, kind domain.ActionKind, value *string, extraData map[string]any)
}

// PushDelegateFunc adapts a function to PushDelegate.
type PushDelegateFunc func(ctx context.Context, kind domain.ActionKind, value *string, extraData map[string]any)

func (f PushDelegateFunc) PushNotificationOpened(ctx context.Context, kind domain.ActionKind, value *string, extraData map[string]any) {
	f(ctx, kind, value, extraData)
}

// Features toggles manager behavior at runtime.
type Features struct {
	// AutomaticTracking installs the interceptions on Start.
	AutomaticTracking bool
	// OpenURLs lets browser and deeplink actions open their URL.
	OpenURLs bool
	// TrackTokens reports device token registrations.
	TrackTokens bool
}

// DefaultFeatures enables everything.
func DefaultFeatures() Features {
	return Features{AutomaticTracking: true, OpenURLs: true, TrackTokens: true}
}

// Dependencies groups the collaborators required by the manager.
type Dependencies struct {
	Host     Host
	Tracker  tracking.Tracker
	Delegate PushDelegate
	Logger   logger.Logger
	Metrics  metrics.Recorder
	// Features defaults to DefaultFeatures when nil.
	Features *Features
}

var (
	ErrMissingHost    = errors.New("push: host is required")
	ErrMissingTracker = errors.New("push: tracker is required")
	ErrInvalidState   = errors.New("push: invalid manager state")
	ErrNoDelegateSlot = errors.New("push: host has no notification delegate slot")
)

// Manager wires the interceptions into the host and turns intercepted
// callbacks into tracking events.
type Manager struct {
	host     Host
	tracker  tracking.Tracker
	logger   logger.Logger
	metrics  metrics.Recorder
	features Features

	registry *Registry
	selector Selector
	decoder  *Decoder
	router   *Router
	monitor  *Monitor

	mu       sync.RWMutex
	state    State
	delegate PushDelegate
}

// New builds an uninitialized manager. Call Start to install interceptions.
func New(deps Dependencies) (*Manager, error) {
	if deps.Host == nil {
		return nil, ErrMissingHost
	}
	if deps.Tracker == nil {
		return nil, ErrMissingTracker
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.Metrics == nil {
		deps.Metrics = &metrics.Nop{}
	}
	features := DefaultFeatures()
	if deps.Features != nil {
		features = *deps.Features
	}

	decoder, err := NewDecoder(deps.Logger)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		host:     deps.Host,
		tracker:  deps.Tracker,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		features: features,
		registry: NewRegistry(),
		decoder:  decoder,
		router:   NewRouter(deps.Host, deps.Logger),
		delegate: deps.Delegate,
	}
	m.monitor = newMonitor(m.registry, deps.Host.NotificationCenter(), m.interceptNotification, deps.Logger, deps.Metrics)
	return m, nil
}

// Start installs the token and notification interceptions and subscribes to
// delegate slot changes. A failed token interception is logged only; Start
// fails when no notification interception can be installed.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateUninitialized {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: start from %s", ErrInvalidState, state)
	}
	m.state = StateInstalling
	m.mu.Unlock()

	if !m.features.AutomaticTracking {
		m.logger.Info("push: automatic tracking disabled, interceptions not installed")
		m.setState(StateActive)
		return nil
	}

	m.installTokenInterception()
	if err := m.installNotificationInterception(); err != nil {
		m.logger.Error("push: notification interception failed",
			logger.Err(err), logger.F("fatal", true))
		m.registry.Reset()
		m.setState(StateUninitialized)
		return err
	}
	m.monitor.subscribe()

	m.setState(StateActive)
	m.metrics.InterceptionsActive(m.registry.Len())
	return nil
}

func (m *Manager) installTokenInterception() {
	app := m.host.AppDelegate()
	if isNil(app) {
		m.logger.Warn("push: no app delegate, token registration not intercepted")
		return
	}
	if _, err := m.registry.Install(NamePushTokenRegistration, app, CallbackRegisterToken, m.interceptToken, true); err != nil {
		m.logger.Error("push: token interception failed",
			logger.Err(err), logger.F("fatal", true))
	}
}

func (m *Manager) installNotificationInterception() error {
	sel := m.selector.Select(m.host)
	slot := m.host.NotificationCenter()

	if sel.Source != SourceFallback {
		if _, err := m.registry.Install(NameNotificationOpened, sel.Target, sel.Callback, m.interceptNotification, sel.Source == SourceSlotDelegate); err != nil {
			return err
		}
		var current Target
		if slot != nil {
			current = slot.Delegate()
		}
		m.monitor.bind(current, nil)
		m.logger.Debug("push: notification interception installed", logger.F("source", sel.Source.String()))
		return nil
	}

	if slot == nil {
		return ErrNoDelegateSlot
	}
	fallback := NewFallbackReceiver()
	if _, err := m.registry.Install(NameNotificationOpened, fallback, CallbackDidReceiveResponse, m.interceptNotification, true); err != nil {
		return err
	}
	m.monitor.bind(fallback, fallback)
	slot.SetDelegate(fallback)
	m.logger.Debug("push: fallback receiver installed")
	return nil
}

func (m *Manager) interceptNotification(ctx context.Context, call Call, original Handler) {
	m.HandlePushOpened(ctx, call.Payload, call.ActionIdentifier)
	original(ctx, call)
}

func (m *Manager) interceptToken(ctx context.Context, call Call, original Handler) {
	m.HandleTokenRegistered(ctx, call.Token)
	original(ctx, call)
}

// Close removes every interception, stops observing the delegate slot,
// releases the fallback receiver and waits for URL opens already started.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.state == StateTornDown {
		m.mu.Unlock()
		return nil
	}
	m.state = StateTornDown
	m.mu.Unlock()

	removed := m.monitor.shutdown()
	m.monitor.unsubscribe()

	if fallback := m.monitor.Fallback(); fallback != nil {
		m.monitor.release(fallback)
	}
	m.monitor.bind(nil, nil)
	m.router.Stop()

	m.metrics.InterceptionsActive(0)
	m.logger.Debug("push: manager closed", logger.F("removed", removed))
	return nil
}

// HandlePushOpened decodes the payload, tracks push_opened, routes the
// action and notifies the delegate. Tracking failures never stop routing.
func (m *Manager) HandlePushOpened(ctx context.Context, raw map[string]any, actionIdentifier string) domain.DecodedAction {
	properties := m.decoder.Decode(raw)
	payload := ParsePayload(raw)

	m.track(ctx, tracking.EventPushOpened, properties)

	var action domain.DecodedAction
	if m.features.OpenURLs {
		action = m.router.Route(ctx, actionIdentifier, payload.Actions, payload.Attributes)
	} else {
		action = Resolve(actionIdentifier, payload.Actions)
		action.ExtraData = payload.Attributes
	}
	m.metrics.PushOpened(action.Kind.String())

	if delegate := m.Delegate(); delegate != nil {
		delegate.PushNotificationOpened(ctx, action.Kind, action.Value, action.ExtraData)
	}
	return action
}

// HandleTokenRegistered tracks register_push_token with the token as
// lowercase hex.
func (m *Manager) HandleTokenRegistered(ctx context.Context, token []byte) {
	if !m.features.TrackTokens {
		return
	}
	m.track(ctx, tracking.EventRegisterPushToken, map[string]any{"token": CanonicalToken(token)})
	m.metrics.TokenRegistered()
}

func (m *Manager) track(ctx context.Context, eventType tracking.EventType, properties map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("push: tracker panicked", logger.F("event", string(eventType)), logger.F("panic", r))
			m.metrics.TrackingFailed(string(eventType))
		}
	}()
	if err := m.tracker.Track(ctx, eventType, properties); err != nil {
		err = tracking.Wrap(eventType, err)
		m.logger.Error("push: tracking failed", logger.Err(err), logger.F("event", string(eventType)))
		m.metrics.TrackingFailed(string(eventType))
	}
}

// SetDelegate replaces the host-facing delegate.
func (m *Manager) SetDelegate(d PushDelegate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delegate = d
}

// Delegate returns the host-facing delegate.
func (m *Manager) Delegate() PushDelegate {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.delegate
}

// State returns the lifecycle stage.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Disabled reports whether an unhandled delegate transition switched
// automatic tracking off for this manager.
func (m *Manager) Disabled() bool {
	return m.monitor.Disabled()
}

// Registry exposes the interception registry for inspection.
func (m *Manager) Registry() *Registry { return m.registry }

// Decoder returns the payload decoder used by the manager.
func (m *Manager) Decoder() *Decoder { return m.decoder }

func (m *Manager) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}
