package push

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-push-tracking/pkg/domain"
	"github.com/goliatone/go-push-tracking/pkg/interfaces/logger"
)

// Action identifier base tokens.
const (
	TokenOpenApp      = "OPEN_APP"
	TokenOpenBrowser  = "OPEN_BROWSER"
	TokenOpenDeeplink = "OPEN_DEEPLINK"
)

var kindsByToken = map[string]domain.ActionKind{
	TokenOpenApp:      domain.ActionOpenApp,
	TokenOpenBrowser:  domain.ActionBrowser,
	TokenOpenDeeplink: domain.ActionDeeplink,
}

// Router resolves action identifiers and asks the host to open URLs.
type Router struct {
	host   Host
	logger logger.Logger
	// dispatch runs URL opens; tests replace it to run inline.
	dispatch func(func())

	mu      sync.Mutex
	pending sync.WaitGroup
	stopped bool
}

// NewRouter returns a router opening URLs through host.
func NewRouter(host Host, lgr logger.Logger) *Router {
	return &Router{
		host:     host,
		logger:   logger.OrNop(lgr),
		dispatch: func(fn func()) { go fn() },
	}
}

// Resolve parses identifiers of the form <BASE>_<INDEX>. A trailing index
// within range selects actions[index].url and is stripped before the base
// token is matched; otherwise the whole identifier is matched.
func Resolve(identifier string, actions []domain.NotificationAction) domain.DecodedAction {
	base := identifier
	var value *string

	components := strings.Split(identifier, "_")
	if len(components) > 1 {
		last := components[len(components)-1]
		if index, err := strconv.Atoi(last); err == nil && index >= 0 && index < len(actions) {
			if actions[index].URL != nil {
				v := *actions[index].URL
				value = &v
			}
			base = strings.Join(components[:len(components)-1], "_")
		}
	}

	kind, ok := kindsByToken[base]
	if !ok {
		kind = domain.ActionNone
	}
	return domain.DecodedAction{Kind: kind, Value: value}
}

// Route resolves the identifier and, for browser and deeplink actions with
// a usable URL, asks the host to open it without waiting.
func (r *Router) Route(ctx context.Context, identifier string, actions []domain.NotificationAction, extra map[string]any) domain.DecodedAction {
	action := Resolve(identifier, actions)
	action.ExtraData = extra

	if !action.Kind.OpensURL() || r.host == nil {
		return action
	}
	target := action.ValueString()
	if target == "" {
		return action
	}
	if _, err := url.Parse(target); err != nil {
		r.logger.Warn("push: action value is not a url",
			logger.Err(err), logger.F("action", action.Kind.String()))
		return action
	}

	if !r.acquire() {
		r.logger.Debug("push: router stopped, url not opened", logger.F("action", action.Kind.String()))
		return action
	}
	openCtx := context.WithoutCancel(ctx)
	r.dispatch(func() {
		defer r.pending.Done()
		if err := r.host.OpenURL(openCtx, target); err != nil {
			r.logger.Warn("push: open url failed",
				logger.Err(err), logger.F("action", action.Kind.String()))
		}
	})
	return action
}

func (r *Router) acquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return false
	}
	r.pending.Add(1)
	return true
}

// Stop refuses new URL opens and waits for the ones already dispatched.
func (r *Router) Stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
	r.pending.Wait()
}
