package options

import (
	opts "github.com/goliatone/go-options"
	"github.com/goliatone/go-push-tracking/pkg/config"
	"github.com/goliatone/go-push-tracking/pkg/push"
)

// Feature toggle paths.
const (
	PathAutomaticTracking = "tracking.automatic_tracking"
	PathOpenURLs          = "tracking.open_urls"
	PathTrackTokens       = "tracking.track_tokens"
)

var (
	systemScope = opts.NewScope("system", opts.ScopePrioritySystem, opts.WithScopeLabel("System"))
	userScope   = opts.NewScope("user", opts.ScopePriorityUser, opts.WithScopeLabel("User"))
)

// FeatureTraces records which layer decided each toggle.
type FeatureTraces map[string]opts.Trace

// ResolveFeatures layers host overrides (user scope) over the configured
// toggles (system scope). Overrides use the same nested shape as the config,
// e.g. {"tracking": {"open_urls": false}}.
func ResolveFeatures(cfg config.TrackingConfig, overrides map[string]any) (push.Features, FeatureTraces, error) {
	snapshots := []Snapshot{{
		Scope:      systemScope,
		SnapshotID: "config",
		Data: map[string]any{
			"tracking": map[string]any{
				"automatic_tracking": config.Enabled(cfg.AutomaticTracking),
				"open_urls":          config.Enabled(cfg.OpenURLs),
				"track_tokens":       config.Enabled(cfg.TrackTokens),
			},
		},
	}}
	if len(overrides) > 0 {
		snapshots = append(snapshots, Snapshot{Scope: userScope, SnapshotID: "host", Data: overrides})
	}

	resolver, err := NewResolver(snapshots...)
	if err != nil {
		return push.Features{}, nil, err
	}

	traces := FeatureTraces{}
	resolve := func(path string) (bool, error) {
		value, trace, err := resolver.ResolveBool(path)
		if err != nil {
			return false, err
		}
		traces[path] = trace
		return value, nil
	}

	var features push.Features
	if features.AutomaticTracking, err = resolve(PathAutomaticTracking); err != nil {
		return push.Features{}, nil, err
	}
	if features.OpenURLs, err = resolve(PathOpenURLs); err != nil {
		return push.Features{}, nil, err
	}
	if features.TrackTokens, err = resolve(PathTrackTokens); err != nil {
		return push.Features{}, nil, err
	}
	return features, traces, nil
}
