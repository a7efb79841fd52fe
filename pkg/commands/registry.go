package commands

import (
	command "github.com/goliatone/go-command"
	internalcommands "github.com/goliatone/go-push-tracking/internal/commands"
	"github.com/goliatone/go-push-tracking/pkg/interfaces/logger"
	"github.com/goliatone/go-push-tracking/pkg/push"
	"github.com/goliatone/go-push-tracking/pkg/tracking"
)

// Re-export request types so consumers need not import internal packages.
type (
	PushOpened      = internalcommands.PushOpened
	TokenRegistered = internalcommands.TokenRegistered
	AssignDelegate  = internalcommands.AssignDelegate
	ExportEvents    = internalcommands.ExportEvents
)

// Registry exposes go-command compatible handlers backed by the push manager.
type Registry struct {
	Catalog         *internalcommands.Catalog
	PushOpened      command.Commander[PushOpened]
	TokenRegistered command.Commander[TokenRegistered]
	AssignDelegate  command.Commander[AssignDelegate]
	ExportEvents    command.Commander[ExportEvents]
}

// Dependencies mirror the internal command dependencies but keep them public.
type Dependencies struct {
	Manager *push.Manager
	Slot    push.DelegateSlot
	Store   *tracking.StoreTracker
	Logger  logger.Logger
}

// New builds the registry using the provided dependencies.
func New(deps Dependencies) (*Registry, error) {
	internalDeps := internalcommands.Dependencies{
		Slot:   deps.Slot,
		Logger: deps.Logger,
	}
	if deps.Manager != nil {
		internalDeps.Handler = deps.Manager
	}
	if deps.Store != nil {
		internalDeps.Exporter = deps.Store
	}
	catalog, err := internalcommands.NewCatalog(internalDeps)
	if err != nil {
		return nil, err
	}
	return &Registry{
		Catalog:         catalog,
		PushOpened:      catalog.PushOpened,
		TokenRegistered: catalog.TokenRegistered,
		AssignDelegate:  catalog.AssignDelegate,
		ExportEvents:    catalog.ExportEvents,
	}, nil
}

// Commanders returns every handler so callers can register them with go-command registries.
func (r *Registry) Commanders() []any {
	if r == nil {
		return nil
	}
	return []any{
		r.PushOpened,
		r.TokenRegistered,
		r.AssignDelegate,
		r.ExportEvents,
	}
}
