package commands

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-push-tracking/pkg/domain"
	"github.com/goliatone/go-push-tracking/pkg/interfaces/logger"
	"github.com/goliatone/go-push-tracking/pkg/push"
	"github.com/google/uuid"
)

// Catalog exposes go-command compatible handlers for host forwarding glue.
type Catalog struct {
	PushOpened      command.Commander[PushOpened]
	TokenRegistered command.Commander[TokenRegistered]
	AssignDelegate  command.Commander[AssignDelegate]
	ExportEvents    command.Commander[ExportEvents]
}

type pushHandler interface {
	HandlePushOpened(ctx context.Context, raw map[string]any, actionIdentifier string) domain.DecodedAction
	HandleTokenRegistered(ctx context.Context, token []byte)
}

type eventExporter interface {
	Recorded(ctx context.Context, limit int) ([]domain.TrackedEvent, error)
	MarkExported(ctx context.Context, ids ...uuid.UUID) error
}

// Dependencies wires the manager, the host delegate slot and the event store
// into the catalog. Slot and Exporter are optional.
type Dependencies struct {
	Handler  pushHandler
	Slot     push.DelegateSlot
	Exporter eventExporter
	Logger   logger.Logger
}

var (
	ErrHandlerRequired   = errors.New("commands: push handler is required")
	ErrSlotUnavailable   = errors.New("commands: delegate slot not configured")
	ErrExportUnavailable = errors.New("commands: event exporter not configured")
)

// NewCatalog builds the command catalog using the supplied dependencies.
func NewCatalog(deps Dependencies) (*Catalog, error) {
	if deps.Handler == nil {
		return nil, ErrHandlerRequired
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}

	return &Catalog{
		PushOpened:      pushOpenedCommand{handler: deps.Handler},
		TokenRegistered: tokenRegisteredCommand{handler: deps.Handler},
		AssignDelegate:  assignDelegateCommand{slot: deps.Slot, logger: deps.Logger},
		ExportEvents:    exportEventsCommand{exporter: deps.Exporter, logger: deps.Logger},
	}, nil
}

// PushOpened forwards a notification open the host observed itself.
type PushOpened struct {
	Payload          map[string]any `json:"payload"`
	ActionIdentifier string         `json:"action_identifier"`
	// Result receives the routed action when set.
	Result *domain.DecodedAction `json:"-"`
}

type pushOpenedCommand struct {
	handler pushHandler
}

func (c pushOpenedCommand) Execute(ctx context.Context, msg PushOpened) error {
	action := c.handler.HandlePushOpened(ctx, msg.Payload, msg.ActionIdentifier)
	if msg.Result != nil {
		*msg.Result = action
	}
	return nil
}

// TokenRegistered forwards a device token. TokenHex is used when Token is empty.
type TokenRegistered struct {
	Token    []byte `json:"token,omitempty"`
	TokenHex string `json:"token_hex,omitempty"`
}

type tokenRegisteredCommand struct {
	handler pushHandler
}

func (c tokenRegisteredCommand) Execute(ctx context.Context, msg TokenRegistered) error {
	token := msg.Token
	if len(token) == 0 {
		raw := strings.TrimSpace(msg.TokenHex)
		if raw == "" {
			return errors.New("commands: token is required")
		}
		decoded, err := hex.DecodeString(raw)
		if err != nil {
			return fmt.Errorf("commands: token_hex: %w", err)
		}
		token = decoded
	}
	c.handler.HandleTokenRegistered(ctx, token)
	return nil
}

// AssignDelegate sets the host notification delegate. A nil Delegate clears it.
type AssignDelegate struct {
	Delegate push.Target `json:"-"`
}

type assignDelegateCommand struct {
	slot   push.DelegateSlot
	logger logger.Logger
}

func (c assignDelegateCommand) Execute(_ context.Context, msg AssignDelegate) error {
	if c.slot == nil {
		return ErrSlotUnavailable
	}
	c.slot.SetDelegate(msg.Delegate)
	c.logger.Debug("commands: notification delegate assigned", logger.F("cleared", msg.Delegate == nil))
	return nil
}

// ExportEvents writes recorded events as JSON lines to Out and marks them
// exported. Limit <= 0 exports everything pending.
type ExportEvents struct {
	Limit int       `json:"limit"`
	Out   io.Writer `json:"-"`
}

type exportEventsCommand struct {
	exporter eventExporter
	logger   logger.Logger
}

func (c exportEventsCommand) Execute(ctx context.Context, msg ExportEvents) error {
	if c.exporter == nil {
		return ErrExportUnavailable
	}
	if msg.Out == nil {
		return errors.New("commands: export writer is required")
	}
	events, err := c.exporter.Recorded(ctx, msg.Limit)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(msg.Out)
	ids := make([]uuid.UUID, 0, len(events))
	for _, evt := range events {
		if err := enc.Encode(evt); err != nil {
			return fmt.Errorf("commands: encode event %s: %w", evt.ID, err)
		}
		ids = append(ids, evt.ID)
	}
	if err := c.exporter.MarkExported(ctx, ids...); err != nil {
		return err
	}
	c.logger.Info("commands: events exported", logger.F("count", len(ids)))
	return nil
}
