package di

import (
	"context"
	"errors"
	"reflect"

	"github.com/goliatone/go-push-tracking/pkg/activity"
	"github.com/goliatone/go-push-tracking/pkg/activity/usersink"
	"github.com/goliatone/go-push-tracking/pkg/commands"
	"github.com/goliatone/go-push-tracking/pkg/config"
	"github.com/goliatone/go-push-tracking/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-push-tracking/pkg/interfaces/logger"
	"github.com/goliatone/go-push-tracking/pkg/interfaces/metrics"
	"github.com/goliatone/go-push-tracking/pkg/logging/zaplogger"
	"github.com/goliatone/go-push-tracking/pkg/metrics/prom"
	pkgoptions "github.com/goliatone/go-push-tracking/pkg/options"
	"github.com/goliatone/go-push-tracking/pkg/push"
	"github.com/goliatone/go-push-tracking/pkg/retry"
	"github.com/goliatone/go-push-tracking/pkg/storage"
	"github.com/goliatone/go-push-tracking/pkg/tracking"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

// Options configure the DI container.
type Options struct {
	Config  config.Config
	Storage storage.Providers
	Logger  logger.Logger
	Host    push.Host
	// Trackers are host transports called alongside the store tracker.
	Trackers     []tracking.Tracker
	Hooks        activity.Hooks
	ActivitySink types.ActivitySink
	Broadcaster  broadcaster.Broadcaster
	Subject      tracking.SubjectFunc
	Delegate     push.PushDelegate
	// Overrides are user-scope feature toggles layered over Config.Tracking.
	Overrides  map[string]any
	Metrics    metrics.Recorder
	Registerer prometheus.Registerer
}

// Container wires storage, trackers, metrics, the push manager and commands.
type Container struct {
	Config   config.Config
	Storage  storage.Providers
	Logger   logger.Logger
	Store    *tracking.StoreTracker
	Tracker  tracking.Tracker
	Async    *tracking.Async
	Metrics  metrics.Recorder
	Features push.Features
	Manager  *push.Manager
	Commands *commands.Registry

	db *bun.DB
}

var ErrHostRequired = errors.New("di: host is required")

func isZeroConfig(cfg config.Config) bool {
	return reflect.ValueOf(cfg).IsZero()
}

// New constructs the container using the supplied options. A sqlite storage
// driver opens its database here; Close releases it.
func New(ctx context.Context, opts Options) (*Container, error) {
	if opts.Host == nil {
		return nil, ErrHostRequired
	}

	cfg := opts.Config
	if isZeroConfig(cfg) {
		cfg = config.Defaults()
	}
	cfg, err := config.Load(cfg)
	if err != nil {
		return nil, err
	}

	lgr := opts.Logger
	if lgr == nil {
		zl, err := zaplogger.NewProduction(cfg.Logging.Level)
		if err != nil {
			return nil, err
		}
		lgr = zl
	}

	c := &Container{Config: cfg, Logger: lgr}

	providers := opts.Storage
	if providers.TrackedEvents == nil {
		switch cfg.Storage.Driver {
		case config.DriverSQLite:
			db, err := storage.OpenSQLite(ctx, cfg.Storage.DSN)
			if err != nil {
				return nil, err
			}
			c.db = db
			providers = storage.NewBunProviders(db)
		default:
			providers = storage.NewMemoryProviders()
		}
	}
	c.Storage = providers

	rec := opts.Metrics
	if rec == nil {
		if cfg.Metrics.Enabled {
			rec, err = prom.New(opts.Registerer)
			if err != nil {
				c.closeDB()
				return nil, err
			}
		} else {
			rec = &metrics.Nop{}
		}
	}
	c.Metrics = rec

	storeTracker, err := tracking.NewStoreTracker(providers.TrackedEvents, providers.Transaction)
	if err != nil {
		c.closeDB()
		return nil, err
	}
	c.Store = storeTracker

	hooks := append(activity.Hooks{}, opts.Hooks...)
	if opts.ActivitySink != nil {
		hooks = append(hooks, usersink.Hook{Sink: opts.ActivitySink})
	}
	if opts.Broadcaster != nil {
		hooks = append(hooks, activity.BroadcastHook{Broadcaster: opts.Broadcaster, Logger: lgr})
	}

	chain := tracking.Multi{storeTracker}
	if len(hooks) > 0 {
		chain = append(chain, tracking.HookTracker{Hooks: hooks, Subject: opts.Subject})
	}
	chain = append(chain, opts.Trackers...)

	var tracker tracking.Tracker = chain
	if config.Enabled(cfg.Async.Enabled) {
		c.Async = tracking.NewAsync(chain, tracking.AsyncConfig{
			QueueSize:  cfg.Async.QueueSize,
			Workers:    cfg.Async.Workers,
			MaxRetries: cfg.Async.MaxRetries,
			Backoff:    retry.ExponentialBackoff{Base: cfg.Async.BackoffBase, Max: retry.DefaultMaxDelay},
		},
			tracking.WithAsyncLogger(lgr),
			tracking.WithErrorHandler(func(eventType tracking.EventType, _ error) {
				rec.TrackingFailed(string(eventType))
			}),
		)
		tracker = c.Async
	}
	c.Tracker = tracker

	features, _, err := pkgoptions.ResolveFeatures(cfg.Tracking, opts.Overrides)
	if err != nil {
		c.shutdownPipeline()
		return nil, err
	}
	c.Features = features

	manager, err := push.New(push.Dependencies{
		Host:     opts.Host,
		Tracker:  tracker,
		Delegate: opts.Delegate,
		Logger:   lgr,
		Metrics:  rec,
		Features: &features,
	})
	if err != nil {
		c.shutdownPipeline()
		return nil, err
	}
	c.Manager = manager

	cmdRegistry, err := commands.New(commands.Dependencies{
		Manager: manager,
		Slot:    opts.Host.NotificationCenter(),
		Store:   storeTracker,
		Logger:  lgr,
	})
	if err != nil {
		c.shutdownPipeline()
		return nil, err
	}
	c.Commands = cmdRegistry

	return c, nil
}

// Start installs the push interceptions.
func (c *Container) Start(ctx context.Context) error {
	return c.Manager.Start(ctx)
}

// Close tears the manager down before draining the async queue and closing
// storage.
func (c *Container) Close() error {
	var errs []error
	if c.Manager != nil {
		errs = append(errs, c.Manager.Close())
	}
	errs = append(errs, c.shutdownPipeline())
	return errors.Join(errs...)
}

func (c *Container) shutdownPipeline() error {
	var errs []error
	if c.Async != nil {
		errs = append(errs, c.Async.Close())
	}
	errs = append(errs, c.closeDB())
	return errors.Join(errs...)
}

func (c *Container) closeDB() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}
