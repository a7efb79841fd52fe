package tracking

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-push-tracking/pkg/interfaces/logger"
	"github.com/goliatone/go-push-tracking/pkg/retry"
)

var (
	ErrQueueFull = errors.New("tracking: async queue is full")
	ErrClosed    = errors.New("tracking: async tracker is closed")
)

// AsyncConfig sizes the Async worker pool.
type AsyncConfig struct {
	QueueSize  int
	Workers    int
	MaxRetries int
	Backoff    retry.Backoff
}

type asyncJob struct {
	ctx        context.Context
	eventType  EventType
	properties map[string]any
}

// Async hands events to a worker pool so Track never blocks the caller.
// A full queue is reported as ErrQueueFull rather than waited on.
type Async struct {
	next    Tracker
	cfg     AsyncConfig
	logger  logger.Logger
	jobs    chan asyncJob
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	onError func(EventType, error)
}

// AsyncOption customizes an Async tracker.
type AsyncOption func(*Async)

// WithAsyncLogger sets the logger used for delivery failures.
func WithAsyncLogger(l logger.Logger) AsyncOption {
	return func(a *Async) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithErrorHandler registers a callback invoked after retries are exhausted.
func WithErrorHandler(fn func(EventType, error)) AsyncOption {
	return func(a *Async) {
		a.onError = fn
	}
}

// NewAsync starts the worker pool in front of next.
func NewAsync(next Tracker, cfg AsyncConfig, opts ...AsyncOption) *Async {
	if next == nil {
		next = Nop{}
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	if cfg.Backoff == nil {
		cfg.Backoff = retry.DefaultBackoff()
	}
	a := &Async{
		next:   next,
		cfg:    cfg,
		logger: &logger.Nop{},
		jobs:   make(chan asyncJob, cfg.QueueSize),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	for range cfg.Workers {
		a.wg.Add(1)
		go a.work()
	}
	return a
}

// Track enqueues the event and returns immediately.
func (a *Async) Track(ctx context.Context, eventType EventType, properties map[string]any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return &Error{EventType: eventType, Err: ErrClosed}
	}
	job := asyncJob{
		ctx:        context.WithoutCancel(ctx),
		eventType:  eventType,
		properties: cloneProperties(properties),
	}
	select {
	case a.jobs <- job:
		return nil
	default:
		return &Error{EventType: eventType, Err: ErrQueueFull}
	}
}

// Close stops accepting events and waits for queued ones to finish.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.jobs)
	a.mu.Unlock()
	a.wg.Wait()
	return nil
}

func (a *Async) work() {
	defer a.wg.Done()
	for job := range a.jobs {
		err := retry.Do(job.ctx, a.cfg.MaxRetries, a.cfg.Backoff, func(ctx context.Context, attempt int) error {
			return a.next.Track(ctx, job.eventType, job.properties)
		})
		if err == nil {
			continue
		}
		a.logger.Error("async tracking failed",
			logger.F("event", string(job.eventType)),
			logger.F("attempts", a.cfg.MaxRetries),
			logger.Err(err),
		)
		if a.onError != nil {
			a.onError(job.eventType, err)
		}
	}
}
