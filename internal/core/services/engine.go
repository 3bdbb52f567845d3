package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/geosearch/internal/core/async"
	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driven"
	"github.com/custodia-labs/geosearch/internal/textutil"
)

// DefaultWorkers is the size of an engine's own worker pool.
const DefaultWorkers = 4

// EngineOptions configures the executors and defaults shared by engines.
type EngineOptions struct {
	// Worker runs request work. Nil creates a pool owned by the engine.
	Worker async.Executor

	// Callbacks delivers callbacks when the caller passes no executor.
	// Nil creates a serial executor owned by the engine.
	Callbacks async.Executor

	// Defaults fill options the caller left unset.
	Defaults domain.SearchSettings
}

// engineCore holds what every engine needs: layers, executors, the
// provider registry and a context cancelled on Close.
type engineCore struct {
	*layerSet

	registry  *DataProvidersRegistry
	worker    async.Executor
	callbacks async.Executor
	defaults  domain.SearchSettings

	ctx    context.Context
	cancel context.CancelFunc

	// pending settles unfinished tasks when the engine closes.
	pendingMu sync.Mutex
	pending   map[*async.Task]func(error)
	closed    bool

	ownedWorker    *async.WorkerPool
	ownedCallbacks *async.WorkerPool
	closeOnce      sync.Once
}

func newEngineCore(registry *DataProvidersRegistry, opts EngineOptions) *engineCore {
	c := &engineCore{
		layerSet:  newLayerSet(),
		registry:  registry,
		worker:    opts.Worker,
		callbacks: opts.Callbacks,
		defaults:  opts.Defaults,
		pending:   make(map[*async.Task]func(error)),
	}
	if c.worker == nil {
		c.ownedWorker = async.NewWorkerPool(DefaultWorkers)
		c.worker = c.ownedWorker
	}
	if c.callbacks == nil {
		c.ownedCallbacks = async.NewWorkerPool(1)
		c.callbacks = c.ownedCallbacks
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// executorOr returns executor, or the default callback executor when nil.
// Once the engine is closed its own executor is gone, so callbacks run on
// a fresh goroutine instead.
func (c *engineCore) executorOr(executor async.Executor) async.Executor {
	if executor != nil {
		return executor
	}
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	if c.closed {
		return async.Goroutine
	}
	return c.callbacks
}

// track derives a context for one task, cancelled when the task is
// cancelled or the engine closes, and remembers abort so Close can settle
// the task if its work never runs. The caller must call the returned
// function once the work is over.
func (c *engineCore) track(task *async.Task, abort func(error)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(c.ctx)
	task.SetOnCancel(cancel)

	c.pendingMu.Lock()
	if c.closed {
		c.pendingMu.Unlock()
		cancel()
		abort(errShutdown())
		return ctx, func() {}
	}
	c.pending[task] = abort
	c.pendingMu.Unlock()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			cancel()
			c.pendingMu.Lock()
			delete(c.pending, task)
			c.pendingMu.Unlock()
		})
	}
}

// startRequest tracks a task whose failures go to its error callback.
func startRequest[C errorCallback](c *engineCore, task *async.RequestTask[C], executor async.Executor) (context.Context, context.CancelFunc) {
	return c.track(&task.Task, func(err error) { deliverError(task, executor, err) })
}

func errShutdown() error {
	return &domain.CancellationError{Reason: domain.CancellationReasonShutdown}
}

// prepareOptions applies defaults, validates, and normalises locales.
func (c *engineCore) prepareOptions(opts domain.SearchOptions) (domain.SearchOptions, error) {
	opts = c.defaults.ApplyTo(opts)
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	langs, err := textutil.NormaliseLanguages(opts.Languages)
	if err != nil {
		return opts, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	countries, err := textutil.NormaliseCountries(opts.Countries)
	if err != nil {
		return opts, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	opts.Languages = langs
	opts.Countries = countries
	return opts, nil
}

// newRequest snapshots a request.
func (c *engineCore) newRequest(query string, endpoint domain.Endpoint, opts domain.SearchOptions, sessionID string) domain.RequestOptions {
	return domain.RequestOptions{
		Query:     query,
		Endpoint:  endpoint,
		Options:   opts,
		RequestID: uuid.NewString(),
		SessionID: sessionID,
	}
}

// failure decides what a task whose work failed with err should report.
// Work stopped by a task cancel or a debounce reports nothing, since the
// outcome is already settled; work stopped by Close reports a shutdown.
func (c *engineCore) failure(ctx context.Context, err error) (error, bool) {
	if c.ctx.Err() != nil {
		return errShutdown(), true
	}
	if ctx.Err() != nil {
		return nil, false
	}
	return err, true
}

// fail reports err on task unless the failure was caused by cancellation.
func fail[C errorCallback](c *engineCore, ctx context.Context, task *async.RequestTask[C], executor async.Executor, err error) {
	if err, ok := c.failure(ctx, err); ok {
		deliverError(task, executor, err)
	}
}

// errorCallback is the error half shared by all callback interfaces.
type errorCallback interface {
	OnError(err error)
}

// deliverError reports err through the task's callback.
func deliverError[C errorCallback](task *async.RequestTask[C], executor async.Executor, err error) {
	task.DeliverOn(executor, func(cb C) {
		cb.OnError(err)
	})
}

// changeProvider registers or unregisters provider with host on the
// worker and reports the outcome to cb on executor.
func (c *engineCore) changeProvider(host driven.LayerHost, provider driven.IndexableDataProvider, register bool, executor async.Executor, cb func(error)) async.OperationTask {
	executor = c.executorOr(executor)
	task := async.NewRequestTask(cb)
	report := func(err error) {
		task.DeliverOn(executor, func(cb func(error)) {
			if cb != nil {
				cb(err)
			}
		})
	}
	ctx, release := c.track(&task.Task, report)

	c.worker.Execute(func() {
		defer release()
		if ctx.Err() != nil {
			if err, ok := c.failure(ctx, ctx.Err()); ok {
				report(err)
			}
			return
		}
		var err error
		if register {
			err = c.registry.Register(ctx, provider, host)
		} else {
			err = c.registry.Unregister(ctx, provider, host)
		}
		report(err)
	})
	return task
}

// Close cancels in-flight requests and stops executors owned by the engine.
// Every task still pending afterwards receives a shutdown cancellation.
// It must not be called from a callback running on the engine's executor.
func (c *engineCore) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		c.pendingMu.Lock()
		c.closed = true
		c.pendingMu.Unlock()

		// Queued work drains and reports the shutdown itself.
		if c.ownedWorker != nil {
			c.ownedWorker.Close()
		}

		c.pendingMu.Lock()
		aborts := make([]func(error), 0, len(c.pending))
		for task, abort := range c.pending {
			aborts = append(aborts, abort)
			delete(c.pending, task)
		}
		c.pendingMu.Unlock()
		for _, abort := range aborts {
			abort(errShutdown())
		}

		if c.ownedCallbacks != nil {
			c.ownedCallbacks.Close()
		}
	})
	return nil
}
