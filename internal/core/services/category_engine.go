package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/geosearch/internal/core/async"
	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driven"
	"github.com/custodia-labs/geosearch/internal/core/ports/driving"
	"github.com/custodia-labs/geosearch/internal/logger"
)

// Ensure CategorySearchEngine implements the interfaces.
var (
	_ driving.CategorySearchEngine = (*CategorySearchEngine)(nil)
	_ driven.LayerHost             = (*CategorySearchEngine)(nil)
)

// CategorySearchEngine lists places in a category in one step.
type CategorySearchEngine struct {
	*engineCore

	backend driven.SearchBackend
}

// NewCategorySearchEngine creates a category search engine.
func NewCategorySearchEngine(backend driven.SearchBackend, registry *DataProvidersRegistry, opts EngineOptions) *CategorySearchEngine {
	return &CategorySearchEngine{
		engineCore: newEngineCore(registry, opts),
		backend:    backend,
	}
}

// Search lists places in category. Local records tagged with the category
// come first.
func (e *CategorySearchEngine) Search(category string, opts domain.SearchOptions, executor async.Executor, cb driving.SearchCallback) async.OperationTask {
	executor = e.executorOr(executor)
	task := async.NewRequestTask(cb)

	category = strings.TrimSpace(category)
	if category == "" {
		deliverError(task, executor, fmt.Errorf("%w: category is empty", domain.ErrInvalidInput))
		return task
	}
	opts, err := e.prepareOptions(opts)
	if err != nil {
		deliverError(task, executor, err)
		return task
	}

	req := e.newRequest(category, domain.EndpointCategory, opts, "")
	ctx, release := startRequest(e.engineCore, task, executor)

	e.worker.Execute(func() {
		defer release()
		if ctx.Err() != nil {
			fail(e.engineCore, ctx, task, executor, ctx.Err())
			return
		}

		local := localCategoryResults(e.snapshot(), category, req)
		remote, info, err := e.backend.Category(ctx, req)
		if err != nil {
			fail(e.engineCore, ctx, task, executor, err)
			return
		}

		merged := mergeResults(local, remote, opts.EffectiveLimit())
		info.RequestOptions = req
		info.IsReproducible = info.IsReproducible && len(local) == 0
		logger.Debug("category: %q %d local, %d remote", category, len(local), len(remote))

		task.DeliverOn(executor, func(cb driving.SearchCallback) {
			cb.OnResults(merged, info)
		})
	})
	return task
}

// ReverseGeocoding finds places at a coordinate.
func (e *CategorySearchEngine) ReverseGeocoding(opts domain.ReverseGeoOptions, executor async.Executor, cb driving.SearchCallback) async.OperationTask {
	return reverseGeocode(e.engineCore, e.backend, opts, executor, cb)
}

// RegisterDataProvider makes provider's records searchable by this engine.
func (e *CategorySearchEngine) RegisterDataProvider(provider driven.IndexableDataProvider, executor async.Executor, cb func(error)) async.OperationTask {
	return e.changeProvider(e, provider, true, executor, cb)
}

// UnregisterDataProvider removes provider's records from this engine.
func (e *CategorySearchEngine) UnregisterDataProvider(provider driven.IndexableDataProvider, executor async.Executor, cb func(error)) async.OperationTask {
	return e.changeProvider(e, provider, false, executor, cb)
}
