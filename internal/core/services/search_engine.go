package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/geosearch/internal/core/async"
	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driven"
	"github.com/custodia-labs/geosearch/internal/core/ports/driving"
	"github.com/custodia-labs/geosearch/internal/logger"
)

// Ensure SearchEngine implements the interfaces.
var (
	_ driving.SearchEngine = (*SearchEngine)(nil)
	_ driven.LayerHost     = (*SearchEngine)(nil)
)

// batchConcurrency caps parallel retrieves in a batch select.
const batchConcurrency = 4

// SearchEngine runs two-step forward search against a backend, merging
// records from registered data providers into the suggestions.
type SearchEngine struct {
	*engineCore

	backend  driven.SearchBackend
	history  HistoryRecorder
	debounce *debouncer

	sessionMu sync.Mutex
	sessionID string
}

// NewSearchEngine creates a search engine. history may be nil, in which
// case selected results are not recorded.
func NewSearchEngine(
	backend driven.SearchBackend,
	registry *DataProvidersRegistry,
	history HistoryRecorder,
	opts EngineOptions,
) *SearchEngine {
	return &SearchEngine{
		engineCore: newEngineCore(registry, opts),
		backend:    backend,
		history:    history,
		debounce:   newDebouncer(),
		sessionID:  uuid.NewString(),
	}
}

// session returns the current session token.
func (e *SearchEngine) session() string {
	e.sessionMu.Lock()
	defer e.sessionMu.Unlock()
	return e.sessionID
}

// rotateSession starts a new session after a retrieve completes one.
func (e *SearchEngine) rotateSession() {
	e.sessionMu.Lock()
	defer e.sessionMu.Unlock()
	e.sessionID = uuid.NewString()
}

// Search runs the suggest step: local records matching query are merged
// ahead of the backend's suggestions. Consecutive searches within the
// debounce window supersede each other.
func (e *SearchEngine) Search(query string, opts domain.SearchOptions, executor async.Executor, cb driving.SuggestionsCallback) async.OperationTask {
	return e.search(query, opts, executor, cb, true)
}

// search runs a suggest step. Nested searches pass debounced false: they
// start at once and never supersede, or get superseded by, user searches.
func (e *SearchEngine) search(query string, opts domain.SearchOptions, executor async.Executor, cb driving.SuggestionsCallback, debounced bool) *async.RequestTask[driving.SuggestionsCallback] {
	executor = e.executorOr(executor)
	task := async.NewRequestTask(cb)

	query = strings.TrimSpace(query)
	if query == "" {
		deliverError(task, executor, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput))
		return task
	}
	opts, err := e.prepareOptions(opts)
	if err != nil {
		deliverError(task, executor, err)
		return task
	}

	req := e.newRequest(query, domain.EndpointSuggest, opts, e.session())
	ctx, release := startRequest(e.engineCore, task, executor)

	if !debounced {
		e.worker.Execute(func() {
			defer release()
			e.suggest(ctx, req, task, executor)
		})
		return task
	}

	start := func(pending *debouncedRequest) {
		e.worker.Execute(func() {
			defer release()
			e.suggest(ctx, req, task, executor)
			e.debounce.finish(pending)
		})
	}
	supersede := func() {
		// Settle the outcome before stopping the work so a late backend
		// response cannot win.
		cb, ok := task.Claim()
		release()
		if !ok {
			return
		}
		logger.Debug("search: %s superseded within debounce window", req.RequestID)
		cancelled := &domain.CancellationError{Reason: domain.CancellationReasonDebounce}
		executor.Execute(func() { cb.OnError(cancelled) })
	}
	e.debounce.schedule(opts.RequestDebounce, start, supersede)
	return task
}

// suggest runs the network step of a search and delivers the merged list.
func (e *SearchEngine) suggest(ctx context.Context, req domain.RequestOptions, task *async.RequestTask[driving.SuggestionsCallback], executor async.Executor) {
	if ctx.Err() != nil {
		fail(e.engineCore, ctx, task, executor, ctx.Err())
		return
	}
	logger.Debug("search: suggest %q (%s)", req.Query, req.RequestID)

	local := localSuggestions(e.snapshot(), req.Query, req)
	remote, info, err := e.backend.Suggest(ctx, req)
	if err != nil {
		fail(e.engineCore, ctx, task, executor, err)
		return
	}

	for i := range remote {
		remote[i].RequestOptions = req
	}
	merged := mergeSuggestions(local, remote, req.Options.EffectiveLimit())
	info.RequestOptions = req
	info.IsReproducible = info.IsReproducible && !hasRecords(merged)
	logger.Debug("search: %d local, %d remote, %d delivered", len(local), len(remote), len(merged))

	task.DeliverOn(executor, func(cb driving.SuggestionsCallback) {
		cb.OnSuggestions(merged, info)
	})
}

// Select resolves a suggestion according to its variant. Nil opts means
// domain.DefaultSelectOptions.
func (e *SearchEngine) Select(suggestion domain.SearchSuggestion, opts *domain.SelectOptions, executor async.Executor, cb driving.SelectionCallback) async.OperationTask {
	executor = e.executorOr(executor)
	selectOpts := domain.DefaultSelectOptions()
	if opts != nil {
		selectOpts = *opts
	}
	task := async.NewRequestTask(cb)

	switch suggestion.Type {
	case domain.SuggestionTypeQuery:
		e.selectQuery(suggestion, task, executor)
		return task
	case domain.SuggestionTypeIndexableRecord, domain.SuggestionTypePlace, domain.SuggestionTypeCategory:
	default:
		deliverError(task, executor, fmt.Errorf("%w: %q", domain.ErrUnsupportedSuggestion, suggestion.Type))
		return task
	}

	ctx, release := startRequest(e.engineCore, task, executor)
	e.worker.Execute(func() {
		defer release()
		if ctx.Err() != nil {
			fail(e.engineCore, ctx, task, executor, ctx.Err())
			return
		}

		if suggestion.Type == domain.SuggestionTypeCategory {
			e.selectCategory(ctx, suggestion, task, executor)
			return
		}

		result, info, err := e.resolve(ctx, suggestion)
		if err != nil {
			fail(e.engineCore, ctx, task, executor, err)
			return
		}
		if selectOpts.AddResultToHistory {
			e.addToHistory(result)
		}
		task.DeliverOn(executor, func(cb driving.SelectionCallback) {
			cb.OnResult(suggestion, result, info)
		})
	})
	return task
}

// selectQuery runs another suggest step for a query suggestion as a child
// of task, so cancelling task cancels the nested search. The nested step
// bypasses the debouncer.
func (e *SearchEngine) selectQuery(suggestion domain.SearchSuggestion, task *async.RequestTask[driving.SelectionCallback], executor async.Executor) {
	query := suggestion.QueryText
	if query == "" {
		query = suggestion.Name
	}
	opts := suggestion.RequestOptions.Options

	child := e.search(query, opts, async.Immediate, driving.SuggestionsFuncs{
		Suggestions: func(suggestions []domain.SearchSuggestion, info domain.ResponseInfo) {
			task.DeliverOn(executor, func(cb driving.SelectionCallback) {
				cb.OnSuggestions(suggestions, info)
			})
		},
		Error: func(err error) {
			deliverError(task, executor, err)
		},
	}, false)
	task.AddChild(child)
}

// selectCategory lists the places of a category suggestion.
func (e *SearchEngine) selectCategory(ctx context.Context, suggestion domain.SearchSuggestion, task *async.RequestTask[driving.SelectionCallback], executor async.Executor) {
	category := suggestion.Category
	if category == "" {
		category = suggestion.Name
	}
	req := e.newRequest(category, domain.EndpointCategory, suggestion.RequestOptions.Options, suggestion.RequestOptions.SessionID)

	results, info, err := e.backend.Category(ctx, req)
	if err != nil {
		fail(e.engineCore, ctx, task, executor, err)
		return
	}
	info.RequestOptions = req
	task.DeliverOn(executor, func(cb driving.SelectionCallback) {
		cb.OnResults(suggestion, results, info)
	})
}

// resolve turns a place or record suggestion into a result. Records are
// resolved locally.
func (e *SearchEngine) resolve(ctx context.Context, suggestion domain.SearchSuggestion) (domain.SearchResult, domain.ResponseInfo, error) {
	req := suggestion.RequestOptions
	req.Endpoint = domain.EndpointRetrieve

	if suggestion.Type == domain.SuggestionTypeIndexableRecord {
		record, err := e.lookupRecord(suggestion)
		if err != nil {
			return domain.SearchResult{}, domain.ResponseInfo{}, err
		}
		result := record.ToResult(suggestion.RecordLayer, req, req.Options.EffectiveOrigin())
		return result, domain.ResponseInfo{RequestOptions: req}, nil
	}

	result, info, err := e.backend.Retrieve(ctx, suggestion)
	if err != nil {
		return domain.SearchResult{}, domain.ResponseInfo{}, err
	}
	e.rotateSession()
	info.RequestOptions = req
	return result, info, nil
}

// lookupRecord returns the record behind a record suggestion, preferring
// the live layer copy.
func (e *SearchEngine) lookupRecord(suggestion domain.SearchSuggestion) (domain.IndexableRecord, error) {
	if layer, ok := e.layer(suggestion.RecordLayer); ok {
		if rec, found := layer.Get(suggestion.ID); found {
			return rec, nil
		}
	}
	if suggestion.Record != nil {
		return *suggestion.Record, nil
	}
	return domain.IndexableRecord{}, fmt.Errorf("%w: record %q in layer %q", domain.ErrNotFound, suggestion.ID, suggestion.RecordLayer)
}

// addToHistory records a result. Failures are logged, not reported.
func (e *SearchEngine) addToHistory(result domain.SearchResult) {
	if e.history == nil {
		return
	}
	if err := e.history.AddResult(e.ctx, result); err != nil {
		logger.Warn("search: failed to add %q to history: %v", result.Name, err)
	}
}

// SelectBatch resolves suggestions that came from the same request. Query
// and category suggestions are skipped; the rest resolve concurrently and
// are delivered in input order.
func (e *SearchEngine) SelectBatch(suggestions []domain.SearchSuggestion, executor async.Executor, cb driving.MultipleSelectionCallback) async.OperationTask {
	executor = e.executorOr(executor)
	task := async.NewRequestTask(cb)

	if len(suggestions) == 0 {
		deliverError(task, executor, fmt.Errorf("%w: no suggestions to select", domain.ErrInvalidInput))
		return task
	}
	origin := suggestions[0].RequestOptions
	for _, s := range suggestions[1:] {
		if !origin.SameOrigin(s.RequestOptions) {
			deliverError(task, executor, domain.ErrMixedOriginSuggestions)
			return task
		}
	}

	var resolvable []domain.SearchSuggestion
	for _, s := range suggestions {
		if s.IsBatchResolvable() {
			resolvable = append(resolvable, s)
		}
	}

	req := origin
	req.Endpoint = domain.EndpointRetrieve
	ctx, release := startRequest(e.engineCore, task, executor)

	e.worker.Execute(func() {
		defer release()
		if ctx.Err() != nil {
			fail(e.engineCore, ctx, task, executor, ctx.Err())
			return
		}

		results := make([]domain.SearchResult, len(resolvable))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(batchConcurrency)
		for i, s := range resolvable {
			g.Go(func() error {
				result, _, err := e.resolve(gctx, s)
				if err != nil {
					return fmt.Errorf("select %q: %w", s.Name, err)
				}
				results[i] = result
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			fail(e.engineCore, ctx, task, executor, err)
			return
		}

		info := domain.ResponseInfo{RequestOptions: req, IsReproducible: true}
		task.DeliverOn(executor, func(cb driving.MultipleSelectionCallback) {
			cb.OnResults(resolvable, results, info)
		})
	})
	return task
}

// Close stops pending debounce timers, then closes the engine. Searches
// still waiting out their window receive a shutdown cancellation.
func (e *SearchEngine) Close() error {
	e.debounce.stop()
	return e.engineCore.Close()
}

// ReverseGeocoding finds places at a coordinate.
func (e *SearchEngine) ReverseGeocoding(opts domain.ReverseGeoOptions, executor async.Executor, cb driving.SearchCallback) async.OperationTask {
	return reverseGeocode(e.engineCore, e.backend, opts, executor, cb)
}

// RegisterDataProvider makes provider's records searchable by this engine.
func (e *SearchEngine) RegisterDataProvider(provider driven.IndexableDataProvider, executor async.Executor, cb func(error)) async.OperationTask {
	return e.changeProvider(e, provider, true, executor, cb)
}

// UnregisterDataProvider removes provider's records from this engine.
func (e *SearchEngine) UnregisterDataProvider(provider driven.IndexableDataProvider, executor async.Executor, cb func(error)) async.OperationTask {
	return e.changeProvider(e, provider, false, executor, cb)
}

// reverseGeocode runs a backend reverse request for any engine.
func reverseGeocode(c *engineCore, backend driven.SearchBackend, opts domain.ReverseGeoOptions, executor async.Executor, cb driving.SearchCallback) async.OperationTask {
	executor = c.executorOr(executor)
	task := async.NewRequestTask(cb)

	if err := opts.Validate(); err != nil {
		deliverError(task, executor, err)
		return task
	}
	req := c.newRequest(opts.Center.String(), domain.EndpointReverse, domain.SearchOptions{
		Countries: opts.Countries,
		Languages: opts.Languages,
		Limit:     opts.Limit,
		Types:     opts.Types,
	}, "")
	ctx, release := startRequest(c, task, executor)

	c.worker.Execute(func() {
		defer release()
		if ctx.Err() != nil {
			fail(c, ctx, task, executor, ctx.Err())
			return
		}
		results, info, err := backend.Reverse(ctx, opts, req)
		if err != nil {
			fail(c, ctx, task, executor, err)
			return
		}
		info.RequestOptions = req
		task.DeliverOn(executor, func(cb driving.SearchCallback) {
			cb.OnResults(results, info)
		})
	})
	return task
}
