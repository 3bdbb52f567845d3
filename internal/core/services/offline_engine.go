package services

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/geosearch/internal/core/async"
	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driven"
	"github.com/custodia-labs/geosearch/internal/core/ports/driving"
	"github.com/custodia-labs/geosearch/internal/logger"
)

// Ensure OfflineSearchEngine implements the interfaces.
var (
	_ driving.OfflineSearchEngine = (*OfflineSearchEngine)(nil)
	_ driven.LayerHost            = (*OfflineSearchEngine)(nil)
)

// tilesetLoadConcurrency caps parallel tileset reads at startup.
const tilesetLoadConcurrency = 4

var offlineLog = logger.For("offline")

type readyEntry struct {
	executor async.Executor
	cb       driving.EngineReadyCallback
}

type listenerEntry struct {
	executor async.Executor
	listener driving.OfflineIndexChangeListener
}

// OfflineSearchEngine searches tilesets from a TileStore. Tilesets load in
// the background; requests made before loading finishes wait for it.
type OfflineSearchEngine struct {
	*engineCore

	tiles    driven.TileStore
	newLayer driven.LayerFactory

	mu        sync.Mutex
	ready     bool
	tilesets  map[string]driven.RecordLayer
	waiting   []func()
	onReady   []readyEntry
	listeners []listenerEntry
}

// NewOfflineSearchEngine creates the engine and starts loading tilesets
// and watching the store for changes.
func NewOfflineSearchEngine(
	tiles driven.TileStore,
	registry *DataProvidersRegistry,
	newLayer driven.LayerFactory,
	opts EngineOptions,
) *OfflineSearchEngine {
	e := &OfflineSearchEngine{
		engineCore: newEngineCore(registry, opts),
		tiles:      tiles,
		newLayer:   newLayer,
		tilesets:   make(map[string]driven.RecordLayer),
	}
	e.worker.Execute(e.load)
	return e
}

// load reads every tileset, marks the engine ready and starts watching.
func (e *OfflineSearchEngine) load() {
	ctx := e.ctx
	loaded := e.loadAll(ctx)

	e.mu.Lock()
	for name, layer := range loaded {
		e.tilesets[name] = layer
	}
	e.ready = true
	waiting := e.waiting
	onReady := e.onReady
	e.waiting = nil
	e.onReady = nil
	e.mu.Unlock()

	offlineLog.Info("ready with %d tilesets", len(loaded))
	for _, entry := range onReady {
		cb := entry.cb
		entry.executor.Execute(cb.OnEngineReady)
	}
	for _, run := range waiting {
		run()
	}

	if ctx.Err() != nil {
		return
	}
	if err := e.tiles.Watch(ctx, e.onTileChange, e.notifyError); err != nil {
		offlineLog.Warn("watching tiles: %v", err)
	}
}

// loadAll reads all tilesets concurrently. A tileset that fails to load
// is logged, reported to listeners and left out; the rest still load.
func (e *OfflineSearchEngine) loadAll(ctx context.Context) map[string]driven.RecordLayer {
	names, err := e.tiles.ListTilesets(ctx)
	if err != nil {
		err = fmt.Errorf("list tilesets: %w", err)
		offlineLog.Error("loading tilesets: %v", err)
		e.notifyError(err)
		return nil
	}

	layers := make([]driven.RecordLayer, len(names))
	var g errgroup.Group
	g.SetLimit(tilesetLoadConcurrency)
	for i, name := range names {
		g.Go(func() error {
			layer, err := e.loadTileset(ctx, name)
			if err != nil && ctx.Err() != nil {
				return nil
			}
			if err != nil {
				offlineLog.Error("skipping tileset: %v", err)
				e.notifyError(err)
				return nil
			}
			layers[i] = layer
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]driven.RecordLayer, len(names))
	for i, name := range names {
		if layers[i] != nil {
			out[name] = layers[i]
		}
	}
	return out
}

func (e *OfflineSearchEngine) loadTileset(ctx context.Context, name string) (driven.RecordLayer, error) {
	tileset, err := e.tiles.LoadTileset(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load tileset %q: %w", name, err)
	}
	layer := e.newLayer(name, 0)
	layer.Upsert(tileset.Records...)
	offlineLog.Debug("loaded tileset %q (%d records)", name, layer.Size())
	return layer, nil
}

// onTileChange reloads or drops a tileset and tells listeners.
func (e *OfflineSearchEngine) onTileChange(change domain.TileChange) {
	e.worker.Execute(func() {
		if e.ctx.Err() != nil {
			return
		}
		event := domain.OfflineIndexChangeEvent{Tileset: change.Tileset}

		if change.Type == domain.TileChangeRemoved {
			e.mu.Lock()
			_, existed := e.tilesets[change.Tileset]
			delete(e.tilesets, change.Tileset)
			e.mu.Unlock()
			if !existed {
				return
			}
			event.Type = domain.IndexChangeRemoved
		} else {
			layer, err := e.loadTileset(e.ctx, change.Tileset)
			if err != nil {
				offlineLog.Warn("%v", err)
				e.notifyError(err)
				return
			}
			e.mu.Lock()
			_, existed := e.tilesets[change.Tileset]
			e.tilesets[change.Tileset] = layer
			e.mu.Unlock()
			event.Type = domain.IndexChangeAdded
			if existed {
				event.Type = domain.IndexChangeUpdated
			}
			event.Records = layer.Size()
		}

		offlineLog.Info("tileset %q %s", event.Tileset, event.Type)
		for _, entry := range e.listenerSnapshot() {
			listener := entry.listener
			entry.executor.Execute(func() { listener.OnIndexChange(event) })
		}
	})
}

func (e *OfflineSearchEngine) notifyError(err error) {
	for _, entry := range e.listenerSnapshot() {
		listener := entry.listener
		entry.executor.Execute(func() { listener.OnError(err) })
	}
}

func (e *OfflineSearchEngine) listenerSnapshot() []listenerEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]listenerEntry(nil), e.listeners...)
}

// whenReady runs fn now if tilesets are loaded, otherwise once they are.
func (e *OfflineSearchEngine) whenReady(fn func()) {
	e.mu.Lock()
	if !e.ready {
		e.waiting = append(e.waiting, fn)
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	fn()
}

// tilesetSnapshot returns the loaded tileset layers ordered by name.
func (e *OfflineSearchEngine) tilesetSnapshot() []driven.RecordLayer {
	e.mu.Lock()
	out := make([]driven.RecordLayer, 0, len(e.tilesets))
	for _, l := range e.tilesets {
		out = append(out, l)
	}
	e.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Search matches query against provider records and loaded tilesets.
func (e *OfflineSearchEngine) Search(query string, opts domain.SearchOptions, executor async.Executor, cb driving.SuggestionsCallback) async.OperationTask {
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
	req := e.newRequest(query, domain.EndpointOffline, opts, "")
	ctx, release := startRequest(e.engineCore, task, executor)

	e.whenReady(func() {
		e.worker.Execute(func() {
			defer release()
			if ctx.Err() != nil {
				fail(e.engineCore, ctx, task, executor, ctx.Err())
				return
			}
			local := localSuggestions(e.snapshot(), query, req)
			offline := e.searchTilesets(query, req)
			merged := mergeSuggestions(local, offline, opts.EffectiveLimit())
			info := domain.ResponseInfo{RequestOptions: req, IsReproducible: !hasRecords(merged)}
			task.DeliverOn(executor, func(cb driving.SuggestionsCallback) {
				cb.OnSuggestions(merged, info)
			})
		})
	})
	return task
}

// searchTilesets returns tileset matches as place suggestions, nearest
// first when an origin is known.
func (e *OfflineSearchEngine) searchTilesets(query string, req domain.RequestOptions) []domain.SearchSuggestion {
	opts := req.Options
	origin := opts.EffectiveOrigin()

	var out []domain.SearchSuggestion
	for _, layer := range e.tilesetSnapshot() {
		for _, rec := range layer.Search(query, 0) {
			if opts.BoundingBox != nil && !opts.BoundingBox.Contains(rec.Coordinate) {
				continue
			}
			s := rec.ToSuggestion(layer.Name(), req, origin)
			s.Type = domain.SuggestionTypePlace
			out = append(out, s)
		}
	}
	if origin != nil {
		sort.SliceStable(out, func(i, j int) bool { return *out[i].Distance < *out[j].Distance })
	}
	for i := range out {
		out[i].ServerIndex = i
	}
	return out
}

// Select resolves an offline or record suggestion without network access.
func (e *OfflineSearchEngine) Select(suggestion domain.SearchSuggestion, executor async.Executor, cb driving.SelectionCallback) async.OperationTask {
	executor = e.executorOr(executor)
	task := async.NewRequestTask(cb)
	ctx, release := startRequest(e.engineCore, task, executor)

	e.whenReady(func() {
		e.worker.Execute(func() {
			defer release()
			if ctx.Err() != nil {
				fail(e.engineCore, ctx, task, executor, ctx.Err())
				return
			}
			record, err := e.lookup(suggestion)
			if err != nil {
				deliverError(task, executor, err)
				return
			}
			req := suggestion.RequestOptions
			result := record.ToResult(suggestion.RecordLayer, req, req.Options.EffectiveOrigin())
			info := domain.ResponseInfo{RequestOptions: req, IsReproducible: true}
			task.DeliverOn(executor, func(cb driving.SelectionCallback) {
				cb.OnResult(suggestion, result, info)
			})
		})
	})
	return task
}

func (e *OfflineSearchEngine) lookup(s domain.SearchSuggestion) (domain.IndexableRecord, error) {
	switch s.Type {
	case domain.SuggestionTypeIndexableRecord:
		if layer, ok := e.layer(s.RecordLayer); ok {
			if rec, found := layer.Get(s.ID); found {
				return rec, nil
			}
		}
	case domain.SuggestionTypePlace:
		e.mu.Lock()
		layer, ok := e.tilesets[s.RecordLayer]
		e.mu.Unlock()
		if ok {
			if rec, found := layer.Get(s.ID); found {
				return rec, nil
			}
		}
	default:
		return domain.IndexableRecord{}, fmt.Errorf("%w: %q offline", domain.ErrUnsupportedSuggestion, s.Type)
	}
	if s.Record != nil {
		return *s.Record, nil
	}
	return domain.IndexableRecord{}, fmt.Errorf("%w: %q in %q", domain.ErrNotFound, s.ID, s.RecordLayer)
}

// ReverseGeocoding returns up to limit tileset places within radius meters
// of center, nearest first.
func (e *OfflineSearchEngine) ReverseGeocoding(center domain.Point, radius float64, limit int, executor async.Executor, cb driving.SearchCallback) async.OperationTask {
	executor = e.executorOr(executor)
	task := async.NewRequestTask(cb)

	if err := center.Validate(); err != nil {
		deliverError(task, executor, fmt.Errorf("center: %w", err))
		return task
	}
	if radius <= 0 {
		deliverError(task, executor, fmt.Errorf("%w: radius must be positive", domain.ErrInvalidInput))
		return task
	}
	if limit <= 0 {
		limit = domain.DefaultLimit
	}
	req := e.newRequest(center.String(), domain.EndpointOffline, domain.SearchOptions{Origin: &center, Limit: limit}, "")
	ctx, release := startRequest(e.engineCore, task, executor)

	e.whenReady(func() {
		e.worker.Execute(func() {
			defer release()
			if ctx.Err() != nil {
				fail(e.engineCore, ctx, task, executor, ctx.Err())
				return
			}
			type hit struct {
				layer    string
				record   domain.IndexableRecord
				distance float64
			}
			var hits []hit
			for _, layer := range e.tilesetSnapshot() {
				for _, rec := range layer.Records() {
					if d := center.DistanceTo(rec.Coordinate); d <= radius {
						hits = append(hits, hit{layer: layer.Name(), record: rec, distance: d})
					}
				}
			}
			sort.SliceStable(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })
			if len(hits) > limit {
				hits = hits[:limit]
			}

			results := make([]domain.SearchResult, 0, len(hits))
			for _, h := range hits {
				results = append(results, h.record.ToResult(h.layer, req, &center))
			}
			info := domain.ResponseInfo{RequestOptions: req, IsReproducible: true}
			task.DeliverOn(executor, func(cb driving.SearchCallback) {
				cb.OnResults(results, info)
			})
		})
	})
	return task
}

// AddEngineReadyCallback runs cb on executor once tilesets are loaded,
// right away if they already are.
func (e *OfflineSearchEngine) AddEngineReadyCallback(executor async.Executor, cb driving.EngineReadyCallback) {
	executor = e.executorOr(executor)
	e.mu.Lock()
	if !e.ready {
		e.onReady = append(e.onReady, readyEntry{executor: executor, cb: cb})
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	executor.Execute(cb.OnEngineReady)
}

// RemoveEngineReadyCallback drops a callback that has not run yet.
func (e *OfflineSearchEngine) RemoveEngineReadyCallback(cb driving.EngineReadyCallback) {
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.onReady[:0]
	for _, entry := range e.onReady {
		if !sameCallback(entry.cb, cb) {
			kept = append(kept, entry)
		}
	}
	e.onReady = kept
}

// AddIndexChangeListener registers a listener for tileset changes.
func (e *OfflineSearchEngine) AddIndexChangeListener(executor async.Executor, listener driving.OfflineIndexChangeListener) {
	executor = e.executorOr(executor)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, listenerEntry{executor: executor, listener: listener})
}

// RemoveIndexChangeListener unregisters a listener.
func (e *OfflineSearchEngine) RemoveIndexChangeListener(listener driving.OfflineIndexChangeListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := make([]listenerEntry, 0, len(e.listeners))
	for _, entry := range e.listeners {
		if !sameCallback(entry.listener, listener) {
			kept = append(kept, entry)
		}
	}
	e.listeners = kept
}

// Tilesets lists the loaded tileset names.
func (e *OfflineSearchEngine) Tilesets() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.tilesets))
	for name := range e.tilesets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsReady reports whether tilesets have been loaded.
func (e *OfflineSearchEngine) IsReady() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// RegisterDataProvider makes provider's records searchable offline.
func (e *OfflineSearchEngine) RegisterDataProvider(provider driven.IndexableDataProvider, executor async.Executor, cb func(error)) async.OperationTask {
	return e.changeProvider(e, provider, true, executor, cb)
}

// UnregisterDataProvider removes provider's records from this engine.
func (e *OfflineSearchEngine) UnregisterDataProvider(provider driven.IndexableDataProvider, executor async.Executor, cb func(error)) async.OperationTask {
	return e.changeProvider(e, provider, false, executor, cb)
}

// sameCallback compares callbacks by identity. Values of uncomparable
// types, such as function adapters, never match.
func sameCallback(a, b any) bool {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
