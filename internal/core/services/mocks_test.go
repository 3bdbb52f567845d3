package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driven"
	"github.com/custodia-labs/geosearch/internal/core/ports/driving"
)

// mockBackend is a configurable driven.SearchBackend.
type mockBackend struct {
	mu sync.Mutex

	suggestFn  func(ctx context.Context, req domain.RequestOptions) ([]domain.SearchSuggestion, domain.ResponseInfo, error)
	retrieveFn func(ctx context.Context, s domain.SearchSuggestion) (domain.SearchResult, domain.ResponseInfo, error)
	categoryFn func(ctx context.Context, req domain.RequestOptions) ([]domain.SearchResult, domain.ResponseInfo, error)
	reverseFn  func(ctx context.Context, opts domain.ReverseGeoOptions, req domain.RequestOptions) ([]domain.SearchResult, domain.ResponseInfo, error)

	suggestCalls  []domain.RequestOptions
	retrieveCalls []domain.SearchSuggestion
	categoryCalls []domain.RequestOptions
	reverseCalls  []domain.ReverseGeoOptions
}

func (m *mockBackend) Suggest(ctx context.Context, req domain.RequestOptions) ([]domain.SearchSuggestion, domain.ResponseInfo, error) {
	m.mu.Lock()
	m.suggestCalls = append(m.suggestCalls, req)
	fn := m.suggestFn
	m.mu.Unlock()
	if fn == nil {
		return nil, domain.ResponseInfo{IsReproducible: true}, nil
	}
	return fn(ctx, req)
}

func (m *mockBackend) Retrieve(ctx context.Context, s domain.SearchSuggestion) (domain.SearchResult, domain.ResponseInfo, error) {
	m.mu.Lock()
	m.retrieveCalls = append(m.retrieveCalls, s)
	fn := m.retrieveFn
	m.mu.Unlock()
	if fn == nil {
		return domain.SearchResult{ID: s.ID, Name: s.Name, Coordinate: *s.Coordinate}, domain.ResponseInfo{IsReproducible: true}, nil
	}
	return fn(ctx, s)
}

func (m *mockBackend) Category(ctx context.Context, req domain.RequestOptions) ([]domain.SearchResult, domain.ResponseInfo, error) {
	m.mu.Lock()
	m.categoryCalls = append(m.categoryCalls, req)
	fn := m.categoryFn
	m.mu.Unlock()
	if fn == nil {
		return nil, domain.ResponseInfo{IsReproducible: true}, nil
	}
	return fn(ctx, req)
}

func (m *mockBackend) Reverse(ctx context.Context, opts domain.ReverseGeoOptions, req domain.RequestOptions) ([]domain.SearchResult, domain.ResponseInfo, error) {
	m.mu.Lock()
	m.reverseCalls = append(m.reverseCalls, opts)
	fn := m.reverseFn
	m.mu.Unlock()
	if fn == nil {
		return nil, domain.ResponseInfo{IsReproducible: true}, nil
	}
	return fn(ctx, opts, req)
}

func (m *mockBackend) suggestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.suggestCalls)
}

func (m *mockBackend) retrieveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.retrieveCalls)
}

// mockHost is a driven.LayerHost that records its layers.
type mockHost struct {
	mu     sync.Mutex
	layers map[string]driven.RecordLayer
}

func newMockHost() *mockHost {
	return &mockHost{layers: make(map[string]driven.RecordLayer)}
}

func (h *mockHost) AddLayer(layer driven.RecordLayer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.layers[layer.Name()] = layer
}

func (h *mockHost) RemoveLayer(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.layers, name)
}

func (h *mockHost) layer(name string) (driven.RecordLayer, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.layers[name]
	return l, ok
}

// mockTileStore serves tilesets from memory. release, when set, blocks
// ListTilesets until closed.
type mockTileStore struct {
	mu       sync.Mutex
	tilesets map[string]*domain.Tileset
	release  chan struct{}
	onChange func(domain.TileChange)
	listErr  error
	loadErrs map[string]error
}

func newMockTileStore(tilesets ...*domain.Tileset) *mockTileStore {
	s := &mockTileStore{tilesets: make(map[string]*domain.Tileset)}
	for _, ts := range tilesets {
		s.tilesets[ts.Name] = ts
	}
	return s
}

func (s *mockTileStore) ListTilesets(_ context.Context) ([]string, error) {
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	names := make([]string, 0, len(s.tilesets))
	for name := range s.tilesets {
		names = append(names, name)
	}
	return names, nil
}

func (s *mockTileStore) LoadTileset(_ context.Context, name string) (*domain.Tileset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadErrs[name]; err != nil {
		return nil, err
	}
	ts, ok := s.tilesets[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ts, nil
}

func (s *mockTileStore) Watch(_ context.Context, onChange func(domain.TileChange), _ func(error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = onChange
	return nil
}

func (s *mockTileStore) Close() error {
	return nil
}

func (s *mockTileStore) put(ts *domain.Tileset) {
	s.mu.Lock()
	s.tilesets[ts.Name] = ts
	onChange := s.onChange
	s.mu.Unlock()
	onChange(domain.TileChange{Type: domain.TileChangeWritten, Tileset: ts.Name})
}

func (s *mockTileStore) remove(name string) {
	s.mu.Lock()
	delete(s.tilesets, name)
	onChange := s.onChange
	s.mu.Unlock()
	onChange(domain.TileChange{Type: domain.TileChangeRemoved, Tileset: name})
}

// Callback recorders.

type suggestionsOutcome struct {
	suggestions []domain.SearchSuggestion
	info        domain.ResponseInfo
	err         error
}

func suggestionsRecorder() (driving.SuggestionsFuncs, chan suggestionsOutcome) {
	ch := make(chan suggestionsOutcome, 8)
	return driving.SuggestionsFuncs{
		Suggestions: func(s []domain.SearchSuggestion, info domain.ResponseInfo) {
			ch <- suggestionsOutcome{suggestions: s, info: info}
		},
		Error: func(err error) { ch <- suggestionsOutcome{err: err} },
	}, ch
}

type selectionOutcome struct {
	suggestions []domain.SearchSuggestion
	result      *domain.SearchResult
	results     []domain.SearchResult
	err         error
}

func selectionRecorder() (driving.SelectionFuncs, chan selectionOutcome) {
	ch := make(chan selectionOutcome, 8)
	return driving.SelectionFuncs{
		Suggestions: func(s []domain.SearchSuggestion, _ domain.ResponseInfo) {
			ch <- selectionOutcome{suggestions: s}
		},
		Result: func(_ domain.SearchSuggestion, r domain.SearchResult, _ domain.ResponseInfo) {
			ch <- selectionOutcome{result: &r}
		},
		Results: func(_ domain.SearchSuggestion, r []domain.SearchResult, _ domain.ResponseInfo) {
			ch <- selectionOutcome{results: r}
		},
		Error: func(err error) { ch <- selectionOutcome{err: err} },
	}, ch
}

type resultsOutcome struct {
	suggestions []domain.SearchSuggestion
	results     []domain.SearchResult
	info        domain.ResponseInfo
	err         error
}

func searchRecorder() (driving.SearchFuncs, chan resultsOutcome) {
	ch := make(chan resultsOutcome, 8)
	return driving.SearchFuncs{
		Results: func(r []domain.SearchResult, info domain.ResponseInfo) {
			ch <- resultsOutcome{results: r, info: info}
		},
		Error: func(err error) { ch <- resultsOutcome{err: err} },
	}, ch
}

func batchRecorder() (driving.MultipleSelectionFuncs, chan resultsOutcome) {
	ch := make(chan resultsOutcome, 8)
	return driving.MultipleSelectionFuncs{
		Results: func(s []domain.SearchSuggestion, r []domain.SearchResult, info domain.ResponseInfo) {
			ch <- resultsOutcome{suggestions: s, results: r, info: info}
		},
		Error: func(err error) { ch <- resultsOutcome{err: err} },
	}, ch
}

func errRecorder() (func(error), chan error) {
	ch := make(chan error, 8)
	return func(err error) { ch <- err }, ch
}

func await[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	var zero T
	return zero
}

func assertNothing[T any](t *testing.T, ch <-chan T, wait time.Duration) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected callback: %+v", v)
	case <-time.After(wait):
	}
}

func point(lon, lat float64) *domain.Point {
	return &domain.Point{Longitude: lon, Latitude: lat}
}

func remoteSuggestion(id, name string, at *domain.Point, index int) domain.SearchSuggestion {
	return domain.SearchSuggestion{
		ID:          id,
		Type:        domain.SuggestionTypePlace,
		Name:        name,
		Coordinate:  at,
		ServerIndex: index,
	}
}
