package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	indexmem "github.com/custodia-labs/geosearch/internal/adapters/driven/index/memory"
	storagemem "github.com/custodia-labs/geosearch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/geosearch/internal/core/async"
	"github.com/custodia-labs/geosearch/internal/core/domain"
)

var (
	berlin      = point(13.4050, 52.5200)
	cafeCentral = domain.IndexableRecord{
		ID:         "fav-central",
		Name:       "Café Central",
		Coordinate: *point(13.4051, 52.5201),
		Categories: []string{"cafe"},
		Timestamp:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	cafeEuropa = domain.IndexableRecord{
		ID:         "fav-europa",
		Name:       "Café Europa",
		Coordinate: *point(13.5, 52.6),
		Categories: []string{"cafe"},
		Timestamp:  time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
)

type searchFixture struct {
	engine    *SearchEngine
	backend   *mockBackend
	history   *RecordProvider
	favorites *RecordProvider
}

func newSearchFixture(t *testing.T, opts EngineOptions, favorites ...domain.IndexableRecord) *searchFixture {
	t.Helper()
	ctx := context.Background()

	store := storagemem.NewRecordStore()
	for _, rec := range favorites {
		require.NoError(t, store.Upsert(ctx, "favorites", rec))
	}
	f := &searchFixture{
		backend:   &mockBackend{},
		history:   NewHistoryProvider(store, 10),
		favorites: NewFavoritesProvider(store),
	}
	if opts.Worker == nil {
		opts.Worker = async.Immediate
	}
	if opts.Callbacks == nil {
		opts.Callbacks = async.Immediate
	}
	registry := NewDataProvidersRegistry(indexmem.Factory)
	f.engine = NewSearchEngine(f.backend, registry, f.history, opts)
	t.Cleanup(func() { _ = f.engine.Close() })

	for _, p := range []*RecordProvider{f.favorites, f.history} {
		cb, errs := errRecorder()
		f.engine.RegisterDataProvider(p, async.Immediate, cb)
		require.NoError(t, await(t, errs))
	}
	return f
}

func TestSearchEngine_Search_MergesRecordsFirst(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{}, cafeCentral)
	f.backend.suggestFn = func(_ context.Context, _ domain.RequestOptions) ([]domain.SearchSuggestion, domain.ResponseInfo, error) {
		return []domain.SearchSuggestion{
			remoteSuggestion("r1", "Café Einstein", point(13.39, 52.51), 0),
			remoteSuggestion("r2", "Cafe Central", point(13.4052, 52.5201), 1),
			remoteSuggestion("fav-central", "Central", point(10, 50), 2),
			remoteSuggestion("r3", "Café Central", point(11.0, 48.0), 3),
		}, domain.ResponseInfo{IsReproducible: true}, nil
	}
	cb, ch := suggestionsRecorder()

	f.engine.Search("café", domain.SearchOptions{Proximity: berlin}, nil, cb)

	out := await(t, ch)
	require.NoError(t, out.err)
	ids := make([]string, 0, len(out.suggestions))
	for _, s := range out.suggestions {
		ids = append(ids, s.ID)
	}
	// r2 duplicates the record by name and position, fav-central by ID;
	// r3 has the same name but is far away.
	assert.Equal(t, []string{"fav-central", "r1", "r3"}, ids)
	assert.Equal(t, domain.SuggestionTypeIndexableRecord, out.suggestions[0].Type)
	assert.Equal(t, "favorites", out.suggestions[0].RecordLayer)
	require.NotNil(t, out.suggestions[0].Distance)
	assert.Less(t, *out.suggestions[0].Distance, 20.0)
	assert.False(t, out.info.IsReproducible)
	assert.Equal(t, "café", out.info.RequestOptions.Query)
	assert.NotEmpty(t, out.info.RequestOptions.RequestID)
}

func TestSearchEngine_Search_AppliesLimit(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{}, cafeCentral, cafeEuropa)
	f.backend.suggestFn = func(_ context.Context, _ domain.RequestOptions) ([]domain.SearchSuggestion, domain.ResponseInfo, error) {
		return []domain.SearchSuggestion{
			remoteSuggestion("r1", "Café One", point(1, 1), 0),
			remoteSuggestion("r2", "Café Two", point(2, 2), 1),
		}, domain.ResponseInfo{}, nil
	}
	cb, ch := suggestionsRecorder()

	f.engine.Search("cafe", domain.SearchOptions{Limit: 3}, nil, cb)

	out := await(t, ch)
	require.NoError(t, out.err)
	require.Len(t, out.suggestions, 3)
	assert.Equal(t, "r1", out.suggestions[2].ID)
}

func TestSearchEngine_Search_DistanceThreshold(t *testing.T) {
	threshold := 1000.0
	tests := []struct {
		name string
		opts domain.SearchOptions
		want []string
	}{
		{
			name: "origin filters far records",
			opts: domain.SearchOptions{Origin: berlin, IndexableRecordsDistanceThreshold: &threshold},
			want: []string{"fav-central"},
		},
		{
			name: "proximity used when origin unset",
			opts: domain.SearchOptions{Proximity: berlin, IndexableRecordsDistanceThreshold: &threshold},
			want: []string{"fav-central"},
		},
		{
			name: "no origin ignores threshold",
			opts: domain.SearchOptions{IndexableRecordsDistanceThreshold: &threshold},
			want: []string{"fav-central", "fav-europa"},
		},
		{
			name: "records ignored",
			opts: domain.SearchOptions{Proximity: berlin, IgnoreIndexableRecords: true},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSearchFixture(t, EngineOptions{}, cafeCentral, cafeEuropa)
			cb, ch := suggestionsRecorder()

			f.engine.Search("cafe", tt.opts, nil, cb)

			out := await(t, ch)
			require.NoError(t, out.err)
			ids := []string{}
			for _, s := range out.suggestions {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSearchEngine_Search_OrdersByDistanceWithinLayer(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{}, cafeEuropa, cafeCentral)
	cb, ch := suggestionsRecorder()

	f.engine.Search("cafe", domain.SearchOptions{Origin: point(13.5, 52.6)}, nil, cb)

	out := await(t, ch)
	require.NoError(t, out.err)
	require.Len(t, out.suggestions, 2)
	assert.Equal(t, "fav-europa", out.suggestions[0].ID)
}

func TestSearchEngine_Search_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		query string
		opts  domain.SearchOptions
	}{
		{"empty query", "  ", domain.SearchOptions{}},
		{"negative limit", "x", domain.SearchOptions{Limit: -1}},
		{"bad proximity", "x", domain.SearchOptions{Proximity: point(200, 0)}},
		{"bad language", "x", domain.SearchOptions{Languages: []string{"not a tag!"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSearchFixture(t, EngineOptions{})
			cb, ch := suggestionsRecorder()

			f.engine.Search(tt.query, tt.opts, nil, cb)

			out := await(t, ch)
			assert.ErrorIs(t, out.err, domain.ErrInvalidInput)
			assert.Equal(t, 0, f.backend.suggestCount())
		})
	}
}

func TestSearchEngine_Search_BackendError(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{}, cafeCentral)
	f.backend.suggestFn = func(_ context.Context, _ domain.RequestOptions) ([]domain.SearchSuggestion, domain.ResponseInfo, error) {
		return nil, domain.ResponseInfo{}, &domain.RequestError{StatusCode: 401, Message: "Not Authorized"}
	}
	cb, ch := suggestionsRecorder()

	f.engine.Search("cafe", domain.SearchOptions{}, nil, cb)

	out := await(t, ch)
	var reqErr *domain.RequestError
	require.True(t, errors.As(out.err, &reqErr))
	assert.Equal(t, 401, reqErr.StatusCode)
	assert.False(t, domain.IsCancelled(out.err))
}

func TestSearchEngine_Search_CancelSuppressesCallback(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{Worker: async.Goroutine})
	entered := make(chan struct{})
	ctxDone := make(chan struct{})
	f.backend.suggestFn = func(ctx context.Context, _ domain.RequestOptions) ([]domain.SearchSuggestion, domain.ResponseInfo, error) {
		close(entered)
		<-ctx.Done()
		close(ctxDone)
		return nil, domain.ResponseInfo{}, ctx.Err()
	}
	cb, ch := suggestionsRecorder()

	task := f.engine.Search("cafe", domain.SearchOptions{}, nil, cb)
	<-entered
	task.Cancel()

	await(t, ctxDone)
	assertNothing(t, ch, 100*time.Millisecond)
	assert.True(t, task.IsCancelled())
	assert.False(t, task.IsDone())
}

func TestSearchEngine_Search_Debounce(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{Worker: async.Goroutine})
	opts := domain.SearchOptions{RequestDebounce: 100 * time.Millisecond}
	first, firstCh := suggestionsRecorder()
	second, secondCh := suggestionsRecorder()

	f.engine.Search("caf", opts, nil, first)
	f.engine.Search("cafe", opts, nil, second)

	out := await(t, firstCh)
	var cancelled *domain.CancellationError
	require.True(t, errors.As(out.err, &cancelled))
	assert.Equal(t, domain.CancellationReasonDebounce, cancelled.Reason)
	assert.True(t, domain.IsCancelled(out.err))

	out = await(t, secondCh)
	require.NoError(t, out.err)
	assert.Equal(t, 1, f.backend.suggestCount())
	assert.Equal(t, "cafe", f.backend.suggestCalls[0].Query)
}

func TestSearchEngine_Search_OutsideDebounceWindow(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{})
	opts := domain.SearchOptions{RequestDebounce: 10 * time.Millisecond}
	first, firstCh := suggestionsRecorder()
	second, secondCh := suggestionsRecorder()

	f.engine.Search("caf", opts, nil, first)
	require.NoError(t, await(t, firstCh).err)
	time.Sleep(20 * time.Millisecond)
	f.engine.Search("cafe", opts, nil, second)

	require.NoError(t, await(t, secondCh).err)
	assert.Equal(t, 2, f.backend.suggestCount())
}

func TestSearchEngine_Select_Record(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{}, cafeCentral)
	cb, ch := suggestionsRecorder()
	f.engine.Search("central", domain.SearchOptions{}, nil, cb)
	suggestions := await(t, ch).suggestions
	require.Len(t, suggestions, 1)

	sel, selCh := selectionRecorder()
	f.engine.Select(suggestions[0], nil, nil, sel)

	out := await(t, selCh)
	require.NoError(t, out.err)
	require.NotNil(t, out.result)
	assert.Equal(t, "Café Central", out.result.Name)
	assert.Equal(t, 0, f.backend.retrieveCount())

	history, err := f.history.List(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "fav-central", history[0].ID)
}

func TestSearchEngine_Select_Place(t *testing.T) {
	tests := []struct {
		name        string
		opts        *domain.SelectOptions
		wantHistory int
	}{
		{"default adds to history", nil, 1},
		{"history disabled", &domain.SelectOptions{AddResultToHistory: false}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSearchFixture(t, EngineOptions{})
			place := remoteSuggestion("p1", "Brandenburger Tor", point(13.3777, 52.5163), 0)
			sel, ch := selectionRecorder()

			f.engine.Select(place, tt.opts, nil, sel)

			out := await(t, ch)
			require.NoError(t, out.err)
			require.NotNil(t, out.result)
			assert.Equal(t, "p1", out.result.ID)
			assert.Equal(t, 1, f.backend.retrieveCount())

			history, err := f.history.List(context.Background())
			require.NoError(t, err)
			assert.Len(t, history, tt.wantHistory)
		})
	}
}

func TestSearchEngine_Select_PlaceRetrieveError(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{})
	f.backend.retrieveFn = func(_ context.Context, _ domain.SearchSuggestion) (domain.SearchResult, domain.ResponseInfo, error) {
		return domain.SearchResult{}, domain.ResponseInfo{}, domain.ErrNetwork
	}
	sel, ch := selectionRecorder()

	f.engine.Select(remoteSuggestion("p1", "x", point(0, 0), 0), nil, nil, sel)

	out := await(t, ch)
	assert.ErrorIs(t, out.err, domain.ErrNetwork)
	history, _ := f.history.List(context.Background())
	assert.Empty(t, history)
}

func TestSearchEngine_Select_Query(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{})
	f.backend.suggestFn = func(_ context.Context, req domain.RequestOptions) ([]domain.SearchSuggestion, domain.ResponseInfo, error) {
		return []domain.SearchSuggestion{remoteSuggestion("r1", req.Query+" result", point(1, 1), 0)}, domain.ResponseInfo{}, nil
	}
	query := domain.SearchSuggestion{
		ID:        "q1",
		Type:      domain.SuggestionTypeQuery,
		Name:      "pizza",
		QueryText: "pizza berlin",
	}
	sel, ch := selectionRecorder()

	f.engine.Select(query, nil, nil, sel)

	out := await(t, ch)
	require.NoError(t, out.err)
	require.Len(t, out.suggestions, 1)
	assert.Equal(t, "pizza berlin result", out.suggestions[0].Name)
}

func TestSearchEngine_Select_QueryIgnoresDefaultDebounce(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{
		Worker:   async.Goroutine,
		Defaults: domain.SearchSettings{RequestDebounce: 300 * time.Millisecond},
	})
	f.backend.suggestFn = func(_ context.Context, req domain.RequestOptions) ([]domain.SearchSuggestion, domain.ResponseInfo, error) {
		return []domain.SearchSuggestion{remoteSuggestion("r1", req.Query+" result", point(1, 1), 0)}, domain.ResponseInfo{}, nil
	}
	typed, typedCh := suggestionsRecorder()
	f.engine.Search("caf", domain.SearchOptions{}, nil, typed)

	query := domain.SearchSuggestion{ID: "q1", Type: domain.SuggestionTypeQuery, Name: "pizza", QueryText: "pizza berlin"}
	sel, ch := selectionRecorder()
	started := time.Now()
	f.engine.Select(query, nil, nil, sel)

	out := await(t, ch)
	require.NoError(t, out.err)
	assert.Less(t, time.Since(started), 300*time.Millisecond)
	require.Len(t, out.suggestions, 1)
	assert.Equal(t, "pizza berlin result", out.suggestions[0].Name)

	// The search still waiting in its window is left alone.
	typedOut := await(t, typedCh)
	require.NoError(t, typedOut.err)
	assert.Equal(t, "caf result", typedOut.suggestions[0].Name)
	assert.Equal(t, 2, f.backend.suggestCount())
}

func TestSearchEngine_Select_Category(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{})
	f.backend.categoryFn = func(_ context.Context, req domain.RequestOptions) ([]domain.SearchResult, domain.ResponseInfo, error) {
		return []domain.SearchResult{{ID: "c1", Name: req.Query}}, domain.ResponseInfo{}, nil
	}
	category := domain.SearchSuggestion{ID: "cat", Type: domain.SuggestionTypeCategory, Name: "Cafés", Category: "cafe"}
	sel, ch := selectionRecorder()

	f.engine.Select(category, nil, nil, sel)

	out := await(t, ch)
	require.NoError(t, out.err)
	require.Len(t, out.results, 1)
	assert.Equal(t, "cafe", out.results[0].Name)
}

func TestSearchEngine_Select_Unsupported(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{})
	sel, ch := selectionRecorder()

	f.engine.Select(domain.SearchSuggestion{Type: "brand"}, nil, nil, sel)

	assert.ErrorIs(t, await(t, ch).err, domain.ErrUnsupportedSuggestion)
}

func TestSearchEngine_SelectBatch(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{}, cafeCentral)
	f.backend.suggestFn = func(_ context.Context, _ domain.RequestOptions) ([]domain.SearchSuggestion, domain.ResponseInfo, error) {
		return []domain.SearchSuggestion{
			remoteSuggestion("r1", "Café One", point(1, 1), 0),
			{ID: "q", Type: domain.SuggestionTypeQuery, Name: "café near me", QueryText: "cafe"},
			remoteSuggestion("r2", "Café Two", point(2, 2), 2),
		}, domain.ResponseInfo{}, nil
	}
	cb, ch := suggestionsRecorder()
	f.engine.Search("cafe", domain.SearchOptions{}, nil, cb)
	suggestions := await(t, ch).suggestions
	require.Len(t, suggestions, 4)

	batch, batchCh := batchRecorder()
	f.engine.SelectBatch(suggestions, nil, batch)

	out := await(t, batchCh)
	require.NoError(t, out.err)
	require.Len(t, out.results, 3)
	require.Len(t, out.suggestions, 3)
	assert.Equal(t, "fav-central", out.results[0].ID)
	assert.Equal(t, "r1", out.results[1].ID)
	assert.Equal(t, "r2", out.results[2].ID)
	assert.Equal(t, 2, f.backend.retrieveCount())
}

func TestSearchEngine_SelectBatch_Errors(t *testing.T) {
	a := remoteSuggestion("a", "A", point(1, 1), 0)
	a.RequestOptions.RequestID = "req-1"
	b := remoteSuggestion("b", "B", point(2, 2), 0)
	b.RequestOptions.RequestID = "req-2"

	tests := []struct {
		name        string
		suggestions []domain.SearchSuggestion
		want        error
	}{
		{"empty", nil, domain.ErrInvalidInput},
		{"mixed origins", []domain.SearchSuggestion{a, b}, domain.ErrMixedOriginSuggestions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSearchFixture(t, EngineOptions{})
			batch, ch := batchRecorder()

			f.engine.SelectBatch(tt.suggestions, nil, batch)

			assert.ErrorIs(t, await(t, ch).err, tt.want)
			assert.Equal(t, 0, f.backend.retrieveCount())
		})
	}
}

func TestSearchEngine_SelectBatch_FailsOnRetrieveError(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{})
	f.backend.retrieveFn = func(_ context.Context, s domain.SearchSuggestion) (domain.SearchResult, domain.ResponseInfo, error) {
		if s.ID == "b" {
			return domain.SearchResult{}, domain.ResponseInfo{}, &domain.RequestError{StatusCode: 500}
		}
		return domain.SearchResult{ID: s.ID}, domain.ResponseInfo{}, nil
	}
	a := remoteSuggestion("a", "A", point(1, 1), 0)
	b := remoteSuggestion("b", "B", point(2, 2), 1)
	a.RequestOptions.RequestID, b.RequestOptions.RequestID = "req", "req"
	batch, ch := batchRecorder()

	f.engine.SelectBatch([]domain.SearchSuggestion{a, b}, nil, batch)

	out := await(t, ch)
	var reqErr *domain.RequestError
	require.True(t, errors.As(out.err, &reqErr))
	assert.Equal(t, 500, reqErr.StatusCode)
}

func TestSearchEngine_ReverseGeocoding(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{})
	f.backend.reverseFn = func(_ context.Context, opts domain.ReverseGeoOptions, _ domain.RequestOptions) ([]domain.SearchResult, domain.ResponseInfo, error) {
		return []domain.SearchResult{{ID: "addr", Coordinate: opts.Center}}, domain.ResponseInfo{}, nil
	}
	cb, ch := searchRecorder()

	f.engine.ReverseGeocoding(domain.ReverseGeoOptions{Center: *berlin}, nil, cb)

	out := await(t, ch)
	require.NoError(t, out.err)
	require.Len(t, out.results, 1)
	assert.Equal(t, *berlin, out.results[0].Coordinate)
	assert.Equal(t, domain.EndpointReverse, out.info.RequestOptions.Endpoint)
}

func TestSearchEngine_ReverseGeocoding_InvalidCenter(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{})
	cb, ch := searchRecorder()

	f.engine.ReverseGeocoding(domain.ReverseGeoOptions{Center: domain.Point{Latitude: 91}}, nil, cb)

	assert.ErrorIs(t, await(t, ch).err, domain.ErrInvalidInput)
}

func TestSearchEngine_UnregisterDataProvider(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{}, cafeCentral)
	done, errs := errRecorder()

	f.engine.UnregisterDataProvider(f.favorites, nil, done)
	require.NoError(t, await(t, errs))

	cb, ch := suggestionsRecorder()
	f.engine.Search("central", domain.SearchOptions{}, nil, cb)
	out := await(t, ch)
	require.NoError(t, out.err)
	assert.Empty(t, out.suggestions)

	f.engine.UnregisterDataProvider(f.favorites, nil, done)
	assert.ErrorIs(t, await(t, errs), domain.ErrNotFound)
}

func TestSearchEngine_Close_ReportsShutdown(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{Worker: async.Goroutine})
	entered := make(chan struct{})
	f.backend.suggestFn = func(ctx context.Context, _ domain.RequestOptions) ([]domain.SearchSuggestion, domain.ResponseInfo, error) {
		close(entered)
		<-ctx.Done()
		return nil, domain.ResponseInfo{}, ctx.Err()
	}
	cb, ch := suggestionsRecorder()

	f.engine.Search("cafe", domain.SearchOptions{}, nil, cb)
	<-entered
	require.NoError(t, f.engine.Close())

	out := await(t, ch)
	var cancelled *domain.CancellationError
	require.True(t, errors.As(out.err, &cancelled))
	assert.Equal(t, domain.CancellationReasonShutdown, cancelled.Reason)
}

func TestSearchEngine_Close_DuringDebounceWindow(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{Worker: async.Goroutine})
	cb, ch := suggestionsRecorder()

	task := f.engine.Search("cafe", domain.SearchOptions{RequestDebounce: time.Second}, nil, cb)
	require.NoError(t, f.engine.Close())

	out := await(t, ch)
	var cancelled *domain.CancellationError
	require.True(t, errors.As(out.err, &cancelled))
	assert.Equal(t, domain.CancellationReasonShutdown, cancelled.Reason)
	assert.True(t, task.IsDone())
	assert.Equal(t, 0, f.backend.suggestCount())
}

func TestSearchEngine_SearchAfterClose(t *testing.T) {
	f := newSearchFixture(t, EngineOptions{Worker: async.Goroutine})
	require.NoError(t, f.engine.Close())
	cb, ch := suggestionsRecorder()

	f.engine.Search("cafe", domain.SearchOptions{RequestDebounce: time.Second}, nil, cb)

	out := await(t, ch)
	var cancelled *domain.CancellationError
	require.True(t, errors.As(out.err, &cancelled))
	assert.Equal(t, domain.CancellationReasonShutdown, cancelled.Reason)
	assert.Equal(t, 0, f.backend.suggestCount())
}
