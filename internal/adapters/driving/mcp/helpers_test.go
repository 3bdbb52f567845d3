package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geosearch/internal/adapters/driven/index/memory"
	storage "github.com/custodia-labs/geosearch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/blocking"
	"github.com/custodia-labs/geosearch/internal/core/async"
	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/services"
)

// stubBackend answers suggest with a place and a query suggestion.
type stubBackend struct {
	err error
}

func (b stubBackend) Suggest(_ context.Context, req domain.RequestOptions) ([]domain.SearchSuggestion, domain.ResponseInfo, error) {
	if b.err != nil {
		return nil, domain.ResponseInfo{}, b.err
	}
	coord := domain.NewPoint(13.369, 52.525)
	return []domain.SearchSuggestion{
		{ID: "p1", Type: domain.SuggestionTypePlace, Name: "Berlin Hbf", FullAddress: "Europaplatz 1, Berlin", Coordinate: &coord, ServerIndex: 0, RequestOptions: req},
		{ID: "q1", Type: domain.SuggestionTypeQuery, Name: "berlin cafes", QueryText: "berlin cafes", ServerIndex: 1, RequestOptions: req},
	}, domain.ResponseInfo{RequestOptions: req}, nil
}

func (stubBackend) Retrieve(_ context.Context, s domain.SearchSuggestion) (domain.SearchResult, domain.ResponseInfo, error) {
	return domain.SearchResult{
			ID: s.ID, Name: s.Name, FullAddress: s.FullAddress, Coordinate: *s.Coordinate,
			Types: []domain.ResultType{domain.ResultTypePOI}, RequestOptions: s.RequestOptions,
		},
		domain.ResponseInfo{RequestOptions: s.RequestOptions}, nil
}

func (stubBackend) Category(_ context.Context, req domain.RequestOptions) ([]domain.SearchResult, domain.ResponseInfo, error) {
	return []domain.SearchResult{
		{ID: "c1", Name: "Café Einstein", Coordinate: domain.NewPoint(13.39, 52.51), Categories: []string{"cafe"}, RequestOptions: req},
	}, domain.ResponseInfo{RequestOptions: req}, nil
}

func (stubBackend) Reverse(_ context.Context, _ domain.ReverseGeoOptions, req domain.RequestOptions) ([]domain.SearchResult, domain.ResponseInfo, error) {
	return []domain.SearchResult{
		{ID: "a1", Name: "Unter den Linden 1", Coordinate: domain.NewPoint(13.397, 52.517), Types: []domain.ResultType{domain.ResultTypeAddress}, RequestOptions: req},
	}, domain.ResponseInfo{RequestOptions: req}, nil
}

// testPorts wires real engines over backend with history and favorites
// registered as record layers.
func testPorts(t *testing.T, backend stubBackend) *Ports {
	t.Helper()
	registry := services.NewDataProvidersRegistry(memory.Factory)
	store := storage.NewRecordStore()
	history := services.NewHistoryProvider(store, 10)
	favorites := services.NewFavoritesProvider(store)
	opts := services.EngineOptions{Callbacks: async.Immediate}

	search := services.NewSearchEngine(backend, registry, history, opts)
	category := services.NewCategorySearchEngine(backend, registry, opts)
	t.Cleanup(func() {
		_ = search.Close()
		_ = category.Close()
	})

	ctx := context.Background()
	require.NoError(t, blocking.Register(ctx, search, history))
	require.NoError(t, blocking.Register(ctx, search, favorites))
	require.NoError(t, blocking.Register(ctx, category, favorites))

	return &Ports{Search: search, Category: category, History: history, Favorites: favorites}
}

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}
