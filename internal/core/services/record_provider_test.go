package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	indexmem "github.com/custodia-labs/geosearch/internal/adapters/driven/index/memory"
	storagemem "github.com/custodia-labs/geosearch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/geosearch/internal/core/domain"
)

func TestRecordProvider_AttachLoadsRecords(t *testing.T) {
	ctx := context.Background()
	store := storagemem.NewRecordStore()
	require.NoError(t, store.Upsert(ctx, "favorites", cafeCentral))
	provider := NewFavoritesProvider(store)
	layer := indexmem.NewLayer("favorites", provider.Priority())

	require.NoError(t, provider.Attach(ctx, layer))

	assert.Equal(t, 1, layer.Size())
	assert.Equal(t, PriorityFavorites, provider.Priority())
	assert.Equal(t, "favorites", provider.Name())
}

func TestRecordProvider_Upsert(t *testing.T) {
	ctx := context.Background()
	provider := NewFavoritesProvider(storagemem.NewRecordStore())
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	provider.now = func() time.Time { return now }
	layer := indexmem.NewLayer("favorites", 0)
	require.NoError(t, provider.Attach(ctx, layer))

	require.NoError(t, provider.Upsert(ctx, domain.IndexableRecord{Name: "Home", Coordinate: *berlin}))

	list, err := provider.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0].ID)
	assert.Equal(t, now, list[0].Timestamp)
	_, found := layer.Get(list[0].ID)
	assert.True(t, found)
}

func TestRecordProvider_Upsert_Invalid(t *testing.T) {
	provider := NewFavoritesProvider(storagemem.NewRecordStore())

	err := provider.Upsert(context.Background(), domain.IndexableRecord{Coordinate: *berlin})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = provider.Upsert(context.Background(), domain.IndexableRecord{Name: "x", Coordinate: domain.Point{Latitude: 100}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHistoryProvider_TrimsOldest(t *testing.T) {
	ctx := context.Background()
	provider := NewHistoryProvider(storagemem.NewRecordStore(), 2)
	layer := indexmem.NewLayer("history", 0)
	require.NoError(t, provider.Attach(ctx, layer))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		rec := domain.IndexableRecord{ID: id, Name: "Place " + id, Coordinate: *berlin, Timestamp: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, provider.Upsert(ctx, rec))
	}

	list, err := provider.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	_, found := layer.Get("a")
	assert.False(t, found)
	assert.Equal(t, 2, layer.Size())
}

func TestHistoryProvider_AddResultRefreshesTimestamp(t *testing.T) {
	ctx := context.Background()
	provider := NewHistoryProvider(storagemem.NewRecordStore(), 10)
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	provider.now = func() time.Time { return first }
	result := domain.SearchResult{ID: "p1", Name: "Museum", Coordinate: *berlin, Types: []domain.ResultType{"poi"}}
	require.NoError(t, provider.AddResult(ctx, result))
	provider.now = func() time.Time { return second }
	require.NoError(t, provider.AddResult(ctx, result))

	list, err := provider.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second, list[0].Timestamp)
	assert.Equal(t, domain.ResultType("poi"), list[0].Type)
}

func TestRecordProvider_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	store := storagemem.NewRecordStore()
	require.NoError(t, store.Upsert(ctx, "favorites", cafeCentral))
	require.NoError(t, store.Upsert(ctx, "favorites", cafeEuropa))
	provider := NewFavoritesProvider(store)
	layer := indexmem.NewLayer("favorites", 0)
	require.NoError(t, provider.Attach(ctx, layer))

	require.NoError(t, provider.Remove(ctx, cafeCentral.ID))
	assert.Equal(t, 1, layer.Size())
	assert.ErrorIs(t, provider.Remove(ctx, cafeCentral.ID), domain.ErrNotFound)

	require.NoError(t, provider.Clear(ctx))
	assert.Equal(t, 0, layer.Size())
	list, _ := provider.List(ctx)
	assert.Empty(t, list)
}

func TestRecordProvider_Detach(t *testing.T) {
	ctx := context.Background()
	store := storagemem.NewRecordStore()
	require.NoError(t, store.Upsert(ctx, "favorites", cafeCentral))
	provider := NewFavoritesProvider(store)
	layer := indexmem.NewLayer("favorites", 0)
	require.NoError(t, provider.Attach(ctx, layer))

	require.NoError(t, provider.Detach(ctx, layer))
	assert.Equal(t, 0, layer.Size())

	require.NoError(t, provider.Upsert(ctx, cafeEuropa))
	assert.Equal(t, 0, layer.Size())
	assert.ErrorIs(t, provider.Detach(ctx, layer), domain.ErrNotFound)
}
