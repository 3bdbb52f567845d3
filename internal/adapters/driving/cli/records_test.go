package cli

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geosearch/internal/core/domain"
)

func TestFavoritesAddAndList(t *testing.T) {
	s := setupTestServices(t, stubBackend{})

	out, err := execute(t, "favorites", "add", "--address", "Karl-Marx-Allee 1", "--category", "home", "Home", "13.43,52.51")
	require.NoError(t, err)
	assert.Contains(t, out, "Added favorite Home")

	records, err := s.Favorites.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"home"}, records[0].Categories)
	require.NotNil(t, records[0].Address)
	assert.Equal(t, "Karl-Marx-Allee 1", records[0].Address.Street)

	out, err = execute(t, "favorites", "list")
	require.NoError(t, err)
	assert.Contains(t, out, records[0].ID)
	assert.Contains(t, out, "Home")
	assert.Contains(t, out, "13.430000, 52.510000")
}

func TestFavoritesAdd_InvalidCoordinate(t *testing.T) {
	setupTestServices(t, stubBackend{})

	_, err := execute(t, "favorites", "add", "Home", "13.43")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFavoritesList_Empty(t *testing.T) {
	setupTestServices(t, stubBackend{})

	out, err := execute(t, "favorites")

	require.NoError(t, err)
	assert.Contains(t, out, "No favorites entries.")
}

func TestHistoryList_JSON(t *testing.T) {
	s := setupTestServices(t, stubBackend{})
	require.NoError(t, s.History.Upsert(context.Background(), domain.IndexableRecord{
		ID: "h1", Name: "Alexanderplatz", Coordinate: domain.NewPoint(13.41, 52.52), Timestamp: time.Now(),
	}))

	out, err := execute(t, "history", "list", "--json")

	require.NoError(t, err)
	var records []domain.IndexableRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "h1", records[0].ID)
}

func TestHistoryRemove(t *testing.T) {
	s := setupTestServices(t, stubBackend{})
	ctx := context.Background()
	require.NoError(t, s.History.Upsert(ctx, domain.IndexableRecord{
		ID: "h1", Name: "Alexanderplatz", Coordinate: domain.NewPoint(13.41, 52.52),
	}))

	out, err := execute(t, "history", "remove", "h1")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed history entry h1")

	records, err := s.History.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHistoryRemove_NotFound(t *testing.T) {
	setupTestServices(t, stubBackend{})

	_, err := execute(t, "history", "remove", "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `history entry "missing" not found`)
}

func TestHistoryClear(t *testing.T) {
	s := setupTestServices(t, stubBackend{})
	ctx := context.Background()
	for _, name := range []string{"Alexanderplatz", "Potsdamer Platz"} {
		require.NoError(t, s.History.Upsert(ctx, domain.IndexableRecord{Name: name, Coordinate: domain.NewPoint(13.4, 52.5)}))
	}
	require.NoError(t, s.Favorites.Upsert(ctx, domain.IndexableRecord{Name: "Home", Coordinate: domain.NewPoint(13.43, 52.51)}))

	out, err := execute(t, "history", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared history")

	records, err := s.History.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	// Favorites share the store but not the collection.
	favorites, err := s.Favorites.List(ctx)
	require.NoError(t, err)
	assert.Len(t, favorites, 1)
}

func TestRecordCmds_NotConfigured(t *testing.T) {
	SetServices(Services{})

	_, err := execute(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history service not configured")

	_, err = execute(t, "favorites", "add", "Home", "13.4,52.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "favorites service not configured")
}
