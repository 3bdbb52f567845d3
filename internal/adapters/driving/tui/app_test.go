package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storage "github.com/custodia-labs/geosearch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/services"
)

func newTestPorts(t *testing.T) *Ports {
	t.Helper()
	store := storage.NewRecordStore()
	history := services.NewHistoryProvider(store, 10)
	return &Ports{
		Search:    newTestEngine(t, history),
		History:   history,
		Favorites: services.NewFavoritesProvider(store),
		Settings:  services.NewSettingsService(storage.NewConfigStore()),
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(newTestPorts(t))
	require.NoError(t, err)
	app.SetDimensions(100, 40)
	return app
}

// collect runs cmd and returns the messages it produces, expanding
// batches. Commands that take longer than a short wait, such as cursor
// blinks, are dropped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(100 * time.Millisecond):
		return nil
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// dispatch feeds msg to the app and keeps feeding back the app's own
// messages until none remain.
func dispatch(app *App, msg tea.Msg) {
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		_, cmd := app.Update(next)
		for _, m := range collect(cmd) {
			switch m.(type) {
			case messages.SuggestionsLoaded, messages.SelectionCompleted, messages.FavoriteAdded,
				messages.RecordsLoaded, messages.RecordRemoved, messages.RecordsCleared,
				messages.SettingsLoaded, messages.SettingsSaved, messages.ViewChanged:
				queue = append(queue, m)
			}
		}
	}
}

func typeText(app *App, text string) {
	for _, r := range text {
		dispatch(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(newTestPorts(t))

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.False(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingSearchEngine)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app := newTestApp(t)

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Equal(t, app, app.WithContext(ctx))
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_Init(t *testing.T) {
	app := newTestApp(t)

	assert.NotNil(t, app.Init())
}

func TestApp_Update_WindowSize(t *testing.T) {
	app, err := NewApp(newTestPorts(t))
	require.NoError(t, err)

	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.True(t, app.Ready())
	assert.Equal(t, 80, app.width)
	assert.Equal(t, 24, app.height)
}

func TestApp_View_NotReady(t *testing.T) {
	app, err := NewApp(newTestPorts(t))
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_MenuHidesOfflineWhenNotConfigured(t *testing.T) {
	app := newTestApp(t)

	view := app.View()

	assert.Contains(t, view, "Favorites")
	assert.NotContains(t, view, "Offline search")
}

func TestApp_ViewChanged(t *testing.T) {
	tests := []struct {
		view messages.ViewType
		want string
	}{
		{messages.ViewSearch, "Search"},
		{messages.ViewFavorites, "No favorites yet"},
		{messages.ViewHistory, "No history yet"},
		{messages.ViewSettings, "api.base_url"},
		{messages.ViewHelp, "Help"},
	}
	for _, tt := range tests {
		t.Run(tt.view.String(), func(t *testing.T) {
			app := newTestApp(t)

			dispatch(app, messages.ViewChanged{View: tt.view})

			assert.Equal(t, tt.view, app.CurrentView())
			assert.Contains(t, app.View(), tt.want)
		})
	}
}

func TestApp_OfflineIgnoredWhenNotConfigured(t *testing.T) {
	app := newTestApp(t)

	dispatch(app, messages.ViewChanged{View: messages.ViewOffline})

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_SearchAsYouType(t *testing.T) {
	app := newTestApp(t)
	dispatch(app, messages.ViewChanged{View: messages.ViewSearch})

	typeText(app, "berlin")

	assert.Equal(t, "berlin", app.searchView.Query())
	require.Len(t, app.searchView.Suggestions(), 1)
	assert.Contains(t, app.View(), "Berlin Hbf")
}

func TestApp_SelectAddsHistoryAndFavorite(t *testing.T) {
	ports := newTestPorts(t)
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 40)

	dispatch(app, messages.ViewChanged{View: messages.ViewSearch})
	typeText(app, "berlin")
	dispatch(app, tea.KeyMsg{Type: tea.KeyTab})
	dispatch(app, tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, app.searchView.Detail())
	assert.Equal(t, "Berlin Hbf", app.searchView.Detail().Name)

	dispatch(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})

	ctx := context.Background()
	favorites, err := ports.Favorites.List(ctx)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	history, err := ports.History.List(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)

	dispatch(app, tea.KeyMsg{Type: tea.KeyEsc})
	dispatch(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())

	dispatch(app, messages.ViewChanged{View: messages.ViewFavorites})
	assert.Contains(t, app.View(), "Berlin Hbf")
}

func TestApp_HelpEscReturnsToMenu(t *testing.T) {
	app := newTestApp(t)
	dispatch(app, messages.ViewChanged{View: messages.ViewHelp})

	dispatch(app, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t)
	dispatch(app, messages.ViewChanged{View: messages.ViewSearch})

	app.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, app.Err(), "boom")
	assert.Contains(t, app.View(), "boom")
}

func TestApp_CtrlCQuits(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_QuitMessage(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_RecordsFlow(t *testing.T) {
	ports := newTestPorts(t)
	ctx := context.Background()
	require.NoError(t, ports.History.Upsert(ctx, domain.IndexableRecord{
		ID: "h1", Name: "Alexanderplatz", Coordinate: domain.NewPoint(13.41, 52.52), Timestamp: time.Now(),
	}))
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 40)

	dispatch(app, messages.ViewChanged{View: messages.ViewHistory})
	assert.Contains(t, app.View(), "Alexanderplatz")

	dispatch(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})

	remaining, err := ports.History.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.Contains(t, app.View(), "No history yet")
}
