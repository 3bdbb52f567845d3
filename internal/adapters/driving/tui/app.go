package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/views/records"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/views/settings"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView      *menu.View
	searchView    *search.View
	offlineView   *search.View
	favoritesView *records.View
	historyView   *records.View
	settingsView  *settings.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	menuView := menu.NewView(s)
	if ports.Offline == nil {
		menuView.WithoutView(messages.ViewOffline)
	}

	searchView := search.NewView(s, km, search.Online{Engine: ports.Search, Options: ports.Options}, ports.Favorites)

	var offlineView *search.View
	if ports.Offline != nil {
		offlineView = search.NewView(s, km, search.Offline{Engine: ports.Offline, Options: ports.Options}, ports.Favorites).
			WithSource(messages.ViewOffline).
			WithTitle("geosearch · offline").
			WithDebounce(ports.Debounce)
	}

	return &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		menuView:      menuView,
		searchView:    searchView,
		offlineView:   offlineView,
		favoritesView: records.NewView(s, km, "Favorites", ports.Favorites),
		historyView:   records.NewView(s, km, "History", ports.History),
		settingsView:  settings.NewView(s, ports.Settings),
		currentView:   messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	if a.offlineView != nil {
		a.offlineView.WithContext(ctx)
	}
	a.favoritesView.WithContext(ctx)
	a.historyView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("geosearch"),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}
		return a, a.forward(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	// Outcomes go to the view that asked, even if it is no longer shown.
	case messages.SuggestionsLoaded, messages.SelectionCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		if a.offlineView != nil {
			var offlineCmd tea.Cmd
			a.offlineView, offlineCmd = a.offlineView.Update(msg)
			cmd = tea.Batch(cmd, offlineCmd)
		}
		return a, cmd

	case messages.RecordsLoaded, messages.RecordRemoved, messages.RecordsCleared:
		var favCmd, histCmd tea.Cmd
		a.favoritesView, favCmd = a.favoritesView.Update(msg)
		a.historyView, histCmd = a.historyView.Update(msg)
		return a, tea.Batch(favCmd, histCmd)

	case messages.SettingsLoaded, messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.forward(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// switchTo activates a view and initialises it.
func (a *App) switchTo(vt messages.ViewType) tea.Cmd {
	switch vt {
	case messages.ViewSearch:
		a.currentView = vt
		a.searchView.Reset()
		return a.searchView.Init()
	case messages.ViewOffline:
		if a.offlineView == nil {
			return nil
		}
		a.currentView = vt
		a.offlineView.Reset()
		return a.offlineView.Init()
	case messages.ViewFavorites:
		a.currentView = vt
		return a.favoritesView.Init()
	case messages.ViewHistory:
		a.currentView = vt
		return a.historyView.Init()
	case messages.ViewSettings:
		a.currentView = vt
		a.settingsView.Reset()
		return a.settingsView.Init()
	case messages.ViewMenu, messages.ViewHelp:
		a.currentView = vt
	}
	return nil
}

// forward passes msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewOffline:
		a.offlineView, cmd = a.offlineView.Update(msg)
	case messages.ViewFavorites:
		a.favoritesView, cmd = a.favoritesView.Update(msg)
	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewOffline:
		return a.offlineView.View()
	case messages.ViewFavorites:
		return a.favoritesView.View()
	case messages.ViewHistory:
		return a.historyView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

Search:
  (type)      Search as you type
  tab         Switch between input and suggestions
  enter       Select suggestion
  f           Add the shown place to favorites
  n           New search

Favorites and history:
  d           Remove entry
  c c         Remove every entry

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	if a.offlineView != nil {
		a.offlineView.SetDimensions(width, height)
	}
	a.favoritesView.SetDimensions(width, height)
	a.historyView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
