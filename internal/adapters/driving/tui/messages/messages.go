// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/geosearch/internal/core/domain"
)

// SuggestionsLoaded carries the outcome of a suggest step. Source is the
// view that asked and Seq the keystroke that started it, so stale
// outcomes can be dropped.
type SuggestionsLoaded struct {
	Source      ViewType
	Seq         int
	Query       string
	Suggestions []domain.SearchSuggestion
	Err         error
}

// SelectionCompleted carries the outcome of selecting a suggestion.
// Exactly one of Result, Results or Suggestions is set on success.
type SelectionCompleted struct {
	Source      ViewType
	Suggestion  domain.SearchSuggestion
	Result      *domain.SearchResult
	Results     []domain.SearchResult
	Suggestions []domain.SearchSuggestion
	Err         error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is online search-as-you-type.
	ViewSearch
	// ViewOffline searches tilesets on this device.
	ViewOffline
	// ViewFavorites lists favorite places.
	ViewFavorites
	// ViewHistory lists selected places.
	ViewHistory
	// ViewSettings is the settings configuration view.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewOffline:
		return "offline"
	case ViewFavorites:
		return "favorites"
	case ViewHistory:
		return "history"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// RecordsLoaded carries the records of a collection.
type RecordsLoaded struct {
	Collection string
	Records    []domain.IndexableRecord
	Err        error
}

// RecordRemoved signals a record was removed from a collection.
type RecordRemoved struct {
	Collection string
	ID         string
	Err        error
}

// RecordsCleared signals a collection was emptied.
type RecordsCleared struct {
	Collection string
	Err        error
}

// FavoriteAdded signals a result was saved as a favorite.
type FavoriteAdded struct {
	Record domain.IndexableRecord
	Err    error
}

// SettingsLoaded carries the application settings and their keys.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Keys     []string
	Err      error
}

// SettingsSaved signals a setting was saved.
type SettingsSaved struct {
	Key string
	Err error
}
