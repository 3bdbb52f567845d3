// Package tui provides an interactive terminal user interface for geosearch.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"time"

	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search runs online search-as-you-type.
	Search driving.SearchEngine

	// Offline searches tilesets on this device. Optional.
	Offline driving.OfflineSearchEngine

	// History and Favorites back the record views. Optional.
	History   driving.RecordService
	Favorites driving.RecordService

	// Settings manages application settings. Optional.
	Settings driving.SettingsService

	// Options are passed with every online and offline search.
	Options domain.SearchOptions

	// Debounce delays offline searches after the last keystroke. Online
	// searches are debounced by the engine.
	Debounce time.Duration
}

// NewPorts creates a new Ports aggregate with the required engine.
func NewPorts(search driving.SearchEngine) *Ports {
	return &Ports{Search: search}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchEngine
	}
	if p.Debounce < 0 {
		return ErrInvalidPorts
	}
	return nil
}
