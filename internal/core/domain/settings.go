package domain

import (
	"fmt"
	"time"
)

// DefaultBaseURL is the search backend used when none is configured.
const DefaultBaseURL = "https://api.mapbox.com/search/searchbox/v1"

// DefaultHistorySize is how many history records are kept.
const DefaultHistorySize = 100

// AppSettings holds all user-configurable settings.
type AppSettings struct {
	API     APISettings
	Search  SearchSettings
	History HistorySettings
	Storage StorageSettings
	Offline OfflineSettings
	Log     LogSettings
}

// APISettings configures the search backend client.
type APISettings struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
	// RateLimit is requests per second. Zero disables proactive throttling.
	RateLimit float64
	Burst     int
}

// SearchSettings holds defaults applied to every search.
type SearchSettings struct {
	RequestDebounce time.Duration
	Limit           int
	// DistanceThreshold in meters; zero means no filter.
	DistanceThreshold float64
	Languages         []string
	Countries         []string
}

// HistorySettings configures the history record provider.
type HistorySettings struct {
	MaxSize int
}

// StorageSettings configures where local records live.
type StorageSettings struct {
	// DataDir holds the record database. Empty means ~/.geosearch/data.
	DataDir string
}

// OfflineSettings configures tile-backed offline search.
type OfflineSettings struct {
	// TilesDir holds tileset files. Empty disables offline search.
	TilesDir string
}

// LogSettings configures logging.
type LogSettings struct {
	Verbose bool
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		API: APISettings{
			BaseURL:   DefaultBaseURL,
			Timeout:   30 * time.Second,
			RateLimit: 10,
			Burst:     5,
		},
		Search: SearchSettings{
			Limit: DefaultLimit,
		},
		History: HistorySettings{
			MaxSize: DefaultHistorySize,
		},
	}
}

// Validate checks settings for consistency.
func (s *AppSettings) Validate() error {
	if s.API.BaseURL == "" {
		return fmt.Errorf("%w: api base URL is required", ErrInvalidInput)
	}
	if s.API.Timeout < 0 {
		return fmt.Errorf("%w: api timeout must not be negative", ErrInvalidInput)
	}
	if s.API.RateLimit < 0 || s.API.Burst < 0 {
		return fmt.Errorf("%w: rate limit must not be negative", ErrInvalidInput)
	}
	if s.Search.RequestDebounce < 0 {
		return fmt.Errorf("%w: request debounce must not be negative", ErrInvalidInput)
	}
	if s.Search.Limit < 0 {
		return fmt.Errorf("%w: search limit must not be negative", ErrInvalidInput)
	}
	if s.Search.DistanceThreshold < 0 {
		return fmt.Errorf("%w: distance threshold must not be negative", ErrInvalidInput)
	}
	if s.History.MaxSize < 0 {
		return fmt.Errorf("%w: history size must not be negative", ErrInvalidInput)
	}
	return nil
}

// ApplyTo fills unset fields of opts from the search defaults.
func (s SearchSettings) ApplyTo(opts SearchOptions) SearchOptions {
	if opts.Limit == 0 && s.Limit > 0 {
		opts.Limit = s.Limit
	}
	if opts.RequestDebounce == 0 {
		opts.RequestDebounce = s.RequestDebounce
	}
	if opts.IndexableRecordsDistanceThreshold == nil && s.DistanceThreshold > 0 {
		threshold := s.DistanceThreshold
		opts.IndexableRecordsDistanceThreshold = &threshold
	}
	if len(opts.Languages) == 0 && len(s.Languages) > 0 {
		opts.Languages = append([]string(nil), s.Languages...)
	}
	if len(opts.Countries) == 0 && len(s.Countries) > 0 {
		opts.Countries = append([]string(nil), s.Countries...)
	}
	return opts
}
