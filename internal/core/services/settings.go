package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driven"
	"github.com/custodia-labs/geosearch/internal/core/ports/driving"
	"github.com/custodia-labs/geosearch/internal/textutil"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvAccessToken overrides api.access_token when set.
//
//nolint:gosec // G101: This is an environment variable name, not a credential.
const EnvAccessToken = "GEOSEARCH_ACCESS_TOKEN"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyAPIBaseURL      = "api.base_url"
	keyAPIAccessToken  = "api.access_token"
	keyAPITimeout      = "api.timeout_seconds"
	keyAPIRateLimit    = "api.rate_limit"
	keyAPIBurst        = "api.burst"
	keySearchDebounce  = "search.request_debounce_ms"
	keySearchLimit     = "search.limit"
	keySearchThreshold = "search.distance_threshold_m"
	keySearchLanguages = "search.languages"
	keySearchCountries = "search.countries"
	keyHistoryMaxSize  = "history.max_size"
	keyStorageDataDir  = "storage.data_dir"
	keyOfflineTilesDir = "offline.tiles_dir"
	keyLogVerbose      = "log.verbose"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		API: domain.APISettings{
			BaseURL:     s.getString(keyAPIBaseURL, defaults.API.BaseURL),
			AccessToken: s.configStore.GetString(keyAPIAccessToken),
			Timeout:     time.Duration(s.getInt(keyAPITimeout, int(defaults.API.Timeout/time.Second))) * time.Second,
			RateLimit:   s.getFloat(keyAPIRateLimit, defaults.API.RateLimit),
			Burst:       s.getInt(keyAPIBurst, defaults.API.Burst),
		},
		Search: domain.SearchSettings{
			RequestDebounce:   time.Duration(s.getInt(keySearchDebounce, 0)) * time.Millisecond,
			Limit:             s.getInt(keySearchLimit, defaults.Search.Limit),
			DistanceThreshold: s.getFloat(keySearchThreshold, 0),
			Languages:         s.configStore.GetStringSlice(keySearchLanguages),
			Countries:         s.configStore.GetStringSlice(keySearchCountries),
		},
		History: domain.HistorySettings{
			MaxSize: s.getInt(keyHistoryMaxSize, defaults.History.MaxSize),
		},
		Storage: domain.StorageSettings{
			DataDir: s.configStore.GetString(keyStorageDataDir),
		},
		Offline: domain.OfflineSettings{
			TilesDir: s.configStore.GetString(keyOfflineTilesDir),
		},
		Log: domain.LogSettings{
			Verbose: s.getBool(keyLogVerbose, false),
		},
	}

	if token := s.getenv(EnvAccessToken); token != "" {
		settings.API.AccessToken = token
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyAPIBaseURL, settings.API.BaseURL},
		{keyAPITimeout, int(settings.API.Timeout / time.Second)},
		{keyAPIRateLimit, settings.API.RateLimit},
		{keyAPIBurst, settings.API.Burst},
		{keySearchDebounce, int(settings.Search.RequestDebounce / time.Millisecond)},
		{keySearchLimit, settings.Search.Limit},
		{keySearchThreshold, settings.Search.DistanceThreshold},
		{keySearchLanguages, settings.Search.Languages},
		{keySearchCountries, settings.Search.Countries},
		{keyHistoryMaxSize, settings.History.MaxSize},
		{keyStorageDataDir, settings.Storage.DataDir},
		{keyOfflineTilesDir, settings.Offline.TilesDir},
		{keyLogVerbose, settings.Log.Verbose},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// The token from the environment is never written back.
	if settings.API.AccessToken != "" && settings.API.AccessToken != s.getenv(EnvAccessToken) {
		if err := s.configStore.Set(keyAPIAccessToken, settings.API.AccessToken); err != nil {
			return fmt.Errorf("save %s: %w", keyAPIAccessToken, err)
		}
	}

	return nil
}

// Set parses value for the given key and stores it.
func (s *SettingsService) Set(key, value string) error {
	value = strings.TrimSpace(value)

	var parsed any
	var err error
	switch key {
	case keyAPIBaseURL, keyAPIAccessToken, keyStorageDataDir, keyOfflineTilesDir:
		parsed = value
	case keyAPITimeout, keyAPIBurst, keySearchDebounce, keySearchLimit, keyHistoryMaxSize:
		parsed, err = parseNonNegativeInt(value)
	case keyAPIRateLimit, keySearchThreshold:
		parsed, err = parseNonNegativeFloat(value)
	case keyLogVerbose:
		parsed, err = strconv.ParseBool(value)
	case keySearchLanguages:
		parsed, err = textutil.NormaliseLanguages(splitList(value))
	case keySearchCountries:
		parsed, err = textutil.NormaliseCountries(splitList(value))
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	return s.configStore.Set(key, parsed)
}

// Keys lists the supported config keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := []string{
		keyAPIBaseURL, keyAPIAccessToken, keyAPITimeout, keyAPIRateLimit, keyAPIBurst,
		keySearchDebounce, keySearchLimit, keySearchThreshold, keySearchLanguages,
		keySearchCountries, keyHistoryMaxSize, keyStorageDataDir, keyOfflineTilesDir,
		keyLogVerbose,
	}
	sort.Strings(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func parseNonNegativeInt(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return n, nil
}

func parseNonNegativeFloat(value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return f, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
