package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geosearch/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsSetAndShow(t *testing.T) {
	t.Setenv("GEOSEARCH_ACCESS_TOKEN", "")
	setupTestServices(t, stubBackend{})

	out, err := execute(t, "settings", "set", "search.limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Set search.limit = 5")

	out, err = execute(t, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Limit: 5")
	assert.Contains(t, out, "Access Token: (not set)")
	assert.Contains(t, out, "No access token set")
}

func TestSettingsSet_MasksToken(t *testing.T) {
	t.Setenv("GEOSEARCH_ACCESS_TOKEN", "")
	setupTestServices(t, stubBackend{})

	out, err := execute(t, "settings", "set", "api.access_token", "pk.abcdefghijklmnop")

	require.NoError(t, err)
	assert.Contains(t, out, "pk.a...mnop")
	assert.NotContains(t, out, "pk.abcdefghijklmnop")
}

func TestSettingsSet_InvalidValue(t *testing.T) {
	setupTestServices(t, stubBackend{})

	_, err := execute(t, "settings", "set", "search.limit", "many")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsKeys(t *testing.T) {
	setupTestServices(t, stubBackend{})

	out, err := execute(t, "settings", "keys")

	require.NoError(t, err)
	assert.Contains(t, out, "api.base_url")
	assert.Contains(t, out, "offline.tiles_dir")
}

func TestSettingsToken_ReadsInput(t *testing.T) {
	t.Setenv("GEOSEARCH_ACCESS_TOKEN", "")
	s := setupTestServices(t, stubBackend{})
	rootCmd.SetIn(strings.NewReader("pk.abcdefghijklmnop\n"))

	out, err := execute(t, "settings", "token")

	require.NoError(t, err)
	assert.Contains(t, out, "Access token set: pk.a...mnop")
	settings, err := s.Settings.Get()
	require.NoError(t, err)
	assert.Equal(t, "pk.abcdefghijklmnop", settings.API.AccessToken)
}

func TestSettingsToken_Empty(t *testing.T) {
	setupTestServices(t, stubBackend{})
	rootCmd.SetIn(strings.NewReader("\n"))

	_, err := execute(t, "settings", "token")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "access token is required")
}

func TestSettingsWizard(t *testing.T) {
	t.Setenv("GEOSEARCH_ACCESS_TOKEN", "")
	s := setupTestServices(t, stubBackend{})
	rootCmd.SetIn(strings.NewReader("pk.abcdefghijklmnop\nDE,en\n3\n/var/tiles\n"))

	out, err := execute(t, "settings", "wizard")

	require.NoError(t, err)
	assert.Contains(t, out, "Configuration Complete!")
	settings, err := s.Settings.Get()
	require.NoError(t, err)
	assert.Equal(t, "pk.abcdefghijklmnop", settings.API.AccessToken)
	assert.Equal(t, []string{"de", "en"}, settings.Search.Languages)
	assert.Equal(t, 300*time.Millisecond, settings.Search.RequestDebounce)
	assert.Equal(t, "/var/tiles", settings.Offline.TilesDir)
}

func TestSettingsCmds_NotConfigured(t *testing.T) {
	SetServices(Services{})

	for _, args := range [][]string{
		{"settings"},
		{"settings", "set", "search.limit", "5"},
		{"settings", "keys"},
		{"settings", "token"},
		{"settings", "wizard"},
	} {
		_, err := execute(t, args...)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "settings service not configured")
	}
}
