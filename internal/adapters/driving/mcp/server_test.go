package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geosearch/internal/core/domain"
)

func TestNewServer(t *testing.T) {
	t.Run("nil search engine returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingSearchEngine)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(testPorts(t, stubBackend{}))
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil search engine returns error", func(t *testing.T) {
		ports := &Ports{}
		assert.ErrorIs(t, ports.Validate(), ErrMissingSearchEngine)
	})

	t.Run("search only is valid", func(t *testing.T) {
		full := testPorts(t, stubBackend{})
		ports := &Ports{Search: full.Search}
		assert.NoError(t, ports.Validate())
		assert.Empty(t, ports.records())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := testPorts(t, stubBackend{})
		assert.NoError(t, ports.Validate())
		assert.Len(t, ports.records(), 2)
	})
}

func TestServer_RememberReplacesSuggestions(t *testing.T) {
	server := newTestServer(t, testPorts(t, stubBackend{}))

	server.remember([]domain.SearchSuggestion{{ID: "a"}, {ID: "b"}})
	server.remember([]domain.SearchSuggestion{{ID: "c"}})

	_, ok := server.lookup("a")
	assert.False(t, ok)
	got, ok := server.lookup("c")
	assert.True(t, ok)
	assert.Equal(t, "c", got.ID)
}
