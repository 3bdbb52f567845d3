//go:build !geosearch_debug

package failfast

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/geosearch/internal/core/domain"
)

func TestMalformed_ReleaseReturnsError(t *testing.T) {
	err := Malformed("suggest response", errors.New("unexpected EOF"))

	assert.False(t, Enabled)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	assert.Contains(t, err.Error(), "suggest response")
	assert.Contains(t, err.Error(), "unexpected EOF")
}
