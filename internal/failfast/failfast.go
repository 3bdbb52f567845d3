// Package failfast implements the malformed-response policy.
//
// Debug builds (go build -tags geosearch_debug) panic on a malformed
// backend response so SDK developers see the problem at its source.
// Release builds report it as domain.ErrMalformedResponse.
package failfast

import (
	"fmt"

	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/logger"
)

// Malformed applies the policy to a decoding failure.
func Malformed(what string, err error) error {
	if Enabled {
		panic(fmt.Sprintf("malformed %s: %v", what, err))
	}
	logger.Warn("Malformed %s: %v", what, err)
	return fmt.Errorf("%w: %s: %v", domain.ErrMalformedResponse, what, err)
}
