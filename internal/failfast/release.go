//go:build !geosearch_debug

package failfast

// Enabled is false in release builds.
const Enabled = false
