//go:build geosearch_debug

package failfast

// Enabled is true in debug builds.
const Enabled = true
