// Package sqlite persists local records (history, favorites and custom
// provider collections) in a SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. The schema is managed through numbered migrations in the
// migrations/ directory.
//
// By default, the database is stored at ~/.geosearch/data/records.db and is
// opened in WAL mode so the CLI and TUI can share it.
package sqlite
