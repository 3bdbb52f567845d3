// Package mcp provides an MCP (Model Context Protocol) server adapter for
// geosearch. It lets AI assistants search places, resolve suggestions and
// read local favorites and history.
package mcp

import "errors"

// ErrMissingSearchEngine is returned when the search engine is not provided.
var ErrMissingSearchEngine = errors.New("mcp: search engine is required")

// ErrUnknownSuggestion is returned by select for an id that no earlier
// search returned.
var ErrUnknownSuggestion = errors.New("mcp: unknown suggestion id, run search first")
