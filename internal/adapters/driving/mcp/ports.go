package mcp

import (
	"github.com/custodia-labs/geosearch/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Search runs suggest, select and reverse geocoding.
	Search driving.SearchEngine

	// Category enables the category_search tool when set.
	Category driving.CategorySearchEngine

	// History and Favorites back the record resources. Either may be nil.
	History   driving.RecordService
	Favorites driving.RecordService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchEngine
	}
	return nil
}

// records returns the configured record services.
func (p *Ports) records() []driving.RecordService {
	var out []driving.RecordService
	for _, svc := range []driving.RecordService{p.Favorites, p.History} {
		if svc != nil {
			out = append(out, svc)
		}
	}
	return out
}
