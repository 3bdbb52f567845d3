package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driving"
)

// uriScheme is the URI scheme for geosearch resources.
const uriScheme = "geosearch://"

// registerResources registers a resource per record collection and a
// template for single records.
func (s *Server) registerResources() {
	for _, svc := range s.ports.records() {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + svc.Name(),
			Name:        svc.Name(),
			Description: "Saved " + svc.Name() + " entries, newest first",
			MIMEType:    "application/json",
		}, s.handleCollectionResource)
	}

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "{collection}/{recordId}",
		Name:        "record",
		Description: "A single favorite or history entry",
		MIMEType:    "application/json",
	}, s.handleRecordResource)
}

// handleCollectionResource lists every record of a collection.
func (s *Server) handleCollectionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	svc := s.collection(strings.TrimPrefix(req.Params.URI, uriScheme))
	if svc == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	records, err := svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", svc.Name(), err)
	}
	if records == nil {
		records = []domain.IndexableRecord{}
	}
	return jsonResource(req.Params.URI, records)
}

// handleRecordResource returns one record.
func (s *Server) handleRecordResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name, id := extractRecordRef(req.Params.URI)
	svc := s.collection(name)
	if svc == nil || id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	record, err := svc.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s entry: %w", name, err)
	}
	return jsonResource(req.Params.URI, record)
}

func (s *Server) collection(name string) driving.RecordService {
	for _, svc := range s.ports.records() {
		if svc.Name() == name {
			return svc
		}
	}
	return nil
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRecordRef splits a URI like geosearch://favorites/{recordId}.
func extractRecordRef(uri string) (collection, id string) {
	if !strings.HasPrefix(uri, uriScheme) {
		return "", ""
	}
	collection, id, ok := strings.Cut(strings.TrimPrefix(uri, uriScheme), "/")
	if !ok {
		return "", ""
	}
	return collection, id
}
