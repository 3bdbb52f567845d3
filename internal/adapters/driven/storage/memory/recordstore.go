package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]domain.IndexableRecord
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		collections: make(map[string]map[string]domain.IndexableRecord),
	}
}

// Upsert stores or replaces a record.
func (s *RecordStore) Upsert(_ context.Context, collection string, record domain.IndexableRecord) error {
	if record.ID == "" {
		return fmt.Errorf("%w: record ID is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collection]
	if !ok {
		c = make(map[string]domain.IndexableRecord)
		s.collections[collection] = c
	}
	c[record.ID] = record
	return nil
}

// Get retrieves a record by ID.
func (s *RecordStore) Get(_ context.Context, collection, id string) (*domain.IndexableRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.collections[collection][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

// List returns all records in a collection, most recent first.
func (s *RecordStore) List(_ context.Context, collection string) ([]domain.IndexableRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(collection), nil
}

// Delete removes a record.
func (s *RecordStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection][id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

// Clear removes every record in a collection.
func (s *RecordStore) Clear(_ context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, collection)
	return nil
}

// Trim keeps the newest max records and returns the IDs removed.
func (s *RecordStore) Trim(_ context.Context, collection string, max int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.sortedLocked(collection)
	if max < 0 || len(records) <= max {
		return nil, nil
	}
	removed := make([]string, 0, len(records)-max)
	for _, r := range records[max:] {
		delete(s.collections[collection], r.ID)
		removed = append(removed, r.ID)
	}
	return removed, nil
}

// sortedLocked returns a collection newest first, ties by ID (caller must hold lock).
func (s *RecordStore) sortedLocked(collection string) []domain.IndexableRecord {
	c := s.collections[collection]
	result := make([]domain.IndexableRecord, 0, len(c))
	for _, r := range c {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.After(result[j].Timestamp)
		}
		return result[i].ID < result[j].ID
	})
	return result
}
