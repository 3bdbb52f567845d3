package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driven"
	"github.com/custodia-labs/geosearch/internal/core/ports/driving"
	"github.com/custodia-labs/geosearch/internal/logger"
)

// Ensure RecordProvider implements both sides.
var (
	_ driven.IndexableDataProvider = (*RecordProvider)(nil)
	_ driving.RecordService        = (*RecordProvider)(nil)
)

// Layer priorities of the built-in providers. Favorites rank above history.
const (
	PriorityFavorites = 200
	PriorityHistory   = 100
)

// HistoryRecorder stores resolved results as history.
type HistoryRecorder interface {
	AddResult(ctx context.Context, result domain.SearchResult) error
}

// RecordProvider is a data provider backed by a RecordStore collection.
// Changes made through it are persisted and pushed into every layer it is
// attached to.
type RecordProvider struct {
	name     string
	priority int
	store    driven.RecordStore
	maxSize  int
	now      func() time.Time

	mu     sync.RWMutex
	layers []driven.RecordLayer
}

// NewRecordProvider creates a provider for a collection. maxSize caps the
// collection, keeping the newest records; zero means unbounded.
func NewRecordProvider(name string, priority int, store driven.RecordStore, maxSize int) *RecordProvider {
	return &RecordProvider{
		name:     name,
		priority: priority,
		store:    store,
		maxSize:  maxSize,
		now:      time.Now,
	}
}

// NewHistoryProvider creates the history provider.
func NewHistoryProvider(store driven.RecordStore, maxSize int) *RecordProvider {
	return NewRecordProvider(string(domain.RecordKindHistory), PriorityHistory, store, maxSize)
}

// NewFavoritesProvider creates the favorites provider.
func NewFavoritesProvider(store driven.RecordStore) *RecordProvider {
	return NewRecordProvider(string(domain.RecordKindFavorites), PriorityFavorites, store, 0)
}

// Name returns the collection name.
func (p *RecordProvider) Name() string {
	return p.name
}

// Priority returns the layer priority.
func (p *RecordProvider) Priority() int {
	return p.priority
}

// Attach loads the collection into layer and keeps it updated.
func (p *RecordProvider) Attach(ctx context.Context, layer driven.RecordLayer) error {
	records, err := p.store.List(ctx, p.name)
	if err != nil {
		return fmt.Errorf("load %s: %w", p.name, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	layer.Upsert(records...)
	p.layers = append(p.layers, layer)
	return nil
}

// Detach stops updating layer and empties it.
func (p *RecordProvider) Detach(_ context.Context, layer driven.RecordLayer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, l := range p.layers {
		if l == layer {
			p.layers = append(p.layers[:i], p.layers[i+1:]...)
			layer.Clear()
			return nil
		}
	}
	return fmt.Errorf("%w: layer %q is not attached to %s", domain.ErrNotFound, layer.Name(), p.name)
}

// Upsert stores a record. A missing ID is generated and a zero timestamp
// is set to now.
func (p *RecordProvider) Upsert(ctx context.Context, record domain.IndexableRecord) error {
	if record.Name == "" {
		return fmt.Errorf("%w: record name is required", domain.ErrInvalidInput)
	}
	if err := record.Coordinate.Validate(); err != nil {
		return fmt.Errorf("record coordinate: %w", err)
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = p.now()
	}

	if err := p.store.Upsert(ctx, p.name, record); err != nil {
		return fmt.Errorf("save %s record: %w", p.name, err)
	}

	var trimmed []string
	if p.maxSize > 0 {
		var err error
		trimmed, err = p.store.Trim(ctx, p.name, p.maxSize)
		if err != nil {
			return fmt.Errorf("trim %s: %w", p.name, err)
		}
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, l := range p.layers {
		l.Upsert(record)
		if len(trimmed) > 0 {
			l.Remove(trimmed...)
		}
	}
	return nil
}

// AddResult stores a resolved result, refreshing its timestamp.
func (p *RecordProvider) AddResult(ctx context.Context, result domain.SearchResult) error {
	record := domain.RecordFromResult(result, p.now())
	logger.Debug("%s: adding %q", p.name, record.Name)
	return p.Upsert(ctx, record)
}

// Get retrieves a record by ID.
func (p *RecordProvider) Get(ctx context.Context, id string) (*domain.IndexableRecord, error) {
	return p.store.Get(ctx, p.name, id)
}

// List returns all records, most recent first.
func (p *RecordProvider) List(ctx context.Context) ([]domain.IndexableRecord, error) {
	return p.store.List(ctx, p.name)
}

// Remove deletes a record by ID.
func (p *RecordProvider) Remove(ctx context.Context, id string) error {
	if err := p.store.Delete(ctx, p.name, id); err != nil {
		return err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, l := range p.layers {
		l.Remove(id)
	}
	return nil
}

// Clear removes every record.
func (p *RecordProvider) Clear(ctx context.Context) error {
	if err := p.store.Clear(ctx, p.name); err != nil {
		return err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, l := range p.layers {
		l.Clear()
	}
	return nil
}
