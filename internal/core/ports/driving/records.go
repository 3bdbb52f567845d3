package driving

import (
	"context"

	"github.com/custodia-labs/geosearch/internal/core/domain"
)

// RecordService manages one collection of local records
// (history, favorites or a custom collection).
type RecordService interface {
	// Name is the collection name.
	Name() string

	Upsert(ctx context.Context, record domain.IndexableRecord) error
	Get(ctx context.Context, id string) (*domain.IndexableRecord, error)
	List(ctx context.Context) ([]domain.IndexableRecord, error)
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}
