package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driven"
	"github.com/custodia-labs/geosearch/internal/logger"
)

// providerEntry tracks one registered provider and the hosts using it.
type providerEntry struct {
	provider driven.IndexableDataProvider
	layer    driven.RecordLayer
	hosts    map[driven.LayerHost]struct{}
}

// DataProvidersRegistry registers local record providers with engines.
// Each provider gets exactly one record layer, shared by every engine it
// is registered with.
type DataProvidersRegistry struct {
	mu       sync.Mutex
	newLayer driven.LayerFactory
	entries  map[string]*providerEntry
}

// NewDataProvidersRegistry creates a registry that builds layers with newLayer.
func NewDataProvidersRegistry(newLayer driven.LayerFactory) *DataProvidersRegistry {
	return &DataProvidersRegistry{
		newLayer: newLayer,
		entries:  make(map[string]*providerEntry),
	}
}

// Register makes provider's records searchable on host.
// Registering the same provider with the same host again is a no-op.
// A different provider under an existing name fails with ErrAlreadyExists.
func (r *DataProvidersRegistry) Register(ctx context.Context, provider driven.IndexableDataProvider, host driven.LayerHost) error {
	if provider == nil || host == nil {
		return fmt.Errorf("%w: provider and host are required", domain.ErrInvalidInput)
	}
	name := provider.Name()
	if name == "" {
		return fmt.Errorf("%w: provider name is required", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[name]
	if ok {
		if entry.provider != provider {
			return fmt.Errorf("%w: data provider %q", domain.ErrAlreadyExists, name)
		}
		if _, registered := entry.hosts[host]; registered {
			return nil
		}
	} else {
		layer := r.newLayer(name, provider.Priority())
		if err := provider.Attach(ctx, layer); err != nil {
			return fmt.Errorf("attach data provider %q: %w", name, err)
		}
		entry = &providerEntry{
			provider: provider,
			layer:    layer,
			hosts:    make(map[driven.LayerHost]struct{}),
		}
		r.entries[name] = entry
		logger.Debug("registry: attached provider %q (%d records)", name, layer.Size())
	}

	host.AddLayer(entry.layer)
	entry.hosts[host] = struct{}{}
	return nil
}

// Unregister removes provider's layer from host. The provider is detached
// once no host uses it. Unknown provider/host pairs fail with ErrNotFound.
func (r *DataProvidersRegistry) Unregister(ctx context.Context, provider driven.IndexableDataProvider, host driven.LayerHost) error {
	if provider == nil || host == nil {
		return fmt.Errorf("%w: provider and host are required", domain.ErrInvalidInput)
	}
	name := provider.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[name]
	if !ok || entry.provider != provider {
		return fmt.Errorf("%w: data provider %q", domain.ErrNotFound, name)
	}
	if _, registered := entry.hosts[host]; !registered {
		return fmt.Errorf("%w: data provider %q is not registered with this engine", domain.ErrNotFound, name)
	}

	host.RemoveLayer(name)
	delete(entry.hosts, host)
	if len(entry.hosts) > 0 {
		return nil
	}

	delete(r.entries, name)
	if err := provider.Detach(ctx, entry.layer); err != nil {
		return fmt.Errorf("detach data provider %q: %w", name, err)
	}
	logger.Debug("registry: detached provider %q", name)
	return nil
}

// Layer returns the layer of a registered provider.
func (r *DataProvidersRegistry) Layer(name string) (driven.RecordLayer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return entry.layer, true
}

// Providers returns the names of registered providers, sorted.
func (r *DataProvidersRegistry) Providers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
