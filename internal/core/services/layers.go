package services

import (
	"sort"
	"sync"

	"github.com/custodia-labs/geosearch/internal/core/ports/driven"
)

// layerSet holds the record layers an engine searches.
type layerSet struct {
	mu     sync.RWMutex
	layers map[string]driven.RecordLayer
}

func newLayerSet() *layerSet {
	return &layerSet{layers: make(map[string]driven.RecordLayer)}
}

// AddLayer makes the layer visible to searches.
func (s *layerSet) AddLayer(layer driven.RecordLayer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers[layer.Name()] = layer
}

// RemoveLayer hides the layer with the given name.
func (s *layerSet) RemoveLayer(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.layers, name)
}

// snapshot returns the layers ordered by priority (highest first), then name.
func (s *layerSet) snapshot() []driven.RecordLayer {
	s.mu.RLock()
	out := make([]driven.RecordLayer, 0, len(s.layers))
	for _, l := range s.layers {
		out = append(out, l)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority() != out[j].Priority() {
			return out[i].Priority() > out[j].Priority()
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}

// layer returns the layer with the given name.
func (s *layerSet) layer(name string) (driven.RecordLayer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.layers[name]
	return l, ok
}
