// Package memory provides an in-memory record layer used by search engines
// to match local records against a query.
package memory

import (
	"sort"
	"sync"

	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driven"
	"github.com/custodia-labs/geosearch/internal/textutil"
)

// Ensure Layer implements the interface.
var _ driven.RecordLayer = (*Layer)(nil)

// Match quality, best first.
const (
	matchExact  = 3
	matchPrefix = 2
	matchTokens = 1
)

// entry is a record with its precomputed match keys.
type entry struct {
	record     domain.IndexableRecord
	foldedName string
	tokens     []string
}

// Layer is a thread-safe in-memory record index.
type Layer struct {
	name     string
	priority int

	mu      sync.RWMutex
	entries map[string]entry
}

// NewLayer creates an empty layer.
func NewLayer(name string, priority int) *Layer {
	return &Layer{
		name:     name,
		priority: priority,
		entries:  make(map[string]entry),
	}
}

// Factory is a driven.LayerFactory producing memory layers.
func Factory(name string, priority int) driven.RecordLayer {
	return NewLayer(name, priority)
}

// Name returns the layer name.
func (l *Layer) Name() string {
	return l.name
}

// Priority returns the layer priority.
func (l *Layer) Priority() int {
	return l.priority
}

// Upsert adds or replaces records by ID.
func (l *Layer) Upsert(records ...domain.IndexableRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range records {
		tokens := textutil.Tokens(r.Name)
		for _, extra := range r.IndexTokens {
			tokens = append(tokens, textutil.Tokens(extra)...)
		}
		l.entries[r.ID] = entry{
			record:     r,
			foldedName: textutil.Fold(r.Name),
			tokens:     tokens,
		}
	}
}

// Remove deletes records by ID.
func (l *Layer) Remove(ids ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		delete(l.entries, id)
	}
}

// Clear removes all records.
func (l *Layer) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]entry)
}

// Get returns a record by ID.
func (l *Layer) Get(id string) (domain.IndexableRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[id]
	return e.record, ok
}

// Size returns the number of records.
func (l *Layer) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Records returns all records ordered by ID.
func (l *Layer) Records() []domain.IndexableRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.IndexableRecord, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Search returns records whose tokens start with every query token.
// Exact name matches rank first, then name prefix matches, then the rest;
// ties are broken by name and ID so results are deterministic.
// A limit of zero or less returns all matches.
func (l *Layer) Search(query string, limit int) []domain.IndexableRecord {
	queryTokens := textutil.Tokens(query)
	if len(queryTokens) == 0 {
		return nil
	}
	folded := textutil.Fold(query)

	type hit struct {
		entry entry
		score int
	}

	l.mu.RLock()
	hits := make([]hit, 0)
	for _, e := range l.entries {
		if !textutil.MatchesAllPrefixes(queryTokens, e.tokens) {
			continue
		}
		score := matchTokens
		switch {
		case e.foldedName == folded:
			score = matchExact
		case len(e.foldedName) >= len(folded) && e.foldedName[:len(folded)] == folded:
			score = matchPrefix
		}
		hits = append(hits, hit{entry: e, score: score})
	}
	l.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		if hits[i].entry.foldedName != hits[j].entry.foldedName {
			return hits[i].entry.foldedName < hits[j].entry.foldedName
		}
		return hits[i].entry.record.ID < hits[j].entry.record.ID
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]domain.IndexableRecord, len(hits))
	for i, h := range hits {
		out[i] = h.entry.record
	}
	return out
}
