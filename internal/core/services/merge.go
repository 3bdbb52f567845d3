package services

import (
	"math"
	"sort"

	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driven"
	"github.com/custodia-labs/geosearch/internal/textutil"
)

// DuplicateRadius is how close a remote hit must be to a local record with
// the same name to be treated as the same place, in meters.
const DuplicateRadius = 20.0

// recordHit is a local record matched during a search.
type recordHit struct {
	layer    driven.RecordLayer
	record   domain.IndexableRecord
	rank     int
	distance float64
}

// matchRecords collects records from layers that match, honouring the
// ignore flag and the distance threshold. Hits are ordered by layer
// priority, then distance from the origin, then match rank within the
// layer. A record present in several layers is kept once, from the layer
// that sorts first.
func matchRecords(layers []driven.RecordLayer, opts domain.SearchOptions, match func(driven.RecordLayer) []domain.IndexableRecord) []recordHit {
	if opts.IgnoreIndexableRecords || len(layers) == 0 {
		return nil
	}
	origin := opts.EffectiveOrigin()

	var hits []recordHit
	for _, layer := range layers {
		for rank, rec := range match(layer) {
			hit := recordHit{layer: layer, record: rec, rank: rank, distance: math.Inf(1)}
			if origin != nil {
				hit.distance = origin.DistanceTo(rec.Coordinate)
				if t := opts.IndexableRecordsDistanceThreshold; t != nil && hit.distance > *t {
					continue
				}
			}
			hits = append(hits, hit)
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.layer.Priority() != b.layer.Priority() {
			return a.layer.Priority() > b.layer.Priority()
		}
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		return a.rank < b.rank
	})

	seen := make(map[string]bool, len(hits))
	out := hits[:0]
	for _, h := range hits {
		if seen[h.record.ID] {
			continue
		}
		seen[h.record.ID] = true
		out = append(out, h)
	}
	return out
}

// localSuggestions matches query against the layers.
func localSuggestions(layers []driven.RecordLayer, query string, req domain.RequestOptions) []domain.SearchSuggestion {
	hits := matchRecords(layers, req.Options, func(l driven.RecordLayer) []domain.IndexableRecord {
		return l.Search(query, 0)
	})
	origin := req.Options.EffectiveOrigin()
	out := make([]domain.SearchSuggestion, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.record.ToSuggestion(h.layer.Name(), req, origin))
	}
	return out
}

// localCategoryResults returns records tagged with category.
func localCategoryResults(layers []driven.RecordLayer, category string, req domain.RequestOptions) []domain.SearchResult {
	hits := matchRecords(layers, req.Options, func(l driven.RecordLayer) []domain.IndexableRecord {
		var matched []domain.IndexableRecord
		for _, rec := range l.Records() {
			if textutil.ContainsFolded(rec.Categories, category) {
				matched = append(matched, rec)
			}
		}
		return matched
	})
	origin := req.Options.EffectiveOrigin()
	out := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.record.ToResult(h.layer.Name(), req, origin))
	}
	return out
}

// mergeSuggestions puts local suggestions first, then remote ones in server
// order minus those that duplicate a local record, capped at limit.
func mergeSuggestions(local, remote []domain.SearchSuggestion, limit int) []domain.SearchSuggestion {
	out := make([]domain.SearchSuggestion, 0, min(limit, len(local)+len(remote)))
	for _, s := range local {
		if len(out) == limit {
			return out
		}
		out = append(out, s)
	}
	keys := localSuggestionKeys(local)
	for _, r := range remote {
		if len(out) == limit {
			break
		}
		if duplicatesLocal(r.ID, r.Name, r.Coordinate, keys) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// mergeResults is mergeSuggestions for resolved results.
func mergeResults(local, remote []domain.SearchResult, limit int) []domain.SearchResult {
	out := make([]domain.SearchResult, 0, min(limit, len(local)+len(remote)))
	for _, r := range local {
		if len(out) == limit {
			return out
		}
		out = append(out, r)
	}
	keys := localResultKeys(local)
	for _, r := range remote {
		if len(out) == limit {
			break
		}
		coord := r.Coordinate
		if duplicatesLocal(r.ID, r.Name, &coord, keys) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// placeKey identifies a place for duplicate detection.
type placeKey struct {
	id    string
	name  string
	coord *domain.Point
}

func localResultKeys(local []domain.SearchResult) []placeKey {
	keys := make([]placeKey, 0, len(local))
	for _, l := range local {
		coord := l.Coordinate
		keys = append(keys, placeKey{id: l.ID, name: l.Name, coord: &coord})
	}
	return keys
}

func localSuggestionKeys(local []domain.SearchSuggestion) []placeKey {
	keys := make([]placeKey, 0, len(local))
	for _, l := range local {
		keys = append(keys, placeKey{id: l.ID, name: l.Name, coord: l.Coordinate})
	}
	return keys
}

// duplicatesLocal reports whether a remote hit is the same place as one of
// the local ones: same ID, or same folded name within DuplicateRadius.
func duplicatesLocal(id, name string, coord *domain.Point, local []placeKey) bool {
	folded := textutil.Fold(name)
	for _, l := range local {
		if id != "" && id == l.id {
			return true
		}
		if coord == nil || l.coord == nil || folded == "" {
			continue
		}
		if folded == textutil.Fold(l.name) && coord.DistanceTo(*l.coord) <= DuplicateRadius {
			return true
		}
	}
	return false
}

// hasRecords reports whether any suggestion is backed by a local record.
func hasRecords(suggestions []domain.SearchSuggestion) bool {
	for _, s := range suggestions {
		if s.Type == domain.SuggestionTypeIndexableRecord {
			return true
		}
	}
	return false
}
