package domain

import "time"

// RecordKind identifies the built-in record collections.
type RecordKind string

// Built-in record collections.
const (
	RecordKindHistory   RecordKind = "history"
	RecordKindFavorites RecordKind = "favorites"
)

// IsValid returns true if the record kind is recognised.
func (k RecordKind) IsValid() bool {
	return k == RecordKindHistory || k == RecordKindFavorites
}

// IndexableRecord is a locally stored place merged into search results.
type IndexableRecord struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Address     *Address          `json:"address,omitempty"`
	Coordinate  Point             `json:"coordinate"`
	Type        ResultType        `json:"type,omitempty"`
	Categories  []string          `json:"categories,omitempty"`
	Maki        string            `json:"maki,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`

	// IndexTokens are extra terms the record matches besides its name.
	IndexTokens []string `json:"index_tokens,omitempty"`

	// Timestamp is when the record was last added or touched.
	Timestamp time.Time `json:"timestamp"`
}

// ToSuggestion wraps the record as an indexable-record suggestion.
func (r IndexableRecord) ToSuggestion(layer string, req RequestOptions, origin *Point) SearchSuggestion {
	rec := r
	coord := r.Coordinate
	s := SearchSuggestion{
		ID:             r.ID,
		Type:           SuggestionTypeIndexableRecord,
		Name:           r.Name,
		Description:    r.Description,
		Address:        r.Address,
		Coordinate:     &coord,
		Categories:     r.Categories,
		Maki:           r.Maki,
		Record:         &rec,
		RecordLayer:    layer,
		ServerIndex:    -1,
		RequestOptions: req,
	}
	if r.Address != nil {
		s.FullAddress = r.Address.Formatted()
	}
	if r.Type != "" {
		s.ResultTypes = []ResultType{r.Type}
	}
	if origin != nil {
		d := origin.DistanceTo(r.Coordinate)
		s.Distance = &d
	}
	return s
}

// ToResult resolves the record into a search result.
func (r IndexableRecord) ToResult(layer string, req RequestOptions, origin *Point) SearchResult {
	rec := r
	res := SearchResult{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		Address:        r.Address,
		Coordinate:     r.Coordinate,
		Categories:     r.Categories,
		Maki:           r.Maki,
		Metadata:       r.Metadata,
		Record:         &rec,
		RecordLayer:    layer,
		ServerIndex:    -1,
		RequestOptions: req,
	}
	if r.Address != nil {
		res.FullAddress = r.Address.Formatted()
	}
	if r.Type != "" {
		res.Types = []ResultType{r.Type}
	}
	if origin != nil {
		d := origin.DistanceTo(r.Coordinate)
		res.Distance = &d
	}
	return res
}

// RecordFromResult builds a record from a resolved result, as stored in
// history or favorites.
func RecordFromResult(res SearchResult, now time.Time) IndexableRecord {
	if res.Record != nil {
		rec := *res.Record
		rec.Timestamp = now
		return rec
	}
	rec := IndexableRecord{
		ID:          res.ID,
		Name:        res.Name,
		Description: res.Description,
		Address:     res.Address,
		Coordinate:  res.Coordinate,
		Categories:  res.Categories,
		Maki:        res.Maki,
		Metadata:    res.Metadata,
		Timestamp:   now,
	}
	if len(res.Types) > 0 {
		rec.Type = res.Types[0]
	}
	return rec
}

// Formatted joins the populated address parts into one line.
func (a *Address) Formatted() string {
	if a == nil {
		return ""
	}
	street := a.Street
	if a.HouseNumber != "" && street != "" {
		street = a.HouseNumber + " " + street
	}
	parts := []string{street, a.Neighborhood, a.Locality, a.Place, a.District, a.Region, a.Postcode, a.Country}
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += p
	}
	return out
}
