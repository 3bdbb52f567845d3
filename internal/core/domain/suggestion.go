package domain

// SuggestionType is the variant of a suggestion. The variant decides how
// select resolves it.
type SuggestionType string

// Suggestion variants.
const (
	// SuggestionTypePlace is a remote suggestion resolved by a retrieve call.
	SuggestionTypePlace SuggestionType = "place"

	// SuggestionTypeIndexableRecord is backed by a local record and
	// resolves without network access.
	SuggestionTypeIndexableRecord SuggestionType = "indexable_record"

	// SuggestionTypeQuery proposes a refined query; selecting it runs
	// another suggest step.
	SuggestionTypeQuery SuggestionType = "query"

	// SuggestionTypeCategory resolves to a list of places in a category.
	SuggestionTypeCategory SuggestionType = "category"
)

// SearchSuggestion is an intermediate hit that needs a select step to
// resolve into full details.
type SearchSuggestion struct {
	ID          string         `json:"id"`
	Type        SuggestionType `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	FullAddress string         `json:"full_address,omitempty"`
	Address     *Address       `json:"address,omitempty"`
	Coordinate  *Point         `json:"coordinate,omitempty"`

	// Distance is meters from the request origin, when known.
	Distance *float64 `json:"distance,omitempty"`

	Categories  []string     `json:"categories,omitempty"`
	Maki        string       `json:"maki,omitempty"`
	ResultTypes []ResultType `json:"result_types,omitempty"`

	// QueryText is the refined query for SuggestionTypeQuery.
	QueryText string `json:"query_text,omitempty"`

	// Category is the canonical category id for SuggestionTypeCategory.
	Category string `json:"category,omitempty"`

	// Record and RecordLayer are set for SuggestionTypeIndexableRecord.
	Record      *IndexableRecord `json:"record,omitempty"`
	RecordLayer string           `json:"record_layer,omitempty"`

	// ServerIndex is the position in the backend response, -1 for local.
	ServerIndex int `json:"server_index"`

	// RequestOptions is the request that produced this suggestion.
	RequestOptions RequestOptions `json:"request_options"`
}

// IsBatchResolvable reports whether the suggestion can be part of a batch
// select. Query and category suggestions resolve to more suggestions or
// lists, so they are not.
func (s SearchSuggestion) IsBatchResolvable() bool {
	switch s.Type {
	case SuggestionTypePlace:
		return true
	case SuggestionTypeIndexableRecord:
		return s.Record != nil
	default:
		return false
	}
}
