package domain

// Endpoint names the backend operation a request went to.
type Endpoint string

// Backend endpoints.
const (
	EndpointSuggest  Endpoint = "suggest"
	EndpointRetrieve Endpoint = "retrieve"
	EndpointCategory Endpoint = "category"
	EndpointReverse  Endpoint = "reverse"
	EndpointOffline  Endpoint = "offline"
)

// RequestOptions is an immutable snapshot of a search request. Suggestions
// carry it so a later select can be correlated with the request that
// produced them.
type RequestOptions struct {
	// Query is the user text, or the category name for category search.
	Query string `json:"query"`

	// Endpoint is the backend operation.
	Endpoint Endpoint `json:"endpoint"`

	// Options are the effective options after defaults were applied.
	Options SearchOptions `json:"-"`

	// ProximityRewritten is true when the engine filled in Proximity.
	ProximityRewritten bool `json:"proximity_rewritten"`

	// OriginRewritten is true when the engine filled in Origin.
	OriginRewritten bool `json:"origin_rewritten"`

	// RequestID identifies this request. Suggestions from the same
	// request share it.
	RequestID string `json:"request_id"`

	// SessionID groups a suggest call with its follow-up retrieves.
	SessionID string `json:"session_id"`
}

// SameOrigin reports whether both snapshots describe the same request.
func (r RequestOptions) SameOrigin(other RequestOptions) bool {
	return r.RequestID != "" && r.RequestID == other.RequestID
}

// ResponseInfo is an immutable snapshot of what the backend returned.
type ResponseInfo struct {
	// RequestOptions is the request this response answers.
	RequestOptions RequestOptions `json:"request_options"`

	// ResponseUUID is the backend's response identifier, if any.
	ResponseUUID string `json:"response_uuid,omitempty"`

	// Attribution is the data attribution string, if any.
	Attribution string `json:"attribution,omitempty"`

	// IsReproducible is false when the response depends on local state
	// (indexable records) and cannot be replayed from the request alone.
	IsReproducible bool `json:"is_reproducible"`
}
