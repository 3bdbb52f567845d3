package domain

// ResultType is the kind of place a result describes.
type ResultType string

// Result kinds.
const (
	ResultTypeCountry      ResultType = "country"
	ResultTypeRegion       ResultType = "region"
	ResultTypePostcode     ResultType = "postcode"
	ResultTypeDistrict     ResultType = "district"
	ResultTypePlace        ResultType = "place"
	ResultTypeLocality     ResultType = "locality"
	ResultTypeNeighborhood ResultType = "neighborhood"
	ResultTypeStreet       ResultType = "street"
	ResultTypeAddress      ResultType = "address"
	ResultTypePOI          ResultType = "poi"
	ResultTypeCategory     ResultType = "category"
	ResultTypeUnknown      ResultType = "unknown"
)

// Address is a structured postal address. All fields are optional.
type Address struct {
	HouseNumber  string `json:"house_number,omitempty"`
	Street       string `json:"street,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	Locality     string `json:"locality,omitempty"`
	Postcode     string `json:"postcode,omitempty"`
	Place        string `json:"place,omitempty"`
	District     string `json:"district,omitempty"`
	Region       string `json:"region,omitempty"`
	Country      string `json:"country,omitempty"`
	CountryCode  string `json:"country_code,omitempty"`
}

// SearchResult is a fully resolved place.
type SearchResult struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	FullAddress string            `json:"full_address,omitempty"`
	Address     *Address          `json:"address,omitempty"`
	Coordinate  Point             `json:"coordinate"`
	Types       []ResultType      `json:"types,omitempty"`
	Categories  []string          `json:"categories,omitempty"`
	Maki        string            `json:"maki,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`

	// Distance is meters from the request origin, when known.
	Distance *float64 `json:"distance,omitempty"`

	// Record is set when the result came from a local record.
	Record      *IndexableRecord `json:"record,omitempty"`
	RecordLayer string           `json:"record_layer,omitempty"`

	// ServerIndex is the position in the backend response, -1 for local.
	ServerIndex int `json:"server_index"`

	RequestOptions RequestOptions `json:"request_options"`
}
