package textutil

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// NormaliseLanguages validates BCP 47 tags and returns them in canonical
// form, e.g. "EN-us" becomes "en-US".
func NormaliseLanguages(tags []string) ([]string, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(tags))
	for _, raw := range tags {
		tag, err := language.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid language %q: %w", raw, err)
		}
		out = append(out, tag.String())
	}
	return out, nil
}

// NormaliseCountries validates ISO 3166-1 alpha-2 codes and returns them
// lower-cased, as the backend expects.
func NormaliseCountries(codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(codes))
	for _, raw := range codes {
		code := strings.TrimSpace(raw)
		if len(code) != 2 {
			return nil, fmt.Errorf("invalid country %q: expected a two-letter code", raw)
		}
		region, err := language.ParseRegion(code)
		if err != nil || !region.IsCountry() {
			return nil, fmt.Errorf("invalid country %q", raw)
		}
		out = append(out, strings.ToLower(region.String()))
	}
	return out, nil
}
