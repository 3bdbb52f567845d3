// Package httpapi implements driven.SearchBackend against a Search Box
// style HTTP API.
//
// Requests are plain GETs. Query parameters are encoded from tagged structs
// with gorilla/schema; the access token comes from an oauth2.TokenSource and
// travels as the access_token parameter. A token bucket throttles outgoing
// calls, 429 responses honour Retry-After, and 5xx or transport failures are
// retried with exponential backoff.
//
// Endpoints:
//
//	GET {base}/suggest?q=...
//	GET {base}/retrieve/{id}
//	GET {base}/category/{category}
//	GET {base}/reverse?longitude=...&latitude=...
//
// Undecodable bodies go through failfast.Malformed.
package httpapi
