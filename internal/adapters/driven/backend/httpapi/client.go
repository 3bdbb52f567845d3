package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driven"
	"github.com/custodia-labs/geosearch/internal/failfast"
	"github.com/custodia-labs/geosearch/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.SearchBackend = (*Client)(nil)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the maximum number of retries for transient errors.
	MaxRetries = 3

	// RetryDelay is the initial delay between retries.
	RetryDelay = 500 * time.Millisecond

	// maxErrorBody caps how much of an error body ends up in a message.
	maxErrorBody = 512
)

var backendLog = logger.For("backend")

// Config configures a Client.
type Config struct {
	// BaseURL is the API root, e.g. https://api.mapbox.com/search/searchbox/v1.
	BaseURL string

	// TokenSource supplies the access token. Nil fails every request
	// with domain.ErrAuthRequired.
	TokenSource oauth2.TokenSource

	// Timeout bounds a single HTTP attempt. Zero uses DefaultTimeout.
	Timeout time.Duration

	// RateLimit is requests per second; zero disables throttling.
	RateLimit float64
	Burst     int

	// MaxRetries and RetryDelay tune the backoff. Zero values use the
	// package defaults; a negative MaxRetries disables retries.
	MaxRetries int
	RetryDelay time.Duration

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the search API.
type Client struct {
	baseURL     *url.URL
	tokens      oauth2.TokenSource
	http        *http.Client
	rateLimiter *RateLimiter
	maxRetries  int
	retryDelay  time.Duration
}

// NewClient creates a client from cfg.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid base URL %q", domain.ErrInvalidInput, cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		baseURL:     base,
		tokens:      cfg.TokenSource,
		http:        httpClient,
		rateLimiter: NewRateLimiter(cfg.RateLimit, cfg.Burst),
		maxRetries:  cfg.MaxRetries,
		retryDelay:  cfg.RetryDelay,
	}
	if c.maxRetries == 0 {
		c.maxRetries = MaxRetries
	} else if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.retryDelay <= 0 {
		c.retryDelay = RetryDelay
	}
	if c.tokens != nil {
		c.tokens = oauth2.ReuseTokenSource(nil, c.tokens)
	}
	return c, nil
}

// StaticToken wraps a fixed access token. An empty token yields nil so
// requests fail with domain.ErrAuthRequired.
func StaticToken(token string) oauth2.TokenSource {
	if token == "" {
		return nil
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

// Suggest returns first-step suggestions for req.Query.
func (c *Client) Suggest(ctx context.Context, req domain.RequestOptions) ([]domain.SearchSuggestion, domain.ResponseInfo, error) {
	values, err := encode(newSearchParams(req), req.Options.UnsafeParameters)
	if err != nil {
		return nil, domain.ResponseInfo{}, err
	}

	var body suggestResponse
	responseID, err := c.get(ctx, "suggest", values, &body)
	if err != nil {
		return nil, domain.ResponseInfo{}, err
	}

	suggestions := make([]domain.SearchSuggestion, 0, len(body.Suggestions))
	for i, s := range body.Suggestions {
		converted, err := s.toDomain(i, req)
		if err != nil {
			return nil, domain.ResponseInfo{}, failfast.Malformed("suggest response", err)
		}
		suggestions = append(suggestions, converted)
	}
	return suggestions, c.info(req, body.ResponseID, responseID, body.Attribution), nil
}

// Retrieve resolves a place suggestion into a full result.
func (c *Client) Retrieve(ctx context.Context, suggestion domain.SearchSuggestion) (domain.SearchResult, domain.ResponseInfo, error) {
	if suggestion.ID == "" {
		return domain.SearchResult{}, domain.ResponseInfo{}, fmt.Errorf("%w: suggestion has no id", domain.ErrInvalidInput)
	}
	req := suggestion.RequestOptions
	req.Endpoint = domain.EndpointRetrieve

	values, err := encode(retrieveParams{
		SessionToken: req.SessionID,
		Language:     strings.Join(req.Options.Languages, ","),
	}, req.Options.UnsafeParameters)
	if err != nil {
		return domain.SearchResult{}, domain.ResponseInfo{}, err
	}

	var body featureCollection
	responseID, err := c.get(ctx, "retrieve/"+url.PathEscape(suggestion.ID), values, &body)
	if err != nil {
		return domain.SearchResult{}, domain.ResponseInfo{}, err
	}
	if len(body.Features) == 0 {
		return domain.SearchResult{}, domain.ResponseInfo{}, fmt.Errorf("retrieve %s: %w", suggestion.ID, domain.ErrNotFound)
	}

	result, err := body.Features[0].toDomain(suggestion.ServerIndex, suggestion.RequestOptions, req.Options.EffectiveOrigin())
	if err != nil {
		return domain.SearchResult{}, domain.ResponseInfo{}, failfast.Malformed("retrieve response", err)
	}
	return result, c.info(req, body.ResponseID, responseID, body.Attribution), nil
}

// Category lists places in the category named by req.Query.
func (c *Client) Category(ctx context.Context, req domain.RequestOptions) ([]domain.SearchResult, domain.ResponseInfo, error) {
	params := newSearchParams(req)
	category := params.Query
	params.Query = ""
	values, err := encode(params, req.Options.UnsafeParameters)
	if err != nil {
		return nil, domain.ResponseInfo{}, err
	}

	var body featureCollection
	responseID, err := c.get(ctx, "category/"+url.PathEscape(category), values, &body)
	if err != nil {
		return nil, domain.ResponseInfo{}, err
	}
	results, err := c.features(body, req, req.Options.EffectiveOrigin())
	if err != nil {
		return nil, domain.ResponseInfo{}, failfast.Malformed("category response", err)
	}
	return results, c.info(req, body.ResponseID, responseID, body.Attribution), nil
}

// Reverse finds places at a coordinate.
func (c *Client) Reverse(ctx context.Context, opts domain.ReverseGeoOptions, req domain.RequestOptions) ([]domain.SearchResult, domain.ResponseInfo, error) {
	values, err := encode(newReverseParams(opts), nil)
	if err != nil {
		return nil, domain.ResponseInfo{}, err
	}

	var body featureCollection
	responseID, err := c.get(ctx, "reverse", values, &body)
	if err != nil {
		return nil, domain.ResponseInfo{}, err
	}
	center := opts.Center
	results, err := c.features(body, req, &center)
	if err != nil {
		return nil, domain.ResponseInfo{}, failfast.Malformed("reverse response", err)
	}
	return results, c.info(req, body.ResponseID, responseID, body.Attribution), nil
}

func (c *Client) features(body featureCollection, req domain.RequestOptions, origin *domain.Point) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, 0, len(body.Features))
	for i, f := range body.Features {
		res, err := f.toDomain(i, req, origin)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (c *Client) info(req domain.RequestOptions, bodyID, headerID, attribution string) domain.ResponseInfo {
	id := bodyID
	if id == "" {
		id = headerID
	}
	return domain.ResponseInfo{
		RequestOptions: req,
		ResponseUUID:   id,
		Attribution:    attribution,
		IsReproducible: true,
	}
}

// get performs a GET with retries and decodes the JSON body into out.
// It returns the X-Request-Id header of the successful response.
func (c *Client) get(ctx context.Context, path string, values url.Values, out any) (string, error) {
	if c.tokens == nil {
		return "", domain.ErrAuthRequired
	}
	token, err := c.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	values.Set("access_token", token.AccessToken)

	endpoint := c.baseURL.JoinPath(path)
	endpoint.RawQuery = values.Encode()
	target := endpoint.String()

	delay := c.retryDelay
	for attempt := 0; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}

		body, requestID, err := c.do(ctx, target)
		if err == nil {
			if err := json.Unmarshal(body, out); err != nil {
				return "", failfast.Malformed(path+" response", err)
			}
			return requestID, nil
		}

		if attempt >= c.maxRetries || !(domain.IsRetryable(err) || domain.IsRateLimited(err)) {
			return "", err
		}
		wait := delay
		var rl *rateLimitedError
		if errors.As(err, &rl) && rl.wait > wait {
			wait = rl.wait
		}
		backendLog.Debug("GET %s failed (attempt %d): %v; retrying in %s", path, attempt+1, err, wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}

// rateLimitedError carries the backoff a 429 asked for.
type rateLimitedError struct {
	*domain.RequestError
	wait time.Duration
}

func (e *rateLimitedError) Unwrap() error { return e.RequestError }

// do performs one attempt and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, target string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", fmt.Errorf("%w: %v", domain.ErrNetwork, redact(err))
	}
	defer resp.Body.Close()

	wait := c.rateLimiter.Observe(resp)
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", fmt.Errorf("%w: reading body: %v", domain.ErrNetwork, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, resp.Header.Get("X-Request-Id"), nil
	}

	reqErr := &domain.RequestError{
		StatusCode: resp.StatusCode,
		Message:    errorMessage(body),
		URL:        redactURL(target),
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, "", &rateLimitedError{RequestError: reqErr, wait: wait}
	}
	return nil, "", reqErr
}

// errorMessage extracts {"message": ...} from an error body, falling back
// to the raw text.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	return msg
}

// redact removes the access token from transport errors, which embed the URL.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s %s: %w", urlErr.Op, redactURL(urlErr.URL), urlErr.Err)
	}
	return err
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("access_token") {
		q.Set("access_token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
