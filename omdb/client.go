package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public OMDb endpoint
const DefaultBaseURL = "https://www.omdbapi.com/"

// Client represents an OMDb API client
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewClient creates a new OMDb client. Unlike the other clients it does not
// probe the API on construction since every probe spends request quota.
func NewClient(baseURL, apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("%w: invalid URL %q: %v", ErrInvalidConfig, baseURL, err)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		userAgent:  o.userAgent,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(o.limit, o.burst),
		logger:     logger,
	}, nil
}

// FetchByTitle looks a movie up by its title
func (c *Client) FetchByTitle(ctx context.Context, title string) (MovieRecord, error) {
	params := url.Values{}
	params.Set("t", title)
	return c.fetch(ctx, params)
}

// FetchByID looks a movie up by its IMDb id
func (c *Client) FetchByID(ctx context.Context, id string) (MovieRecord, error) {
	params := url.Values{}
	params.Set("i", id)
	return c.fetch(ctx, params)
}

// Search runs a title search and returns the requested page of stubs.
// A zero-match search is reported through SearchResult.Success, not an error.
func (c *Client) Search(ctx context.Context, query string, page int) (*SearchResult, error) {
	params := url.Values{}
	params.Set("s", query)
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search %q page %d: %w", query, page, err)
	}

	var response searchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("search %q page %d: %w: %v", query, page, ErrInvalidResponse, err)
	}

	result := response.toResult()
	c.logger.Debug().
		Str("query", query).
		Int("page", page).
		Bool("success", result.Success).
		Int("count", len(result.Items)).
		Int("total", result.TotalResults).
		Msg("Retrieved search page from OMDb")

	return result, nil
}

// TestConnection verifies the API key by performing a single lookup
func (c *Client) TestConnection(ctx context.Context) error {
	params := url.Values{}
	params.Set("i", "tt0111161")
	_, err := c.doRequest(ctx, params)
	return err
}

func (c *Client) fetch(ctx context.Context, params url.Values) (MovieRecord, error) {
	body, err := c.doRequest(ctx, params)
	if err != nil {
		return MovieRecord{}, fmt.Errorf("lookup %s: %w", params.Encode(), err)
	}

	var response detailsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return MovieRecord{}, fmt.Errorf("lookup %s: %w: %v", params.Encode(), ErrInvalidResponse, err)
	}

	record := response.toRecord()
	if record.Status == ResponseFailure {
		c.logger.Debug().
			Str("params", params.Encode()).
			Str("error", record.Error).
			Msg("OMDb reported no match")
	}
	return record, nil
}

// doRequest performs a GET with the API key attached and returns the body.
// OMDb answers some failures (bad key, quota) with a non-200 status and a JSON
// body carrying Response "False"; those are surfaced as *APIError.
func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("apikey", c.apiKey)

	requestURL := c.baseURL
	if strings.Contains(requestURL, "?") {
		requestURL += "&" + query.Encode()
	} else {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	return body, nil
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Message:    http.StatusText(status),
		Body:       string(body),
	}

	var payload struct {
		Error string `json:"Error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	}
	return apiErr
}
