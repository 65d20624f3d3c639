// Package upstream is the client for the external restaurant search API.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/safeeats/internal/domain/model"
	"github.com/okian/safeeats/pkg/logger"
	"github.com/okian/safeeats/pkg/metrics"
)

const (
	defaultTimeout = 5 * time.Second
	// maxBodyBytes bounds how much of a response is read.
	maxBodyBytes = 8 << 20

	endpointSearch = "search"
	endpointDetail = "detail"
)

// Client calls the search API.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	timeout       time.Duration
	limiter       *rate.Limiter
	log           logger.Logger
	trailingSlash bool
}

// New creates a client for the API rooted at baseURL (for example
// "http://localhost:8000/api").
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		timeout: defaultTimeout,
		log:     logger.Named("upstream"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Transport: NewLoggingRoundTripper(http.DefaultTransport, c.log),
		}
	}
	return c, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Search runs a restaurant search. A query with no name, borough or cuisine
// fails with ErrEmptyQuery without contacting the API.
func (c *Client) Search(ctx context.Context, q SearchQuery) ([]model.Restaurant, error) {
	if q.Empty() {
		return nil, ErrEmptyQuery
	}
	body, err := c.get(ctx, endpointSearch, c.path("restaurants", "search"), q.Values())
	if err != nil {
		return nil, err
	}
	results, err := DecodeResults(body)
	if err != nil {
		metrics.RecordUpstreamError(endpointSearch, "decode")
		return nil, err
	}
	return results, nil
}

// Restaurant fetches one restaurant with its inspection history.
func (c *Client) Restaurant(ctx context.Context, id, display string) (*model.Detail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &APIError{Status: http.StatusNotFound, Message: statusText(http.StatusNotFound)}
	}
	params := url.Values{}
	if display = strings.TrimSpace(display); display != "" {
		params.Set("display", display)
	}
	body, err := c.get(ctx, endpointDetail, c.path("restaurants", url.PathEscape(id)), params)
	if err != nil {
		return nil, err
	}
	d, err := DecodeDetail(body)
	if err != nil {
		metrics.RecordUpstreamError(endpointDetail, "decode")
		return nil, err
	}
	return d, nil
}

func (c *Client) path(segments ...string) string {
	p := c.baseURL + "/" + strings.Join(segments, "/")
	if c.trailingSlash {
		p += "/"
	}
	return p
}

func (c *Client) get(ctx context.Context, endpoint, rawURL string, params url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			metrics.RecordUpstreamError(endpoint, "rate_limit")
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
	}

	if enc := params.Encode(); enc != "" {
		rawURL += "?" + enc
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamError(endpoint, "transport")
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	metrics.RecordUpstreamRequest(endpoint, strconv.Itoa(resp.StatusCode), float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordUpstreamError(endpoint, "transport")
		return nil, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordUpstreamError(endpoint, "status")
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
		c.log.Warn(ctx, "upstream returned an error",
			logger.String("endpoint", endpoint),
			logger.Int("status", apiErr.Status),
			logger.String("message", apiErr.Message),
		)
		return nil, apiErr
	}
	return body, nil
}

func statusText(status int) string {
	if t := http.StatusText(status); t != "" {
		return t
	}
	return "upstream error " + strconv.Itoa(status)
}
