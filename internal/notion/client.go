package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Defaults for the Notion REST API.
const (
	DefaultBaseURL    = "https://api.notion.com/v1/"
	DefaultVersion    = "2022-06-28"
	DefaultMaxRetries = 5
	DefaultRetryDelay = time.Second
)

// APIError is an error object returned by the Notion API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion api error %d %s: %s", e.Status, e.Code, e.Message)
}

// retryable reports whether the request may succeed when repeated.
func (e *APIError) retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// IsNotFound reports whether err is an object_not_found API error.
func IsNotFound(err error) bool {
	var apiErr *APIError

	return errors.As(err, &apiErr) && (apiErr.Code == "object_not_found" || apiErr.Status == http.StatusNotFound)
}

// RetryExhaustedError is returned when a request keeps failing after every retry.
// It aborts the import run.
type RetryExhaustedError struct {
	Method   string
	Endpoint string
	Attempts int
	Err      error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("%s %s failed after %d attempts: %v", e.Method, e.Endpoint, e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}

// Client calls the Notion REST API with response caching and bounded retries.
type Client struct {
	apiKey     string
	baseURL    string
	version    string
	httpClient *http.Client
	cache      *Cache
	maxRetries int
	retryDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}

		c.baseURL = u
	}
}

// WithVersion overrides the Notion-Version header.
func WithVersion(v string) Option {
	return func(c *Client) { c.version = v }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithRetry sets the retry bound and the delay between attempts.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = max(maxRetries, 0)
		c.retryDelay = delay
	}
}

// WithCache shares a response cache between clients.
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// NewClient creates a Client for apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		version:    DefaultVersion,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      NewCache(),
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Cache returns the response cache.
func (c *Client) Cache() *Cache {
	return c.cache
}

// ClearCache drops every cached response.
func (c *Client) ClearCache() {
	c.cache.Clear()
}

// Get fetches endpoint with GET.
func (c *Client) Get(ctx context.Context, endpoint string) ([]byte, error) {
	return c.FetchJSON(ctx, http.MethodGet, endpoint, nil)
}

// Post marshals body and sends it to endpoint with POST. A nil body sends "{}".
func (c *Client) Post(ctx context.Context, endpoint string, body any) ([]byte, error) {
	payload := []byte("{}")

	if body != nil {
		var err error

		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body for %s: %w", endpoint, err)
		}
	}

	return c.FetchJSON(ctx, http.MethodPost, endpoint, payload)
}

// FetchJSON performs a request and returns the raw JSON response.
// Responses are cached by (api key, method, endpoint, body). Transport
// failures, 429 and 5xx responses are retried; other API errors are returned
// as *APIError at once. Exhausting the retries returns *RetryExhaustedError.
func (c *Client) FetchJSON(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	key := CacheKey(c.apiKey, method, endpoint, body)
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	attempts := c.maxRetries + 1

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		data, err := c.do(ctx, method, endpoint, body)
		if err == nil {
			c.cache.Put(key, data)

			return data, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.retryable() {
			return nil, err
		}

		lastErr = err

		if attempt < attempts {
			if err := sleep(ctx, c.retryDelay); err != nil {
				return nil, err
			}
		}
	}

	return nil, &RetryExhaustedError{Method: method, Endpoint: endpoint, Attempts: attempts, Err: lastErr}
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+strings.TrimPrefix(endpoint, "/"), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", c.version)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if jerr := json.Unmarshal(data, apiErr); jerr != nil || apiErr.Code == "" {
			apiErr.Code = http.StatusText(resp.StatusCode)
			apiErr.Message = strings.TrimSpace(string(data))
		}

		apiErr.Status = resp.StatusCode

		return nil, apiErr
	}

	return data, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
