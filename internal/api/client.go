package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"edulite-cli/internal/edu"

	"github.com/go-playground/validator/v10"
)

// Client is a typed client for the EduLite REST API. Construct it with
// NewClient; the http.Client passed in normally carries an *AuthTransport so
// every request is authenticated and 401s go through refresh-and-retry.
// Tagged inputs are validated before any request is built, so obviously bad
// input never reaches the wire.
type Client struct {
	base     *url.URL
	http     *http.Client
	validate *validator.Validate
	logger   edu.Logger
}

// NewClient creates a Client for the API rooted at baseURL (e.g.
// "https://edulite.example.org/api"). A nil httpClient gets a default with a
// 30s timeout.
func NewClient(baseURL string, httpClient *http.Client, logger edu.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{base: u, http: httpClient, validate: validator.New(), logger: logger}, nil
}

// do issues one request. body (when non-nil) is JSON-encoded; out (when
// non-nil) receives the decoded JSON response. Non-2xx responses come back
// as *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), payload)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Page is the backend's pagination envelope.
type Page[T any] struct {
	Count       int    `json:"count"`
	Next        string `json:"next"`
	Previous    string `json:"previous"`
	TotalPages  int    `json:"total_pages"`
	CurrentPage int    `json:"current_page"`
	PageSize    int    `json:"page_size"`
	Results     []T    `json:"results"`
}

// ListOptions are the common list-endpoint parameters.
type ListOptions struct {
	Page     int
	PageSize int
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", fmt.Sprint(o.Page))
	}
	if o.PageSize > 0 {
		q.Set("page_size", fmt.Sprint(o.PageSize))
	}
	return q
}
