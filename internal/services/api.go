// Bearer-authenticated REST client for the Spotify Web API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sptty/internal/shared"
)

// Input produces a request body. An empty body is sent with Content-Length 0.
type Input interface {
	Body() ([]byte, error)
}

// Output consumes a 2xx response body.
type Output interface {
	Decode(body []byte) error
}

// Empty sends no body and ignores any response body.
type Empty struct{}

func (Empty) Body() ([]byte, error) { return nil, nil }

func (Empty) Decode([]byte) error { return nil }

// JSON sends Value encoded as JSON.
type JSON struct {
	Value any
}

func (j JSON) Body() ([]byte, error) {
	return json.Marshal(j.Value)
}

// into decodes a JSON response into a caller-provided pointer.
type into struct {
	target any
}

// Into decodes the response body as JSON into v, which must be a pointer.
func Into(v any) Output {
	return into{target: v}
}

func (o into) Decode(body []byte) error {
	if err := json.Unmarshal(body, o.target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// MaybeEmpty decodes a JSON body into Value, or records absence when the body is empty.
type MaybeEmpty[T any] struct {
	Value   T
	Present bool
}

func (m *MaybeEmpty[T]) Decode(body []byte) error {
	if len(body) == 0 {
		m.Present = false
		return nil
	}
	if err := json.Unmarshal(body, &m.Value); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	m.Present = true
	return nil
}

// Raw keeps the response body as received.
type Raw struct {
	Data []byte
}

func (r *Raw) Decode(body []byte) error {
	r.Data = append(r.Data[:0], body...)
	return nil
}

// APIError is a non-2xx response. Body is the response text exactly as received.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%v (%s): %s", shared.ErrAPIRequest, e.Status, e.Body)
}

func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// Client issues Bearer-authenticated requests against a base URL.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a Client for baseURL using token. A nil httpClient uses [http.DefaultClient].
func NewClient(baseURL, token string, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("%w: invalid API endpoint %q", shared.ErrConfig, baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    base,
		token:      token,
		httpClient: httpClient,
		logger:     log.Default(),
	}, nil
}

// SetLogger replaces the logger used for request and response tracing.
func (c *Client) SetLogger(l *log.Logger) {
	if l != nil {
		c.logger = l
	}
}

func supportedMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut:
		return true
	}
	return false
}

// Request sends in to path (resolved against the base URL) and decodes a 2xx response into out.
//
// Non-2xx responses yield an [APIError]. Requests are never retried.
func (c *Client) Request(ctx context.Context, path, method string, in Input, out Output) error {
	if !supportedMethod(method) {
		return fmt.Errorf("%w: unsupported method %q", shared.ErrInvalidArgument, method)
	}
	if in == nil {
		in = Empty{}
	}
	if out == nil {
		out = Empty{}
	}

	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("%w: invalid path %q", shared.ErrInvalidArgument, path)
	}
	target := c.baseURL.ResolveReference(ref)

	body, err := in.Body()
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	c.logger.Debug("request", "method", method, "url", target.String(), "body", string(body))

	req, err := http.NewRequestWithContext(ctx, method, target.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// Empty PUT and POST bodies still go out with Content-Length: 0.
	req.ContentLength = int64(len(body))
	req.Header.Set("Authorization", "Bearer "+c.token)
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(data)}
	}

	c.logger.Debug("response", "status", resp.StatusCode, "body", string(data))
	return out.Decode(data)
}
