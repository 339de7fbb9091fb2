package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethanbaker/api/pkg/api_types"
)

// DefaultTimeout bounds a single request, including an assistant turn
const DefaultTimeout = 120 * time.Second

// Client wraps calls to the office assistant backend
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.httpClient = httpClient
	return c
}

// request is a single call to the backend
type request struct {
	client  *Client
	ctx     context.Context
	method  string
	path    string
	in      any
	out     any
	headers map[string]string
}

// newRequest starts building a request
func (c *Client) newRequest(ctx context.Context, method, path string, in, out any) *request {
	return &request{
		client:  c,
		ctx:     ctx,
		method:  method,
		path:    path,
		in:      in,
		out:     out,
		headers: map[string]string{},
	}
}

// withApiKey authenticates the request with the X-API-KEY header
func (r *request) withApiKey() *request {
	r.headers["X-API-KEY"] = r.client.apiKey
	return r
}

// doJSON performs the request and decodes the JSON envelope into out
func (r *request) doJSON() error {
	// Create request body if input is provided
	var body io.Reader
	if r.in != nil {
		b, err := json.Marshal(r.in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(r.ctx, r.method, r.client.baseURL+r.path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range r.headers {
		req.Header.Set(key, value)
	}

	resp, err := r.client.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Prefer the envelope's message when the backend sent one
		var envelope ApiResponse[any]
		if json.Unmarshal(raw, &envelope) == nil && envelope.Message != "" {
			return &Error{StatusCode: resp.StatusCode, Status: envelope.Status, Message: envelope.Message, Detail: envelope.Error}
		}
		return &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	// If no output expected, return early
	if r.out == nil {
		return nil
	}

	return json.Unmarshal(raw, r.out)
}

// Error is returned for non-2xx responses
type Error struct {
	StatusCode int
	Status     api_types.StatusType
	Message    string
	Detail     any
}

func (e *Error) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("backend returned %d: %s: %v", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// checkStatus converts a fail or error envelope into an error
func checkStatus[T any](out ApiResponse[T], what string) error {
	switch out.Status {
	case api_types.StatusFail:
		return fmt.Errorf("failed to %s: %s", what, out.Message)
	case api_types.StatusError:
		return fmt.Errorf("error trying to %s (%s): %v", what, out.Message, out.Error)
	}
	return nil
}
