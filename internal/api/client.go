// Package api is the REST client for the product and order backend. Calls
// are stateless request/response wrappers: no caching, no retry policy.
// The client injects the bearer token when one is present, attaches a
// request correlation id, coalesces identical in-flight GETs, and routes
// every authorization failure through a single global hook.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// DefaultBaseURL matches the backend's development listen address.
const DefaultBaseURL = "http://localhost:8080/api"

// Error is a backend-rejected request. Message carries the backend's own
// wording when the payload had one; views show it verbatim or fall back
// to a generic string.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*Error)
	return ok && apiErr.StatusCode == 404
}

// Message extracts a human-readable message from err: the backend's own
// message for API errors, the fallback otherwise.
func Message(err error, fallback string) string {
	if apiErr, ok := err.(*Error); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Client wraps the backend REST surface.
type Client struct {
	rc  *resty.Client
	sfg singleflight.Group

	tokenProvider  func() string
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.rc.SetTimeout(d) }
}

// WithTokenProvider sets the source of the bearer token. An empty string
// means the request goes out unauthenticated (e.g. tracking lookup).
func WithTokenProvider(fn func() string) Option {
	return func(c *Client) { c.tokenProvider = fn }
}

// WithUnauthorizedHook registers the global handler invoked whenever any
// response comes back 401. The session store uses it to force a logout
// regardless of which view issued the request.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// NewClient builds a client against the given base URL ("/api" included).
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{rc: resty.New()}
	c.rc.
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	c.rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("X-Request-ID", uuid.NewString())
		if c.tokenProvider != nil {
			if token := c.tokenProvider(); token != "" {
				req.SetHeader("Authorization", "Bearer "+token)
			}
		}
		return nil
	})

	c.rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		if !resp.IsError() {
			return nil
		}
		if resp.StatusCode() == 401 && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &Error{
			StatusCode: resp.StatusCode(),
			Message:    extractMessage(resp.Body()),
		}
	})

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// extractMessage pulls the human-readable field out of an error payload.
// The auth endpoints use {"message": ...}, the order endpoints
// {"error": ...}; anything else yields an empty message.
func extractMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		if v, ok := payload[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// getJSON performs a GET into out, coalescing identical concurrent
// requests so a view refresh racing the badge refresh produces one wire
// call.
func getJSON[T any](ctx context.Context, c *Client, path string, params map[string]string) (T, error) {
	key := path
	for k, v := range params {
		key += "&" + k + "=" + v
	}
	v, err, _ := c.sfg.Do(key, func() (any, error) {
		var out T
		req := c.rc.R().SetContext(ctx).SetResult(&out)
		if params != nil {
			req.SetQueryParams(params)
		}
		if _, err := req.Get(path); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func postJSON[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	req := c.rc.R().SetContext(ctx).SetResult(&out)
	if body != nil {
		req.SetBody(body)
	}
	if _, err := req.Post(path); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func putJSON[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	req := c.rc.R().SetContext(ctx).SetResult(&out)
	if body != nil {
		req.SetBody(body)
	}
	if _, err := req.Put(path); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (c *Client) delete(ctx context.Context, path string) error {
	_, err := c.rc.R().SetContext(ctx).Delete(path)
	return err
}
