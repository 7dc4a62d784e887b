// Package transport executes API requests and returns the status code and
// the fully read response body. Bodies over MaxBodySize are rejected.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/docker/go-units"
)

const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 10 * time.Second

	// MaxBodySize is the largest response body accepted.
	MaxBodySize = 4 * units.MiB
)

// ErrBodyTooLarge is returned when a response body exceeds MaxBodySize.
var ErrBodyTooLarge = errors.New("response body too large")

// Doer executes HTTP requests. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client executes requests with default headers.
type Client struct {
	doer      Doer
	userAgent string
}

// New creates a Client. A nil doer uses an *http.Client with
// DefaultTimeout.
func New(doer Doer, userAgent string) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{doer: doer, userAgent: userAgent}
}

// Request describes one API call.
type Request struct {
	Method      string
	BaseURL     string
	Path        string
	Query       url.Values
	Body        io.Reader
	ContentType string

	// BearerToken is sent as "Authorization: Bearer <token>" when set.
	BearerToken string
}

// Response is a completed response. The underlying body is already closed.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Do sends req and reads the response. Transport failures are wrapped and
// returned as is; any status code is a successful Do.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	target := strings.TrimRight(req.BaseURL, "/") + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, req.Body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.decorate(httpReq, req)

	slog.Debug("api request",
		"method", req.Method,
		"url", target)

	resp, err := c.doer.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("read response: %w (limit %s)", ErrBodyTooLarge, units.BytesSize(MaxBodySize))
	}

	slog.Debug("api response",
		"method", req.Method,
		"url", target,
		"status", resp.StatusCode,
		"size", units.HumanSize(float64(len(body))))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// decorate sets the User-Agent, Accept, Content-Type and Authorization
// headers.
func (c *Client) decorate(httpReq *http.Request, req Request) {
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		contentType := req.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.BearerToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.BearerToken)
	}
}

// Close releases idle connections of the underlying client, if it has any.
func (c *Client) Close() {
	if closer, ok := c.doer.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
}
