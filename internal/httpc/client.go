// Package httpc provides HTTP clients with timeouts set and small helpers
// for JSON bridges. Use it instead of http.DefaultClient.
package httpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Default timeouts for HTTP operations.
const (
	DefaultTimeout         = 30 * time.Second
	DefaultConnectTimeout  = 5 * time.Second
	DefaultKeepAlive       = 30 * time.Second
	DefaultIdleConnTimeout = 90 * time.Second
)

// maxErrorBody bounds how much of a failed response is kept.
const maxErrorBody = 256

// Client is the shared client for requests without a tighter deadline.
var Client = NewClient(DefaultTimeout)

// NewClient creates a client with the given overall request timeout.
// Bridges are usually a single host, so idle connections are kept per host.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: newTransport(),
	}
}

func newTransport() *http.Transport {
	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   DefaultConnectTimeout,
			KeepAlive: DefaultKeepAlive,
		}).DialContext,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// StatusError is a non-2xx response.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return e.Status
	}
	return e.Status + ": " + e.Body
}

// PostJSON encodes v and POSTs it to url with client. A nil client uses
// the shared Client. The caller closes the response body.
func PostJSON(ctx context.Context, client *http.Client, url string, v any) (*http.Response, error) {
	if client == nil {
		client = Client
	}

	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return client.Do(req)
}

// Finish drains and closes resp so the connection can be reused. It
// returns a *StatusError carrying the start of the body for non-2xx
// responses.
func Finish(resp *http.Response) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			Body:   string(bytes.TrimSpace(body)),
		}
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}
