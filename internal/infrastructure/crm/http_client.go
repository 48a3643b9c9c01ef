package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ave-shopify-connector/internal/domain"

	"github.com/rs/zerolog"
)

// HTTPClient is the remote call gate: it issues one HTTP request and returns
// the decoded JSON body or a RemoteCallError. It knows nothing about the CRM
// API shapes above it.
type HTTPClient struct {
	client *http.Client
	logger zerolog.Logger
}

// NewHTTPClient creates a remote call gate. A nil http.Client gets a default
// with a 30 second timeout.
func NewHTTPClient(client *http.Client, logger zerolog.Logger) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{client: client, logger: logger}
}

// Do issues one request and decodes the JSON response into out. body, when
// non-nil, is JSON-encoded into the request. out may be nil when the caller
// does not care about the response body. Transport failures, non-2xx
// statuses and undecodable bodies all surface as *domain.RemoteCallError.
func (c *HTTPClient) Do(ctx context.Context, method, url string, headers map[string]string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &domain.RemoteCallError{Op: method, URL: url, Err: fmt.Errorf("encode body: %w", err)}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &domain.RemoteCallError{Op: method, URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &domain.RemoteCallError{Op: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn().
			Str("method", method).
			Str("url", url).
			Int("status", resp.StatusCode).
			Msg("Remote call returned non-2xx status")
		return &domain.RemoteCallError{
			Op:  method,
			URL: url,
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, raw),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.RemoteCallError{Op: method, URL: url, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
