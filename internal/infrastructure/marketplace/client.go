package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseSize is the maximum allowed response size from a marketplace API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// maxErrorBody bounds how much of an error payload ends up in error messages
const maxErrorBody = 512

// maxPages bounds pagination loops against a misbehaving API
const maxPages = 200

var (
	// ErrRequestFailed indicates a non-2xx response
	ErrRequestFailed = errors.New("marketplace: request failed")
	// ErrInvalidResponse indicates a payload that could not be decoded
	ErrInvalidResponse = errors.New("marketplace: invalid response")
	// ErrListingNotFound indicates no remote listing carries the SKU
	ErrListingNotFound = errors.New("marketplace: no listing for sku")
	// ErrTooManyPages indicates pagination did not end within maxPages; the
	// partial result is discarded rather than reported as complete
	ErrTooManyPages = errors.New("marketplace: pagination exceeded page limit")
)

// apiClient is the JSON-over-HTTP transport shared by the adapters
type apiClient struct {
	baseURL    string
	httpClient *http.Client
	authorize  func(*http.Request)
}

func newAPIClient(baseURL string, timeoutSeconds int, authorize func(*http.Request)) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		authorize: authorize,
	}
}

// do sends one request. body is JSON-encoded when non-nil; out is decoded when non-nil.
func (c *apiClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marketplace: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("marketplace: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authorize != nil {
		c.authorize(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("marketplace: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		snippet := string(respBody)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return fmt.Errorf("%w: %s %s: HTTP %d: %s", ErrRequestFailed, method, path, resp.StatusCode, strings.TrimSpace(snippet))
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
