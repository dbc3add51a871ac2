// Package transport is the JSON-over-HTTP plumbing shared by the external
// service clients. Every failure it returns wraps ErrNetwork.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/agenthands/annotator/internal/logger"
)

// ErrNetwork marks a failed call to an external service. It is never retried.
var ErrNetwork = errors.New("network failure")

// APIError is returned for non-2xx responses.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Operation, e.StatusCode, body)
}

func (e *APIError) Unwrap() error { return ErrNetwork }

// StatusCode extracts the HTTP status from err, or 0 if it carries none.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// DoJSON sends body (if non-nil) as JSON and decodes the response into dst.
func DoJSON(ctx context.Context, client *http.Client, log *logger.Logger, method, url, operation string, body, dst any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", operation, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug("API request", "operation", operation, "method", method, "url", url)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", operation, ErrNetwork, err)
	}
	defer resp.Body.Close()

	log.Debug("API response", "operation", operation, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Operation: operation, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%s: %w: decode response: %w", operation, ErrNetwork, err)
	}
	return nil
}
