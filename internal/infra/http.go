package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// httpClient is shared by all providers; upstream APIs here are fast JSON
// endpoints and 30s comfortably covers the slow tail.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// HTTPStatusError is returned for non-2xx upstream responses, preserving
// the status code so callers can distinguish a 404 (unknown ticker) from a
// 429 (throttled).
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// GetJSON fetches url and decodes the response body into out. Extra headers
// matter for EDGAR, which rejects requests without a User-Agent.
func GetJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	body, err := GetBody(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// GetBody performs a GET and returns the raw body. The caller must close it.
func GetBody(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &HTTPStatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}
